package tilerast

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.threads != 0 {
		t.Errorf("threads = %d, want 0", o.threads)
	}
	if o.queueDepth != scene.MaxScenes {
		t.Errorf("queueDepth = %d, want %d", o.queueDepth, scene.MaxScenes)
	}
	if o.cacheSize != shader.DefaultFormatCacheSize {
		t.Errorf("cacheSize = %d, want %d", o.cacheSize, shader.DefaultFormatCacheSize)
	}
	if o.debug != 0 || o.perf != 0 || o.logger != nil {
		t.Error("flags and logger should be unset by default")
	}
}

func TestOptions_Apply(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	o := defaultOptions()
	for _, opt := range []Option{
		WithThreads(6),
		WithDebug(DebugNoFastpath | DebugShowTiles),
		WithPerf(PerfNoShade),
		WithQueueDepth(5),
		WithQueueDepth(0), // ignored
		WithFormatCacheSize(8),
		WithLogger(l),
	} {
		opt(&o)
	}

	if o.threads != 6 || o.queueDepth != 5 || o.cacheSize != 8 {
		t.Errorf("threads/queueDepth/cacheSize = %d/%d/%d", o.threads, o.queueDepth, o.cacheSize)
	}
	if o.debug != DebugNoFastpath|DebugShowTiles || o.perf != PerfNoShade {
		t.Errorf("debug = %v, perf = %v", o.debug, o.perf)
	}
	if o.logger != l {
		t.Error("logger not set")
	}
}

func TestWithLogger_UsedByRasterizer(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := newRasterizer(t, WithThreads(2), WithLogger(l))
	fb := newFB(t, 64, 64, gputypes.TextureFormatUndefined)
	b := newBuilder(t, fb)
	_ = b.Clear(0, red)
	render(t, r, b.Finish())
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"rasterizer created", "threads=2", "scene begin", "scene end", "rasterizer closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// =============================================================================
// Flags
// =============================================================================

func TestParseDebugFlags(t *testing.T) {
	tests := []struct {
		in      string
		want    DebugFlags
		wantErr bool
	}{
		{"", 0, false},
		{"nofastpath", DebugNoFastpath, false},
		{" NoRast , tiles ", DebugNoRast | DebugShowTiles, false},
		{"nofastpath,,norast", DebugNoFastpath | DebugNoRast, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDebugFlags(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDebugFlags(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDebugFlags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePerfFlags(t *testing.T) {
	got, err := ParsePerfFlags("no_rast_linear,no_shade")
	if err != nil {
		t.Fatal(err)
	}
	if got != PerfNoRastLinear|PerfNoShade {
		t.Errorf("got %v", got)
	}
	if _, err := ParsePerfFlags("no_rast_linear,fast"); err == nil {
		t.Error("unknown perf flag should fail")
	}
}

func TestFlags_String(t *testing.T) {
	if s := (DebugNoFastpath | DebugShowTiles).String(); s != "nofastpath,tiles" {
		t.Errorf("DebugFlags.String() = %q", s)
	}
	if s := DebugFlags(0).String(); s != "" {
		t.Errorf("empty DebugFlags.String() = %q", s)
	}
	if s := PerfNoShade.String(); s != "no_shade" {
		t.Errorf("PerfFlags.String() = %q", s)
	}

	// String output parses back.
	f := DebugNoRast | DebugShowTiles
	back, err := ParseDebugFlags(f.String())
	if err != nil || back != f {
		t.Errorf("round trip %v -> %q -> %v (%v)", f, f.String(), back, err)
	}
}
