package tilerast

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNopHandler(t *testing.T) {
	var h slog.Handler = nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = true", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("tile", 3)}).(nopHandler); !ok {
		t.Error("WithAttrs() left the nop handler")
	}
	if _, ok := h.WithGroup("scene").(nopHandler); !ok {
		t.Error("WithGroup() left the nop handler")
	}
}

func captureLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestLogger_DefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

func TestSetLogger_PickedUpAtCreation(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	l, buf := captureLogger(slog.LevelInfo)
	SetLogger(l)
	r := newRasterizer(t, WithThreads(1))

	// A later swap does not affect an existing rasterizer.
	SetLogger(nil)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"rasterizer created", "rasterizer closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

func TestWithLogger_OverridesPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	pkg, pkgBuf := captureLogger(slog.LevelDebug)
	SetLogger(pkg)

	own, ownBuf := captureLogger(slog.LevelDebug)
	r := newRasterizer(t, WithLogger(own))
	fb := newFB(t, 64, 64, gputypes.TextureFormatUndefined)
	b := newBuilder(t, fb)
	_ = b.Clear(0, red)
	render(t, r, b.Finish())

	if pkgBuf.Len() != 0 {
		t.Errorf("package logger received output:\n%s", pkgBuf.String())
	}
	if !strings.Contains(ownBuf.String(), "scene begin") {
		t.Errorf("own logger missing scene diagnostics:\n%s", ownBuf.String())
	}
}

func TestLogger_WarnsOnFallback(t *testing.T) {
	l, buf := captureLogger(slog.LevelWarn)
	renderBlit(t, 0.25/256, WithLogger(l))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "blit_total=4") {
		t.Errorf("fallback warning missing:\n%s", out)
	}

	l, buf = captureLogger(slog.LevelWarn)
	renderBlit(t, 0, WithLogger(l))
	if buf.Len() != 0 {
		t.Errorf("direct blit logged a warning:\n%s", buf.String())
	}
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("tilerast: scene begin", "tiles", 12)
	}
}
