// Command tilerast bins a scene, rasterizes it on the tile renderer and
// writes colour plane 0 as a PNG.
//
// Usage:
//
//	tilerast [-config scene.toml] [-threads N] [-o out.png] [-scale 2]
//	         [-capture frame.tlr | -replay frame.tlr] [-dump] [-log file]
//
// Without -config the built-in demo scene is used. TILERAST_NUM_THREADS,
// TILERAST_DEBUG and TILERAST_PERF override the config file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/tilerast"
	"github.com/gogpu/tilerast/config"
	"github.com/gogpu/tilerast/recording"
	"github.com/gogpu/tilerast/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "tilerast:", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	config   string
	threads  int
	output   string
	scale    float64
	frames   int
	capture  string
	replay   string
	dump     bool
	logFile  string
	logLevel string
}

func parseFlags(args []string) (*cliFlags, map[string]bool, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("tilerast", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "TOML or YAML scene and rasterizer config")
	fs.IntVar(&f.threads, "threads", 0, "worker threads (0 renders on the calling goroutine)")
	fs.StringVar(&f.output, "o", "tilerast.png", "output PNG file")
	fs.Float64Var(&f.scale, "scale", 1, "scale factor applied to the output image")
	fs.IntVar(&f.frames, "frames", 1, "number of times to rasterize the scene")
	fs.StringVar(&f.capture, "capture", "", "write the binned scene to this capture file")
	fs.StringVar(&f.replay, "replay", "", "rasterize a capture file instead of the config scene")
	fs.BoolVar(&f.dump, "dump", false, "print a summary of the binned scene")
	fs.StringVar(&f.logFile, "log", "", "write JSON logs to this rotating file")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	switch {
	case f.scale <= 0:
		return nil, nil, fmt.Errorf("-scale must be positive, got %g", f.scale)
	case f.frames < 1:
		return nil, nil, fmt.Errorf("-frames must be at least 1, got %d", f.frames)
	case f.capture != "" && f.replay != "":
		return nil, nil, errors.New("-capture and -replay are exclusive")
	}
	return f, set, nil
}

func loadConfig(f *cliFlags, set map[string]bool) (*config.Config, error) {
	var cfg *config.Config
	if f.config != "" {
		c, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
	}
	if set["threads"] {
		cfg.Threads = f.threads
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	f, set, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f, set)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(f.logFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	tilerast.SetLogger(logger)
	defer tilerast.SetLogger(nil)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	r, err := tilerast.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	s, queries, err := loadScene(f, cfg)
	if err != nil {
		return err
	}
	logger.Info("scene ready",
		slog.Int("width", s.FB.Width),
		slog.Int("height", s.FB.Height),
		slog.Int("commands", s.Commands()),
		slog.Int("queries", len(queries)))

	if f.capture != "" {
		if err := recording.Save(f.capture, s); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		logger.Info("scene captured", slog.String("path", f.capture))
	}
	if f.dump {
		if err := dumpScene(stdout, s); err != nil {
			return err
		}
	}

	for range f.frames {
		if err := r.QueueScene(s); err != nil {
			return err
		}
		r.Finish()
	}

	if err := writePNG(f.output, s.FB, f.scale); err != nil {
		return err
	}

	st := r.Stats()
	fmt.Fprintf(stdout, "%s: %dx%d, %d frame(s), %d threads, %d tiles, %d commands (linear %d, blit %d, fallbacks %d)\n",
		f.output, s.FB.Width, s.FB.Height, f.frames, r.NumThreads(),
		st.Tiles, st.Commands, st.LinearBins, st.BlitBins, st.LinearFallbacks+st.BlitFallbacks)
	for i, q := range queries {
		fmt.Fprintf(stdout, "query %d (%v): %d\n", i, q.Kind, q.Result())
	}
	return nil
}

// loadScene builds the config scene or rebuilds a capture.
func loadScene(f *cliFlags, cfg *config.Config) (*scene.Scene, []*scene.Query, error) {
	if f.replay == "" {
		s, err := cfg.Scene.Build()
		return s, nil, err
	}
	c, err := recording.Load(f.replay)
	if err != nil {
		return nil, nil, fmt.Errorf("replay: %w", err)
	}
	return c.Build()
}
