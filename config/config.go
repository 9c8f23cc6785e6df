// Package config loads rasterizer settings and test scenes from TOML or
// YAML files, with environment overrides.
//
// A file looks like this (TOML):
//
//	threads = 4
//	debug   = "tiles"
//
//	[scene]
//	width   = 256
//	height  = 192
//	color   = ["rgba8unorm"]
//	depth   = "depth24plus-stencil8"
//	clear   = [0.1, 0.1, 0.1, 1.0]
//
//	[[scene.rects]]
//	box   = [10, 10, 120, 90]
//	color = [1.0, 0.0, 0.0, 1.0]
//
// The environment variables TILERAST_NUM_THREADS, TILERAST_DEBUG and
// TILERAST_PERF override the matching file settings.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/tilerast"
	"github.com/gogpu/tilerast/internal/parallel"
)

// Environment variables read by ApplyEnv.
const (
	EnvThreads = "TILERAST_NUM_THREADS"
	EnvDebug   = "TILERAST_DEBUG"
	EnvPerf    = "TILERAST_PERF"
)

// AutoThreads asks for one worker per logical CPU.
const AutoThreads = -1

var (
	// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrInvalid is returned for settings that cannot be turned into
	// rasterizer options or a scene.
	ErrInvalid = errors.New("config: invalid setting")
)

// Format is a configuration file syntax.
type Format int

const (
	TOML Format = iota
	YAML
)

// Config holds rasterizer settings and an optional scene description.
type Config struct {
	// Threads is the worker count. Zero renders synchronously and
	// AutoThreads uses every logical CPU.
	Threads int `toml:"threads" yaml:"threads"`

	// QueueDepth is the number of scenes that may wait for rasterization.
	QueueDepth int `toml:"queue_depth" yaml:"queue_depth"`

	// FormatCacheSize bounds each thread's pixel format cache.
	FormatCacheSize int `toml:"format_cache_size" yaml:"format_cache_size"`

	// Debug and Perf are comma separated flag lists, as accepted by
	// tilerast.ParseDebugFlags and tilerast.ParsePerfFlags.
	Debug string `toml:"debug" yaml:"debug"`
	Perf  string `toml:"perf" yaml:"perf"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	Scene Scene `toml:"scene" yaml:"scene"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Threads:  AutoThreads,
		LogLevel: "info",
		Scene:    DefaultScene(),
	}
}

// decoder is the common shape of the TOML and YAML decoders.
type decoder interface {
	Decode(v any) error
}

type decoderFunc func(r io.Reader) decoder

func newDecoderFunc[T decoder](f func(r io.Reader) T) decoderFunc {
	return func(r io.Reader) decoder { return f(r) }
}

var decoders = map[Format]decoderFunc{
	TOML: newDecoderFunc(toml.NewDecoder),
	YAML: newDecoderFunc(yaml.NewDecoder),
}

// FormatOf picks the file syntax from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Decode reads a configuration in the given syntax. Settings missing from
// r keep their Default values; a file without a scene gets DefaultScene.
func Decode(r io.Reader, f Format) (*Config, error) {
	newDecoder, ok := decoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	c := Default()
	c.Scene = Scene{}
	if err := newDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if c.Scene.Width == 0 && c.Scene.Height == 0 {
		c.Scene = DefaultScene()
	}
	return c, nil
}

// Load reads the file at path and applies the environment overrides.
func Load(path string) (*Config, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(path) // #nosec G304 -- user supplied config path
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	c, err := Decode(bufio.NewReader(fp), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvThreads); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvThreads, v)
		}
		c.Threads = n
	}
	if v, ok := lookup(EnvDebug); ok {
		c.Debug = v
	}
	if v, ok := lookup(EnvPerf); ok {
		c.Perf = v
	}
	return nil
}

// NumThreads resolves AutoThreads to the logical CPU count.
func (c *Config) NumThreads() int {
	if c.Threads == AutoThreads {
		return parallel.DefaultThreads(tilerast.MaxThreads)
	}
	return c.Threads
}

// Options converts the settings to rasterizer options.
func (c *Config) Options() ([]tilerast.Option, error) {
	threads := c.NumThreads()
	if threads < 0 || threads > tilerast.MaxThreads {
		return nil, fmt.Errorf("%w: threads %d not in [0, %d]", ErrInvalid, c.Threads, tilerast.MaxThreads)
	}
	debug, err := tilerast.ParseDebugFlags(c.Debug)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	perf, err := tilerast.ParsePerfFlags(c.Perf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	opts := []tilerast.Option{
		tilerast.WithThreads(threads),
		tilerast.WithDebug(debug),
		tilerast.WithPerf(perf),
	}
	if c.QueueDepth > 0 {
		opts = append(opts, tilerast.WithQueueDepth(c.QueueDepth))
	}
	if c.FormatCacheSize > 0 {
		opts = append(opts, tilerast.WithFormatCacheSize(c.FormatCacheSize))
	}
	return opts, nil
}
