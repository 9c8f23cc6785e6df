package tilerast

import (
	"log/slog"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// Option configures a Rasterizer during creation.
//
// Example:
//
//	// Synchronous rasterizer: QueueScene renders on the caller.
//	r, err := tilerast.New(tilerast.WithThreads(0))
//
//	// Eight workers with the fast paths disabled for debugging.
//	r, err := tilerast.New(
//	    tilerast.WithThreads(8),
//	    tilerast.WithDebug(tilerast.DebugNoFastpath),
//	)
type Option func(*options)

// options holds optional configuration for Rasterizer creation.
type options struct {
	threads    int
	debug      DebugFlags
	perf       PerfFlags
	queueDepth int
	cacheSize  int
	logger     *slog.Logger
}

// defaultOptions returns the default rasterizer options.
func defaultOptions() options {
	return options{
		threads:    0, // synchronous unless asked otherwise
		queueDepth: scene.MaxScenes,
		cacheSize:  shader.DefaultFormatCacheSize,
		logger:     nil, // package logger at creation time
	}
}

// WithThreads sets the number of worker threads. Zero selects synchronous
// mode: no workers are started and QueueScene rasterizes on the calling
// goroutine. Values outside [0, MaxThreads] make New fail.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithDebug sets debug flags.
func WithDebug(flags DebugFlags) Option {
	return func(o *options) {
		o.debug = flags
	}
}

// WithPerf sets performance-experiment flags.
func WithPerf(flags PerfFlags) Option {
	return func(o *options) {
		o.perf = flags
	}
}

// WithQueueDepth sets how many scenes may wait for the workers before
// QueueScene blocks. The default is scene.MaxScenes.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

// WithFormatCacheSize sets the per-thread packed-colour cache size.
// Non-positive sizes make New fail.
func WithFormatCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithLogger sets the logger used by this rasterizer instead of the
// package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
