package tilerast

import "errors"

// Sentinel errors returned by the Rasterizer.
var (
	// ErrInitializationFailed is returned by New when the worker pool or
	// a per-thread resource cannot be set up.
	ErrInitializationFailed = errors.New("tilerast: initialization failed")

	// ErrClosed is returned when a scene is queued on a closed rasterizer.
	ErrClosed = errors.New("tilerast: rasterizer closed")

	// ErrNilScene is returned when QueueScene is called with a nil scene or
	// a scene without a framebuffer.
	ErrNilScene = errors.New("tilerast: nil scene")
)
