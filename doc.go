// Package tilerast is a tile-based, multi-threaded software rasterizer.
//
// # Overview
//
// A binning stage (see package binner) turns draw calls into a Scene: a
// framebuffer description plus one command bin per 64x64 screen tile. The
// Rasterizer executes scenes over a fixed pool of worker threads. Every
// tile is claimed by exactly one thread, so tiles are rendered without any
// locking on pixel memory.
//
// # Quick Start
//
//	import "github.com/gogpu/tilerast"
//
//	r, err := tilerast.New(tilerast.WithThreads(4))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	s := b.Finish() // *scene.Scene from a binner.Builder
//	if err := r.QueueScene(s); err != nil {
//	    return err
//	}
//	r.Finish()
//
// # Threading
//
// Each scene goes through a two-barrier handshake: worker 0 dequeues and
// publishes the scene, all workers meet at a barrier, claim tiles until
// none are left, meet again, and worker 0 retires the scene and signals
// its fence. With zero threads the same steps run on the caller inside
// QueueScene, and the output is bitwise identical.
//
// # Dispatch
//
// Before a bin runs, its commands are characterized: the capability flags
// of every command are ANDed together. Bins made only of clears, state
// changes and blits use the blit table, which can copy texture rows
// directly. Rect-only bins may use the linear path when the scene allows
// it. Everything else uses the generic triangle table. DebugNoFastpath
// forces the most general handlers.
//
// # Fragment Processing
//
// The rasterizer never interprets colour itself. It calls the entry points
// of the bound shader.State once per 4x4 block (or once per rectangle on
// the linear path). Package shader defines that call and provides a few
// reference routines.
//
// # Logging
//
// The rasterizer logs through log/slog. Nothing is logged unless SetLogger
// or WithLogger provides a logger.
//
// # Related Packages
//
//   - binner: reference setup stage producing scenes
//   - recording: capture a binned scene to a file and replay it
//   - config: TOML/YAML settings and scene descriptions
//   - cmd/tilerast: command-line driver writing PNG output
package tilerast
