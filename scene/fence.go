package scene

import (
	"context"
	"sync"
	"sync/atomic"
)

// fenceSeq orders fence signals process-wide.
var fenceSeq atomic.Uint64

// Fence is a one-shot completion signal attached to a Scene. The
// rasterizer signals it once, after every bin of the scene has been
// rasterized.
type Fence struct {
	once  sync.Once
	done  chan struct{}
	count atomic.Int32
	seq   atomic.Uint64
}

// NewFence creates an unsignalled fence.
func NewFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

// Signal marks the fence complete and releases all waiters. Further calls
// are counted but otherwise have no effect.
func (f *Fence) Signal() {
	f.count.Add(1)
	f.once.Do(func() {
		f.seq.Store(fenceSeq.Add(1))
		close(f.done)
	})
}

// Wait blocks until the fence is signalled or ctx is done.
func (f *Fence) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when the fence is signalled.
func (f *Fence) Done() <-chan struct{} {
	return f.done
}

// Signalled reports whether Signal has been called.
func (f *Fence) Signalled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Count returns the number of times Signal was called. A correctly driven
// fence reports exactly one.
func (f *Fence) Count() int {
	return int(f.count.Load())
}

// Sequence returns the process-wide order in which this fence was
// signalled, or zero if it has not been.
func (f *Fence) Sequence() uint64 {
	return f.seq.Load()
}
