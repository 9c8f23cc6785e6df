package parallel

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ThreadPool is a fixed set of worker goroutines driven by per-worker
// semaphores.
//
// Each worker waits on its own wake semaphore, runs the pool's work function
// once per wake, and then signals its own done semaphore. Wake releases every
// worker exactly once, so each worker observes exactly one wake per call;
// WaitDone consumes exactly one done signal per worker.
//
// Thread safety: ThreadPool is safe for concurrent use, but Wake/WaitDone
// pairs are expected to come from a single controlling goroutine.
type ThreadPool struct {
	// workers is the number of worker goroutines.
	workers int

	// wake holds per-worker "work ready" semaphores.
	wake []*Semaphore

	// done holds per-worker "work done" semaphores.
	done []*Semaphore

	// exit tells woken workers to leave their loop.
	exit atomic.Bool

	// group joins the worker goroutines on Close.
	group errgroup.Group

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewThreadPool starts workers goroutines. Each time a worker is woken it
// calls work with its index in [0, workers).
// workers must be positive.
func NewThreadPool(workers int, work func(id int)) *ThreadPool {
	if workers <= 0 {
		panic("parallel: thread pool needs at least one worker")
	}

	p := &ThreadPool{
		workers: workers,
		wake:    make([]*Semaphore, workers),
		done:    make([]*Semaphore, workers),
	}

	for i := range workers {
		p.wake[i] = NewSemaphore(0)
		p.done[i] = NewSemaphore(0)
	}

	p.running.Store(true)

	for i := range workers {
		p.group.Go(func() error {
			p.worker(i, work)
			return nil
		})
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *ThreadPool) worker(id int, work func(id int)) {
	for {
		p.wake[id].Wait()

		if p.exit.Load() {
			// Let a pending WaitDone return during shutdown.
			p.done[id].Signal()
			return
		}

		work(id)

		p.done[id].Signal()
	}
}

// Wake releases every worker once.
// If the pool is closed, this is a no-op.
func (p *ThreadPool) Wake() {
	if !p.running.Load() {
		return
	}
	for _, s := range p.wake {
		s.Signal()
	}
}

// WaitDone blocks until every worker has signaled done once.
// If the pool is closed, this is a no-op.
func (p *ThreadPool) WaitDone() {
	if !p.running.Load() {
		return
	}
	for _, s := range p.done {
		s.Wait()
	}
}

// Close stops all workers and waits for them to exit.
// Workers finish the wake they are currently serving before they observe
// the exit flag. Close is safe to call multiple times.
func (p *ThreadPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		// Already closed
		return
	}

	p.exit.Store(true)
	for _, s := range p.wake {
		s.Signal()
	}

	_ = p.group.Wait()
}

// Workers returns the number of workers in the pool.
func (p *ThreadPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool has not been closed.
func (p *ThreadPool) IsRunning() bool {
	return p.running.Load()
}
