package parallel

import "sync"

// Semaphore is a counting semaphore.
//
// Signal never blocks; Wait blocks until the count is positive and then
// decrements it. Semaphore is safe for concurrent use.
type Semaphore struct {
	mu    sync.Mutex
	cond  sync.Cond
	count int
}

// NewSemaphore creates a semaphore with the given initial count.
func NewSemaphore(initial int) *Semaphore {
	s := &Semaphore{count: initial}
	s.cond.L = &s.mu
	return s
}

// Signal increments the count and wakes one waiter.
func (s *Semaphore) Signal() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() {
	s.mu.Lock()
	for s.count <= 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Count returns the current count. The value may be stale by the time the
// caller looks at it; it is meant for diagnostics and tests.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Barrier is a reusable (cyclic) rendezvous point for a fixed number of
// parties. Each call to Wait blocks until all parties have arrived, then all
// are released and the barrier resets for the next round.
type Barrier struct {
	mu         sync.Mutex
	cond       sync.Cond
	parties    int
	waiting    int
	generation uint64
}

// NewBarrier creates a barrier for n parties. n must be positive.
func NewBarrier(n int) *Barrier {
	if n <= 0 {
		panic("parallel: barrier needs at least one party")
	}
	b := &Barrier{parties: n}
	b.cond.L = &b.mu
	return b
}

// Wait blocks until all parties have called Wait for the current round.
// Exactly one caller per round (the last to arrive) gets true.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	return false
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}
