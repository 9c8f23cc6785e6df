package scene

// MaxScenes is the default queue capacity: one scene being rasterized while
// the next is binned.
const MaxScenes = 2

// Queue is a bounded FIFO of fully binned scenes, fed by one producer and
// drained by one consumer at a time.
type Queue struct {
	ring chan *Scene
}

// NewQueue creates a queue holding at most capacity scenes. A capacity
// below one is raised to one.
func NewQueue(capacity int) *Queue {
	return &Queue{ring: make(chan *Scene, max(capacity, 1))}
}

// Enqueue appends s, blocking while the queue is full.
func (q *Queue) Enqueue(s *Scene) {
	q.ring <- s
}

// Dequeue removes the oldest scene. With wait it blocks until one is
// available; otherwise it returns nil when the queue is empty.
func (q *Queue) Dequeue(wait bool) *Scene {
	if wait {
		return <-q.ring
	}
	select {
	case s := <-q.ring:
		return s
	default:
		return nil
	}
}

// Len returns the number of queued scenes.
func (q *Queue) Len() int {
	return len(q.ring)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ring)
}
