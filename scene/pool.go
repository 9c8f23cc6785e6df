package scene

import "sync"

// Pool recycles scenes so that bin blocks survive from frame to frame.
// After warmup, binning a frame of similar size allocates nothing for bins.
//
// Usage:
//
//	pool := NewPool()
//	s, err := pool.Get(fb)
//	// bin into s, queue it; the rasterizer releases it when done
type Pool struct {
	pool sync.Pool
}

// NewPool creates a new scene pool.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return &Scene{pool: p}
	}
	return p
}

// Get retrieves a scene from the pool, reset and sized for fb.
func (p *Pool) Get(fb *Framebuffer) (*Scene, error) {
	s := p.pool.Get().(*Scene)
	s.Reset()
	if err := s.init(fb); err != nil {
		p.pool.Put(s)
		return nil, err
	}
	return s, nil
}

// Put resets s and returns it to the pool for reuse. Command arguments
// are cleared so pooled scenes do not keep states or inputs alive.
func (p *Pool) Put(s *Scene) {
	if s == nil || s.pool != p {
		return
	}
	s.Reset()
	s.FB = nil
	p.pool.Put(s)
}

// Warmup pre-allocates scenes for fb to avoid allocation during critical
// paths.
func (p *Pool) Warmup(fb *Framebuffer, count int) error {
	scenes := make([]*Scene, count)
	for i := range count {
		s, err := p.Get(fb)
		if err != nil {
			return err
		}
		scenes[i] = s
	}
	for _, s := range scenes {
		p.Put(s)
	}
	return nil
}
