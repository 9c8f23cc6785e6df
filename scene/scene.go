// Package scene holds the data handed from the binning stage to the tile
// rasterizer: one frame's framebuffer description plus a grid of per-tile
// command bins.
//
// A Scene is owned by its producer until it is queued on a rasterizer. From
// then on the rasterizer threads only read it, except for the bin iterator,
// which hands every tile to exactly one thread.
package scene

import (
	"sync/atomic"

	"github.com/gogpu/tilerast/internal/parallel"
)

// Scene is one fully binned frame.
type Scene struct {
	// FB is the framebuffer the bins render into.
	FB *Framebuffer

	// ActiveQueries are the queries that were already counting when the
	// scene started. Every tile begins them before its first command.
	ActiveQueries []*Query

	// Fence, if set, is signalled once the whole scene is rasterized.
	Fence *Fence

	// PermitLinear allows rect-only bins to take the linear path.
	PermitLinear bool

	grid parallel.Grid
	bins []Bin

	// next is the bin iterator's claim counter.
	next atomic.Int64

	pool *Pool
}

// New creates an empty scene for fb.
func New(fb *Framebuffer) (*Scene, error) {
	s := &Scene{}
	if err := s.init(fb); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) init(fb *Framebuffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	s.FB = fb
	s.grid = parallel.NewGrid(fb.Width, fb.Height)

	n := s.grid.TileCount()
	if cap(s.bins) >= n {
		s.bins = s.bins[:n]
	} else {
		s.bins = make([]Bin, n)
	}
	return nil
}

// Grid returns the scene's tile grid.
func (s *Scene) Grid() parallel.Grid {
	return s.grid
}

// Bin returns the bin of tile (tx, ty).
func (s *Scene) Bin(tx, ty int) *Bin {
	return &s.bins[s.grid.Index(tx, ty)]
}

// BinAtIndex returns the bin with row-major index idx.
func (s *Scene) BinAtIndex(idx int) *Bin {
	return &s.bins[idx]
}

// BinEverywhere appends a command to every bin.
func (s *Scene) BinEverywhere(kind Kind, arg Arg) {
	for i := range s.bins {
		s.bins[i].Append(kind, arg)
	}
}

// Empty reports whether every bin is empty.
func (s *Scene) Empty() bool {
	for i := range s.bins {
		if !s.bins[i].Empty() {
			return false
		}
	}
	return true
}

// Commands returns the total number of binned commands.
func (s *Scene) Commands() int {
	n := 0
	for i := range s.bins {
		n += s.bins[i].Len()
	}
	return n
}

// BeginIteration rewinds the bin iterator. It must be called before any
// thread calls NextBin for this scene.
func (s *Scene) BeginIteration() {
	s.next.Store(0)
}

// NextBin claims the next tile. Each tile of the grid is returned to
// exactly one caller; ok is false once all tiles are claimed. Empty bins
// are returned too.
//
// Safe for concurrent use.
func (s *Scene) NextBin() (bin *Bin, tile parallel.Tile, ok bool) {
	idx := int(s.next.Add(1) - 1)
	tile, ok = s.grid.TileAtIndex(idx)
	if !ok {
		return nil, parallel.Tile{}, false
	}
	return &s.bins[idx], tile, true
}

// Reset empties every bin and drops queries, fence and flags, keeping the
// framebuffer and bin storage.
func (s *Scene) Reset() {
	for i := range s.bins {
		s.bins[i].Reset()
	}
	clear(s.ActiveQueries)
	s.ActiveQueries = s.ActiveQueries[:0]
	s.Fence = nil
	s.PermitLinear = false
	s.next.Store(0)
}

// Release returns a pooled scene to its pool. It is a no-op for scenes
// created with New.
func (s *Scene) Release() {
	if s.pool != nil {
		s.pool.Put(s)
	}
}

// Pooled reports whether the scene came from a Pool.
func (s *Scene) Pooled() bool {
	return s.pool != nil
}
