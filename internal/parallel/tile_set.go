package parallel

import (
	"math/bits"
	"sync/atomic"
)

// TileSet records a set of tiles using an atomic bitmap.
// It provides lock-free, thread-safe operations for concurrent access.
//
// The bitmap uses one bit per tile, packed into uint64 words (64 tiles per word).
// All methods are safe for concurrent use without external synchronization.
//
// Under its checktiles debug flag the rasterizer records every claimed
// tile of a scene here and verifies each was claimed exactly once.
type TileSet struct {
	// words is the atomic bitmap where each bit represents one tile.
	// Bit index = ty * tilesX + tx
	words []atomic.Uint64

	// tilesX is the number of tiles horizontally.
	tilesX int

	// tilesY is the number of tiles vertically.
	tilesY int
}

// NewTileSet creates an empty tile set for the given tile grid dimensions.
// Returns nil if dimensions are invalid (zero or negative).
func NewTileSet(tilesX, tilesY int) *TileSet {
	if tilesX <= 0 || tilesY <= 0 {
		return nil
	}

	totalTiles := tilesX * tilesY
	numWords := (totalTiles + 63) / 64 // Ceiling division

	return &TileSet{
		words:  make([]atomic.Uint64, numWords),
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Add adds tile (tx, ty) to the set and reports whether it was newly added.
// A false result for an in-bounds tile means some goroutine added it first.
// Out-of-bounds coordinates are ignored and report false.
func (s *TileSet) Add(tx, ty int) bool {
	if tx < 0 || tx >= s.tilesX || ty < 0 || ty >= s.tilesY {
		return false
	}
	idx := ty*s.tilesX + tx
	bit := uint64(1) << (idx & 63)
	old := s.words[idx/64].Or(bit)
	return old&bit == 0
}

// Has returns true if tile (tx, ty) is in the set.
// Returns false for out-of-bounds coordinates.
func (s *TileSet) Has(tx, ty int) bool {
	if tx < 0 || tx >= s.tilesX || ty < 0 || ty >= s.tilesY {
		return false
	}
	idx := ty*s.tilesX + tx
	return s.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// AddAll adds every tile of the grid to the set.
func (s *TileSet) AddAll() {
	totalTiles := s.tilesX * s.tilesY
	fullWords := totalTiles / 64
	remainder := totalTiles % 64

	for i := 0; i < fullWords; i++ {
		s.words[i].Store(^uint64(0))
	}

	// Set remaining bits in the last partial word
	if remainder > 0 {
		s.words[fullWords].Store((uint64(1) << remainder) - 1)
	}
}

// Clear removes every tile from the set.
func (s *TileSet) Clear() {
	for i := range s.words {
		s.words[i].Store(0)
	}
}

// IsEmpty returns true if the set holds no tiles.
func (s *TileSet) IsEmpty() bool {
	for i := range s.words {
		if s.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of tiles in the set.
func (s *TileSet) Count() int {
	count := 0
	for i := range s.words {
		count += bits.OnesCount64(s.words[i].Load())
	}
	return count
}

// ForEach calls fn for each tile in the set without modifying it.
// Tiles are visited in row-major order (left-to-right, top-to-bottom).
func (s *TileSet) ForEach(fn func(tx, ty int)) {
	if fn == nil {
		return
	}

	totalTiles := s.tilesX * s.tilesY

	for wordIdx := range s.words {
		word := s.words[wordIdx].Load()

		for word != 0 {
			bitIdx := bits.TrailingZeros64(word)

			tileIdx := wordIdx*64 + bitIdx
			if tileIdx >= totalTiles {
				break
			}
			fn(tileIdx%s.tilesX, tileIdx/s.tilesX)

			word &^= 1 << bitIdx
		}
	}
}

// TilesX returns the number of tiles horizontally.
func (s *TileSet) TilesX() int {
	return s.tilesX
}

// TilesY returns the number of tiles vertically.
func (s *TileSet) TilesY() int {
	return s.tilesY
}
