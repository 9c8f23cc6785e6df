// Package parallel provides the threading and tiling primitives used by the
// tilerast rasterizer.
//
// The framebuffer is divided into 64x64 pixel tiles. Each tile is the unit of
// work claimed by one rasterizer thread; no two threads ever touch the pixels
// of the same tile during a scene. Key pieces:
//
//   - Tile and Grid: tile geometry with right/bottom edge clipping
//   - TileSet: a lock-free atomic bitmap of tiles
//   - Semaphore and Barrier: the wake/done signals and the reusable
//     rendezvous used by the two-phase scene handshake
//   - ThreadPool: a fixed set of worker goroutines, each with its own
//     wake and done semaphore
//
// Thread safety: Grid and Tile are immutable values. TileSet, Semaphore,
// Barrier and ThreadPool are safe for concurrent use.
package parallel

// Tile size constants.
const (
	// TileSize is the width and height of a tile in pixels.
	// Must be a multiple of 16 so that 16x16 and 4x4 block walks line up.
	TileSize = 64

	// TileOrder is log2(TileSize).
	TileOrder = 6

	// TilePixels is the total number of pixels in a full tile.
	TilePixels = TileSize * TileSize
)

// Tile describes one tile of a framebuffer.
//
// X and Y are tile indices; Width and Height are the clipped pixel dimensions
// (smaller than TileSize for tiles on the right or bottom edge).
type Tile struct {
	// X is the tile column index (0-based).
	X int

	// Y is the tile row index (0-based).
	Y int

	// Width is the actual width in pixels (may be < TileSize for edge tiles).
	Width int

	// Height is the actual height in pixels (may be < TileSize for edge tiles).
	Height int
}

// Bounds returns the pixel bounds of this tile in framebuffer space.
// Returns (x, y, width, height) where x,y is the top-left corner.
func (t Tile) Bounds() (x, y, w, h int) {
	return t.X * TileSize, t.Y * TileSize, t.Width, t.Height
}

// Origin returns the framebuffer pixel position of the tile's top-left corner.
func (t Tile) Origin() (x, y int) {
	return t.X * TileSize, t.Y * TileSize
}

// Contains returns true if the framebuffer pixel (px, py) is within this tile.
func (t Tile) Contains(px, py int) bool {
	x0, y0 := t.Origin()
	return px >= x0 && px < x0+t.Width &&
		py >= y0 && py < y0+t.Height
}

// Full reports whether the tile is not clipped by the framebuffer edge.
func (t Tile) Full() bool {
	return t.Width == TileSize && t.Height == TileSize
}

// Empty reports whether the tile has no pixels.
func (t Tile) Empty() bool {
	return t.Width <= 0 || t.Height <= 0
}
