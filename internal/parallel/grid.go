package parallel

// Grid describes the tile layout of a framebuffer.
//
// The grid divides a framebuffer into 64x64 pixel tiles. Edge tiles may have
// smaller dimensions when the framebuffer is not evenly divisible by the tile
// size. Tiles are numbered in row-major order: index = ty * tilesX + tx.
//
// Grid is an immutable value and safe to share between goroutines.
type Grid struct {
	// tilesX is the number of tiles horizontally.
	tilesX int

	// tilesY is the number of tiles vertically.
	tilesY int

	// width is the framebuffer width in pixels.
	width int

	// height is the framebuffer height in pixels.
	height int
}

// NewGrid creates a tile grid covering a width x height framebuffer.
// A non-positive dimension yields an empty grid.
func NewGrid(width, height int) Grid {
	if width <= 0 || height <= 0 {
		return Grid{}
	}
	return Grid{
		tilesX: (width + TileSize - 1) >> TileOrder,
		tilesY: (height + TileSize - 1) >> TileOrder,
		width:  width,
		height: height,
	}
}

// TileAt returns the tile at tile coordinates (tx, ty), clipped to the
// framebuffer. ok is false if the coordinates are out of bounds.
func (g Grid) TileAt(tx, ty int) (t Tile, ok bool) {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return Tile{}, false
	}

	w := TileSize
	h := TileSize

	// Right edge tile
	if (tx+1)*TileSize > g.width {
		w = g.width - tx*TileSize
	}
	// Bottom edge tile
	if (ty+1)*TileSize > g.height {
		h = g.height - ty*TileSize
	}

	return Tile{X: tx, Y: ty, Width: w, Height: h}, true
}

// TileAtIndex returns the tile with row-major index idx.
func (g Grid) TileAtIndex(idx int) (Tile, bool) {
	if idx < 0 || idx >= g.TileCount() {
		return Tile{}, false
	}
	return g.TileAt(idx%g.tilesX, idx/g.tilesX)
}

// Index returns the row-major index of tile (tx, ty), or -1 if out of bounds.
func (g Grid) Index(tx, ty int) int {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return -1
	}
	return ty*g.tilesX + tx
}

// TileRange returns the inclusive tile coordinate range covering the pixel
// rectangle [x0, x1) x [y0, y1), clamped to the grid. ok is false if the
// rectangle does not intersect the framebuffer.
func (g Grid) TileRange(x0, y0, x1, y1 int) (tx0, ty0, tx1, ty1 int, ok bool) {
	// Clamp rectangle to framebuffer bounds
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, g.width)
	y1 = min(y1, g.height)

	if x0 >= x1 || y0 >= y1 {
		return 0, 0, 0, 0, false
	}

	return x0 >> TileOrder, y0 >> TileOrder, (x1 - 1) >> TileOrder, (y1 - 1) >> TileOrder, true
}

// ForEach calls fn for each tile in row-major order.
func (g Grid) ForEach(fn func(t Tile)) {
	for ty := range g.tilesY {
		for tx := range g.tilesX {
			t, _ := g.TileAt(tx, ty)
			fn(t)
		}
	}
}

// TileCount returns the total number of tiles in the grid.
func (g Grid) TileCount() int {
	return g.tilesX * g.tilesY
}

// TilesX returns the number of tiles horizontally.
func (g Grid) TilesX() int {
	return g.tilesX
}

// TilesY returns the number of tiles vertically.
func (g Grid) TilesY() int {
	return g.tilesY
}

// Width returns the framebuffer width in pixels.
func (g Grid) Width() int {
	return g.width
}

// Height returns the framebuffer height in pixels.
func (g Grid) Height() int {
	return g.height
}
