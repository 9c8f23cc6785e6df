package binner

import (
	"image"
	"math"

	"github.com/gogpu/tilerast/internal/parallel"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// SubpixelBits is the fixed-point precision of vertex positions.
const SubpixelBits = 8

const (
	fixedOne  = 1 << SubpixelBits
	fixedHalf = fixedOne / 2
)

// Vertex is a screen-space position in pixels.
type Vertex struct {
	X, Y float32
}

func toFixed(v float32) int64 {
	return int64(math.Round(float64(v) * fixedOne))
}

// edgePlane returns the edge function of the directed edge a->b, scaled so
// that it evaluates at pixel centres of integer pixel coordinates.
func edgePlane(ax, ay, bx, by int64) scene.EdgePlane {
	dx, dy := bx-ax, by-ay
	return scene.EdgePlane{
		C:    dx*(fixedHalf-ay) - dy*(fixedHalf-ax),
		DCDX: -dy * fixedOne,
		DCDY: dx * fixedOne,
	}
}

// setupTriangle builds the edge planes of v with interior-positive
// orientation and the top-left fill rule applied. ok is false for
// degenerate triangles.
func setupTriangle(v [3]Vertex) (planes [3]scene.EdgePlane, ok bool) {
	var fx, fy [3]int64
	for i := range v {
		fx[i], fy[i] = toFixed(v[i].X), toFixed(v[i].Y)
	}

	area := (fx[1]-fx[0])*(fy[2]-fy[0]) - (fy[1]-fy[0])*(fx[2]-fx[0])
	if area == 0 {
		return planes, false
	}

	for i := range 3 {
		j := (i + 1) % 3
		e := edgePlane(fx[i], fy[i], fx[j], fy[j])
		if area < 0 {
			e = scene.EdgePlane{C: -e.C, DCDX: -e.DCDX, DCDY: -e.DCDY}
		}
		// Pixels exactly on a top or left edge are inside.
		if e.DCDX > 0 || (e.DCDX == 0 && e.DCDY > 0) {
			e.C++
		}
		planes[i] = e
	}
	return planes, true
}

// bounds returns the pixel bounding box of v, exclusive max.
func bounds(v [3]Vertex) image.Rectangle {
	minX, minY := v[0].X, v[0].Y
	maxX, maxY := v[0].X, v[0].Y
	for _, p := range v[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX)))+1, int(math.Ceil(float64(maxY)))+1,
	)
}

// scissorPlanes returns half-plane tests for the scissor sides that cut bb.
// bb must already be clipped to the framebuffer, which tiles clip to anyway.
func scissorPlanes(bb, sc image.Rectangle) []scene.EdgePlane {
	var planes []scene.EdgePlane
	if bb.Min.X < sc.Min.X {
		planes = append(planes, scene.EdgePlane{C: int64(1 - sc.Min.X), DCDX: 1})
	}
	if bb.Max.X > sc.Max.X {
		planes = append(planes, scene.EdgePlane{C: int64(sc.Max.X), DCDX: -1})
	}
	if bb.Min.Y < sc.Min.Y {
		planes = append(planes, scene.EdgePlane{C: int64(1 - sc.Min.Y), DCDY: 1})
	}
	if bb.Max.Y > sc.Max.Y {
		planes = append(planes, scene.EdgePlane{C: int64(sc.Max.Y), DCDY: -1})
	}
	return planes
}

// tileTest classifies the full-size tile at pixel origin (x, y) against e.
func tileTest(e scene.EdgePlane, x, y int) (outside, inside bool) {
	const span = parallel.TileSize - 1
	c := e.Eval(x, y)
	lo, hi := c, c
	if e.DCDX < 0 {
		lo += e.DCDX * span
	} else {
		hi += e.DCDX * span
	}
	if e.DCDY < 0 {
		lo += e.DCDY * span
	} else {
		hi += e.DCDY * span
	}
	return hi <= 0, lo > 0
}

// Triangle bins a triangle shaded with st. Tiles the triangle fully covers
// get a shade-tile command; other touched tiles get a triangle command that
// only tests the planes crossing the tile, using a block-restricted kind
// when the triangle fits in one 16x16 or 4x4 block of the tile.
func (b *Builder) Triangle(v [3]Vertex, st *shader.State, inputs *shader.Inputs) {
	if st == nil {
		return
	}
	edges, ok := setupTriangle(v)
	if !ok {
		return
	}

	bb := bounds(v).Intersect(image.Rect(0, 0, b.fb.Width, b.fb.Height))
	if bb.Empty() {
		return
	}
	tri := &scene.Triangle{}
	if inputs != nil {
		tri.Inputs = *inputs
	}
	tri.Count = copy(tri.Planes[:], edges[:])
	for _, p := range scissorPlanes(bb, b.scissor) {
		tri.Planes[tri.Count] = p
		tri.Count++
	}

	bb = bb.Intersect(b.scissor)
	tx0, ty0, tx1, ty1, ok := b.grid.TileRange(bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)
	if !ok {
		return
	}

	shadeKind := scene.KindShadeTile
	if st.Desc.Opaque {
		shadeKind = scene.KindShadeTileOpaque
	}

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			x, y := tx*parallel.TileSize, ty*parallel.TileSize

			var mask uint8
			n := 0
			outside := false
			for i, e := range tri.Planes[:tri.Count] {
				out, in := tileTest(e, x, y)
				if out {
					outside = true
					break
				}
				if !in {
					mask |= 1 << i
					n++
				}
			}
			if outside {
				continue
			}

			bin := b.bind(b.grid.Index(tx, ty), st)
			if n == 0 {
				bin.Append(shadeKind, scene.Arg{Inputs: &tri.Inputs})
				continue
			}

			arg := scene.Arg{Triangle: tri, PlaneMask: mask}
			kind, _ := scene.TriangleKind(n)
			if bx, by, size, fits := blockFit(bb, x, y, n); fits {
				arg.BlockX, arg.BlockY = int32(bx), int32(by)
				switch {
				case size == 4:
					kind = scene.KindTriangle3Block4
				case n == 3:
					kind = scene.KindTriangle3Block16
				default:
					kind = scene.KindTriangle4Block16
				}
			}
			bin.Append(kind, arg)
		}
	}
}

// blockFit reports whether bb, seen from the tile at (x, y), lies in one
// aligned 4x4 (three planes only) or 16x16 block of the tile.
func blockFit(bb image.Rectangle, x, y, n int) (bx, by, size int, ok bool) {
	if n != 3 && n != 4 {
		return 0, 0, 0, false
	}
	x0, y0 := bb.Min.X-x, bb.Min.Y-y
	x1, y1 := bb.Max.X-1-x, bb.Max.Y-1-y
	if x0 < 0 || y0 < 0 || x1 >= parallel.TileSize || y1 >= parallel.TileSize {
		return 0, 0, 0, false
	}
	if n == 3 && x0/4 == x1/4 && y0/4 == y1/4 {
		return x0 &^ 3, y0 &^ 3, 4, true
	}
	if x0/16 == x1/16 && y0/16 == y1/16 {
		return x0 &^ 15, y0 &^ 15, 16, true
	}
	return 0, 0, 0, false
}
