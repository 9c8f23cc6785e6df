package tilerast

import (
	"fmt"

	"github.com/gogpu/tilerast/internal/parallel"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// Triangles are rasterized hierarchically: the tile is walked in 16x16
// blocks, blocks entirely outside any edge are dropped, blocks inside every
// edge are shaded whole, and the rest are split into 4x4 blocks that get a
// per-pixel coverage mask. Coverage is evaluated at pixel centres and
// replicated to every sample.

// triPlanes is the set of edge functions one triangle command tests, with C
// rebased to the current tile origin.
type triPlanes struct {
	p [scene.MaxPlanes]scene.EdgePlane
	n int
}

func triangleHandler(n int) handler {
	return func(t *Task, arg *scene.Arg) {
		planes, inputs, ok := t.setupTriangle(arg, n)
		if !ok {
			return
		}
		for y := 0; y < t.height; y += 16 {
			for x := 0; x < t.width; x += 16 {
				t.triangleBlock16(&planes, inputs, x, y)
			}
		}
	}
}

func triangleBlockHandler(n, size int) handler {
	return func(t *Task, arg *scene.Arg) {
		planes, inputs, ok := t.setupTriangle(arg, n)
		if !ok {
			return
		}
		x, y := int(arg.BlockX), int(arg.BlockY)
		if x%size != 0 || y%size != 0 || x >= parallel.TileSize || y >= parallel.TileSize {
			panic(fmt.Sprintf("tilerast: triangle block (%d,%d) not aligned to %d", x, y, size))
		}
		if size == 16 {
			t.triangleBlock16(&planes, inputs, x, y)
		} else {
			t.triangleBlock4(&planes, inputs, x, y)
		}
	}
}

// setupTriangle selects the planes named by arg.PlaneMask and rebases them
// to the tile origin. The plane count must match the command kind.
func (t *Task) setupTriangle(arg *scene.Arg, n int) (triPlanes, *shader.Inputs, bool) {
	var planes triPlanes
	tri := arg.Triangle
	if tri == nil || tri.Inputs.Disable || t.state == nil {
		return planes, nil, false
	}

	for i := range tri.Count {
		if arg.PlaneMask&(1<<i) == 0 {
			continue
		}
		if planes.n == scene.MaxPlanes {
			break
		}
		e := tri.Planes[i]
		e.C += e.DCDX*int64(t.x) + e.DCDY*int64(t.y)
		planes.p[planes.n] = e
		planes.n++
	}
	if planes.n != n {
		panic(fmt.Sprintf("tilerast: triangle command with %d planes selected, kind expects %d", planes.n, n))
	}
	return planes, &tri.Inputs, true
}

// classify returns whether the size x size block at tile-relative (x, y)
// is entirely outside some edge, or entirely inside all of them.
func (tp *triPlanes) classify(x, y, size int) (outside, inside bool) {
	inside = true
	span := int64(size - 1)
	for _, e := range tp.p[:tp.n] {
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
		if hi <= 0 {
			return true, false
		}
		if lo <= 0 {
			inside = false
		}
	}
	return false, inside
}

// mask4 returns the coverage of the 4x4 block at tile-relative (x, y).
func (tp *triPlanes) mask4(x, y int) uint16 {
	m := uint16(0xFFFF)
	for _, e := range tp.p[:tp.n] {
		row := e.Eval(x, y)
		var pm uint16
		for py := range shader.BlockSize {
			c := row
			for px := range shader.BlockSize {
				if c > 0 {
					pm |= 1 << (py*shader.BlockSize + px)
				}
				c += e.DCDX
			}
			row += e.DCDY
		}
		m &= pm
		if m == 0 {
			break
		}
	}
	return m
}

func (t *Task) triangleBlock16(tp *triPlanes, inputs *shader.Inputs, x, y int) {
	if x >= t.width || y >= t.height {
		return
	}
	outside, inside := tp.classify(x, y, 16)
	if outside {
		return
	}
	for by := y; by < y+16; by += shader.BlockSize {
		for bx := x; bx < x+16; bx += shader.BlockSize {
			if inside {
				t.shadeQuads(inputs, bx, by, blockFullMask)
			} else {
				t.triangleBlock4(tp, inputs, bx, by)
			}
		}
	}
}

func (t *Task) triangleBlock4(tp *triPlanes, inputs *shader.Inputs, x, y int) {
	if x >= t.width || y >= t.height {
		return
	}
	outside, inside := tp.classify(x, y, shader.BlockSize)
	switch {
	case outside:
		return
	case inside:
		t.shadeQuads(inputs, x, y, blockFullMask)
	default:
		if m := tp.mask4(x, y); m != 0 {
			t.shadeQuads(inputs, x, y, replicate(m))
		}
	}
}
