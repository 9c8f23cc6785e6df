package tilerast

import (
	"fmt"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// blockFullMask covers all 16 pixels of every sample slot of a block.
const blockFullMask = shader.FullMask

// replicate copies a 16-bit pixel mask into every sample slot.
func replicate(m uint16) uint64 {
	v := uint64(m)
	return v | v<<16 | v<<32 | v<<48
}

// clipMask returns the pixel mask of a block whose visible part is
// w x h pixels from its top-left corner.
func clipMask(w, h int) uint16 {
	w = min(max(w, 0), shader.BlockSize)
	h = min(max(h, 0), shader.BlockSize)
	row := uint16(1)<<w - 1
	var m uint16
	for y := range h {
		m |= row << (y * shader.BlockSize)
	}
	return m
}

// clearColor fills the tile region of one colour plane, in every layer and
// sample, with a packed value.
func (t *Task) clearColor(arg *scene.Arg) {
	cc := arg.ClearColor
	if cc == nil || cc.Plane < 0 || cc.Plane >= t.ncolor {
		return
	}
	tp := &t.color[cc.Plane]
	p := tp.plane
	if p == nil {
		return
	}

	bpp := p.BytesPerPixel
	rowBytes := t.width * bpp
	for layer := range p.Layers {
		for s := range p.Samples {
			base := tp.origin + s*p.SampleStride + layer*p.LayerStride

			// Fill the first row, then copy it down.
			first := p.Data[base : base+rowBytes]
			for x := 0; x < rowBytes; x += bpp {
				copy(first[x:x+bpp], cc.Value[:bpp])
			}
			for y := 1; y < t.height; y++ {
				off := base + y*p.Stride
				copy(p.Data[off:off+rowBytes], first)
			}
		}
	}
}

// setState binds the state for the commands that follow in this bin.
func (t *Task) setState(arg *scene.Arg) {
	t.state = arg.State
}

func (t *Task) beginQueryCmd(arg *scene.Arg) {
	if arg.Query != nil {
		t.beginQuery(arg.Query)
	}
}

func (t *Task) endQueryCmd(arg *scene.Arg) {
	if arg.Query != nil {
		t.endQuery(arg.Query)
	}
}

// shadeTile runs the whole-tile entry point over every 4x4 block of the
// tile. Blocks cut by the framebuffer edge go through shadeQuads.
func (t *Task) shadeTile(arg *scene.Arg) {
	t.shadeWholeTile(arg.Inputs)
}

// shadeTileOpaque is shadeTile for states that fully overwrite the colour
// planes. Opacity is only a hint: blocks see the same targets, depth
// included, as under shadeTile.
func (t *Task) shadeTileOpaque(arg *scene.Arg) {
	t.shadeWholeTile(arg.Inputs)
}

func (t *Task) shadeWholeTile(inputs *shader.Inputs) {
	if t.state == nil || (inputs != nil && inputs.Disable) {
		return
	}
	const bs = shader.BlockSize
	for y := 0; y < t.height; y += bs {
		for x := 0; x < t.width; x += bs {
			if x+bs <= t.width && y+bs <= t.height {
				t.invoke(shader.StrategyWholeTile, inputs, x, y, blockFullMask)
			} else {
				t.shadeQuads(inputs, x, y, blockFullMask)
			}
		}
	}
}

// shadeQuads runs the edge-test entry point on the 4x4 block at
// tile-relative (x, y) with the given per-sample coverage. The block must be
// 4-pixel aligned; coverage outside the tile is dropped.
func (t *Task) shadeQuads(inputs *shader.Inputs, x, y int, mask uint64) {
	const bs = shader.BlockSize
	if x%bs != 0 || y%bs != 0 {
		panic(fmt.Sprintf("tilerast: shade block (%d,%d) is not %d-pixel aligned", x, y, bs))
	}
	if x >= t.width || y >= t.height || x < 0 || y < 0 {
		return
	}
	if x+bs > t.width || y+bs > t.height {
		mask &= replicate(clipMask(t.width-x, t.height-y))
	}
	mask &= sampleSlots(t.scene.FB.Samples)
	if mask == 0 {
		return
	}
	t.invoke(shader.StrategyEdgeTest, inputs, x, y, mask)
}

// sampleSlots returns the mask bits used by n samples.
func sampleSlots(n int) uint64 {
	if n >= shader.MaxSamples {
		return shader.FullMask
	}
	return uint64(1)<<(16*max(n, 1)) - 1
}

// rectangle shades the part of an axis-aligned rectangle inside the tile.
func (t *Task) rectangle(arg *scene.Arg) {
	r := arg.Rect
	if r == nil || t.state == nil || r.Inputs.Disable {
		return
	}

	// Tile-relative, clipped to the tile.
	x0 := max(r.Box.Min.X-t.x, 0)
	y0 := max(r.Box.Min.Y-t.y, 0)
	x1 := min(r.Box.Max.X-t.x, t.width)
	y1 := min(r.Box.Max.Y-t.y, t.height)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	const bs = shader.BlockSize
	for by := y0 &^ (bs - 1); by < y1; by += bs {
		for bx := x0 &^ (bs - 1); bx < x1; bx += bs {
			m := rectBlockMask(x0-bx, y0-by, x1-bx, y1-by)
			t.shadeQuads(&r.Inputs, bx, by, replicate(m))
		}
	}
}

// rectBlockMask returns the pixels of a 4x4 block inside [x0,x1) x [y0,y1),
// all relative to the block origin.
func rectBlockMask(x0, y0, x1, y1 int) uint16 {
	var m uint16
	for py := max(y0, 0); py < min(y1, shader.BlockSize); py++ {
		for px := max(x0, 0); px < min(x1, shader.BlockSize); px++ {
			m |= 1 << (py*shader.BlockSize + px)
		}
	}
	return m
}

// outlineTile draws the tile border into colour plane 0.
func (t *Task) outlineTile() {
	if t.ncolor == 0 || t.color[0].plane == nil {
		return
	}
	tp := &t.color[0]
	p := tp.plane
	px, ok := t.thread.PackColor(p.Format, [4]float32{1, 0, 0, 1})
	if !ok {
		return
	}
	value := px[:p.BytesPerPixel]

	put := func(x, y int) {
		for s := range p.Samples {
			off := tp.origin + y*p.Stride + x*p.BytesPerPixel + s*p.SampleStride
			copy(p.Data[off:off+p.BytesPerPixel], value)
		}
	}
	for x := range t.width {
		put(x, 0)
		put(x, t.height-1)
	}
	for y := range t.height {
		put(0, y)
		put(t.width-1, y)
	}
}
