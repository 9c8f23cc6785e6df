package tilerast

import (
	"golang.org/x/exp/constraints"

	"github.com/gogpu/tilerast/scene"
)

// clearZS clears the tile region of the depth/stencil plane:
// every pixel becomes (value & mask) | (existing &^ mask).
func (t *Task) clearZS(arg *scene.Arg) {
	p := t.depth.plane
	if p == nil {
		return
	}
	v, m := arg.ClearZS.Value, arg.ClearZS.Mask

	switch p.BytesPerPixel {
	case 1:
		clearZSRegion(p, t.depth.origin, t.width, t.height, uint8(v), uint8(m))
	case 2:
		clearZSRegion(p, t.depth.origin, t.width, t.height, uint16(v), uint16(m))
	case 4:
		clearZSRegion(p, t.depth.origin, t.width, t.height, uint32(v), uint32(m))
	case 8:
		clearZSRegion(p, t.depth.origin, t.width, t.height, v, m)
	}
}

// clearZSRegion clears a width x height region starting at byte offset
// origin in every layer and sample of p. T must be as wide as one pixel.
func clearZSRegion[T constraints.Unsigned](p *scene.Plane, origin, width, height int, value, mask T) {
	bpp := p.BytesPerPixel
	rowBytes := width * bpp
	full := mask == ^T(0)
	value &= mask

	var pixel [8]byte
	if full {
		store(pixel[:bpp], value)
	}

	for layer := range p.Layers {
		for s := range p.Samples {
			base := origin + s*p.SampleStride + layer*p.LayerStride
			for y := range height {
				row := p.Data[base+y*p.Stride : base+y*p.Stride+rowBytes]
				if full {
					fillZSRow(row, pixel[:bpp])
				} else {
					maskZSRow(row, bpp, value, mask)
				}
			}
		}
	}
}

// fillZSRow repeats pixel across row.
func fillZSRow(row, pixel []byte) {
	bpp := len(pixel)
	for x := 0; x < len(row); x += bpp {
		copy(row[x:x+bpp], pixel)
	}
}

// maskZSRow replaces the mask bits of every bpp-byte pixel of row with
// value. value must already be masked.
func maskZSRow[T constraints.Unsigned](row []byte, bpp int, value, mask T) {
	for x := 0; x < len(row); x += bpp {
		px := row[x : x+bpp]
		store(px, value|load[T](px)&^mask)
	}
}

// load reads a little-endian pixel.
func load[T constraints.Unsigned](b []byte) T {
	var v T
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | T(b[i])
	}
	return v
}

// store writes a little-endian pixel.
func store[T constraints.Unsigned](b []byte, v T) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}
