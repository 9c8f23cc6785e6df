package tilerast

import (
	"encoding/binary"

	"github.com/gogpu/tilerast/internal/format"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// blitTileToDest copies the bound blit state's texture straight into colour
// plane 0 when the texture maps one texel to one pixel at an integer offset.
// Anything else is shaded normally.
func (t *Task) blitTileToDest(arg *scene.Arg) {
	if !t.blitDirect(arg.Inputs) {
		t.stats.BlitFallbacks++
		t.blitShade(arg)
	}
}

// blitShade shades a blit command as a regular whole-tile shade.
func (t *Task) blitShade(arg *scene.Arg) {
	t.shadeWholeTile(arg.Inputs)
}

// blitDirect performs the raw copy, reporting false if the fast path does
// not apply.
func (t *Task) blitDirect(inputs *shader.Inputs) bool {
	st := t.state
	if st == nil || inputs == nil || inputs.Disable || !st.Kind.IsBlit() || st.Texture == nil {
		return false
	}
	if t.ncolor == 0 || t.color[0].plane == nil || t.scene.FB.Samples != 1 {
		return false
	}
	tex := st.Texture
	dst := t.color[0].plane
	if !format.RawCopyCompatible(tex.Format, dst.Format) {
		return false
	}
	if inputs.Layer < 0 || inputs.Layer >= dst.Layers {
		return false
	}

	// Attribute 1 holds normalized texture coordinates; one texel per pixel
	// means a derivative of exactly 1/size with no cross terms.
	w, h := float32(tex.Width), float32(tex.Height)
	if inputs.DADX[1][0]*w != 1 || inputs.DADY[1][1]*h != 1 ||
		inputs.DADX[1][1] != 0 || inputs.DADY[1][0] != 0 {
		return false
	}
	ox, oy := inputs.A0[1][0]*w, inputs.A0[1][1]*h
	if ox != float32(int(ox)) || oy != float32(int(oy)) {
		return false
	}

	srcX := int(ox) + t.x
	srcY := int(oy) + t.y
	if srcX < 0 || srcY < 0 || srcX+t.width > tex.Width || srcY+t.height > tex.Height {
		return false
	}

	bpp := dst.BytesPerPixel
	rowBytes := t.width * bpp
	fill, orAlpha := uint32(0), false
	if st.Kind == shader.KindBlitRGB1 {
		fill, orAlpha = format.AlphaFill(dst.Format)
		orAlpha = orAlpha && bpp == 4
	}

	dstBase := t.color[0].origin + inputs.Layer*dst.LayerStride
	for y := range t.height {
		src := tex.Data[(srcY+y)*tex.Stride+srcX*bpp:][:rowBytes]
		row := dst.Data[dstBase+y*dst.Stride:][:rowBytes]
		copy(row, src)
		if orAlpha {
			for x := 0; x < rowBytes; x += 4 {
				binary.LittleEndian.PutUint32(row[x:], binary.LittleEndian.Uint32(row[x:])|fill)
			}
		}
	}
	return true
}
