package shader

import (
	"encoding/binary"
	"math/bits"

	"github.com/chewxy/math32"

	"github.com/gogpu/tilerast/internal/format"
)

// Reference fragment routines. They write straight to the destination
// (no blending, no depth test) and count every written sample in
// ThreadData.VisCounter.

// Solid returns a State that fills covered samples with a constant colour.
func Solid(rgba [4]float32) *State {
	s := &State{
		Desc: Desc{Name: "solid", Color: rgba, Opaque: rgba[3] >= 1},
		Kind: KindGeneral,
	}
	s.Funcs[StrategyWholeTile] = solidFragment
	s.Funcs[StrategyEdgeTest] = solidFragment
	s.Linear = solidLinear
	return s
}

// Interpolated returns a State that writes attribute 0 as the colour.
func Interpolated() *State {
	s := &State{
		Desc: Desc{Name: "interpolated"},
		Kind: KindGeneral,
	}
	s.Funcs[StrategyWholeTile] = interpolatedFragment
	s.Funcs[StrategyEdgeTest] = interpolatedFragment
	s.Linear = interpolatedLinear
	return s
}

// Blit returns a State that samples tex with nearest filtering at
// attribute 1. kind must be KindBlitRGBA or KindBlitRGB1; KindBlitRGB1
// writes alpha as one.
func Blit(tex *Texture, kind Kind) *State {
	name := "blit-rgba"
	if kind == KindBlitRGB1 {
		name = "blit-rgb1"
	} else {
		kind = KindBlitRGBA
	}
	s := &State{
		Desc:    Desc{Name: name, Opaque: true},
		Kind:    kind,
		Texture: tex,
	}
	s.Funcs[StrategyWholeTile] = blitFragment
	s.Funcs[StrategyEdgeTest] = blitFragment
	s.Linear = blitLinear
	return s
}

// sampleMask returns the bits of a block mask that belong to the first
// n sample slots.
func sampleMask(n int) uint64 {
	if n <= 0 {
		n = 1
	}
	if n >= MaxSamples {
		return FullMask
	}
	return (uint64(1) << (16 * n)) - 1
}

func countVisible(inv *Invocation) {
	if inv.Thread != nil {
		inv.Thread.VisCounter += uint64(bits.OnesCount64(inv.Mask & sampleMask(inv.Samples)))
	}
}

// forEachCovered calls fn for every covered pixel of the block with the
// pixel position and the sample slots covering it.
func forEachCovered(inv *Invocation, fn func(px, py int, samples uint8)) {
	for py := range BlockSize {
		for px := range BlockSize {
			var covered uint8
			for s := range max(inv.Samples, 1) {
				if inv.Covered(px, py, s) {
					covered |= 1 << s
				}
			}
			if covered != 0 {
				fn(px, py, covered)
			}
		}
	}
}

func writePixel(t *Target, px, py int, samples uint8, value []byte) {
	for s := range max(t.Samples, 1) {
		if samples&(1<<s) != 0 {
			off := t.Offset(px, py, s)
			copy(t.Data[off:off+t.BytesPerPixel], value)
		}
	}
}

func solidFragment(s *State, inv *Invocation) {
	if inv.Inputs != nil && inv.Inputs.Disable {
		return
	}
	for i := range inv.Color {
		t := &inv.Color[i]
		if !t.Valid() {
			continue
		}
		px, ok := inv.Thread.PackColor(t.Format, s.Desc.Color)
		if !ok {
			continue
		}
		value := px[:t.BytesPerPixel]
		forEachCovered(inv, func(x, y int, samples uint8) {
			writePixel(t, x, y, samples, value)
		})
	}
	countVisible(inv)
}

func solidLinear(s *State, inv *LinearInvocation) {
	t := &inv.Dst
	px, ok := inv.Thread.PackColor(t.Format, s.Desc.Color)
	if !ok || inv.Width <= 0 || inv.Height <= 0 {
		return
	}

	// Fill the first row, then replicate it.
	rowBytes := inv.Width * t.BytesPerPixel
	first := t.Data[:rowBytes]
	for x := 0; x < rowBytes; x += t.BytesPerPixel {
		copy(first[x:x+t.BytesPerPixel], px[:t.BytesPerPixel])
	}
	for y := 1; y < inv.Height; y++ {
		off := y * t.Stride
		copy(t.Data[off:off+rowBytes], first)
	}
	inv.Thread.VisCounter += uint64(inv.Width * inv.Height)
}

func interpolatedFragment(_ *State, inv *Invocation) {
	if inv.Inputs == nil || inv.Inputs.Disable {
		return
	}
	for i := range inv.Color {
		t := &inv.Color[i]
		if !t.Valid() {
			continue
		}
		forEachCovered(inv, func(x, y int, samples uint8) {
			c := inv.Inputs.Eval(0, inv.X+x, inv.Y+y)
			px, err := format.PackColor(t.Format, c)
			if err != nil {
				return
			}
			writePixel(t, x, y, samples, px[:t.BytesPerPixel])
		})
	}
	countVisible(inv)
}

func interpolatedLinear(_ *State, inv *LinearInvocation) {
	if inv.Inputs == nil || inv.Inputs.Disable {
		return
	}
	t := &inv.Dst
	for y := range inv.Height {
		for x := range inv.Width {
			c := inv.Inputs.Eval(0, inv.X+x, inv.Y+y)
			px, err := format.PackColor(t.Format, c)
			if err != nil {
				return
			}
			off := t.Offset(x, y, 0)
			copy(t.Data[off:off+t.BytesPerPixel], px[:t.BytesPerPixel])
		}
	}
	inv.Thread.VisCounter += uint64(inv.Width * inv.Height)
}

// texel returns the bytes of the texel nearest to the normalized
// coordinate (u, v), clamped to the texture edge.
func texel(tex *Texture, u, v float32) []byte {
	tx := int(math32.Floor(u * float32(tex.Width)))
	ty := int(math32.Floor(v * float32(tex.Height)))
	tx = min(max(tx, 0), tex.Width-1)
	ty = min(max(ty, 0), tex.Height-1)

	bpp := format.BytesPerPixel(tex.Format)
	off := ty*tex.Stride + tx*bpp
	return tex.Data[off : off+bpp]
}

// blitTexel converts one source texel into out for target t.
func blitTexel(s *State, src []byte, t *Target, out []byte) bool {
	if s.Texture.Format == t.Format {
		copy(out, src)
		if s.Kind == KindBlitRGB1 {
			if fill, ok := format.AlphaFill(t.Format); ok {
				binary.LittleEndian.PutUint32(out, binary.LittleEndian.Uint32(out)|fill)
			}
		}
		return true
	}

	c := format.UnpackColor(s.Texture.Format, src)
	if s.Kind == KindBlitRGB1 {
		c[3] = 1
	}
	px, err := format.PackColor(t.Format, c)
	if err != nil {
		return false
	}
	copy(out, px[:t.BytesPerPixel])
	return true
}

func blitFragment(s *State, inv *Invocation) {
	if s.Texture == nil || inv.Inputs == nil || inv.Inputs.Disable {
		return
	}
	var buf [format.MaxBytesPerPixel]byte
	for i := range inv.Color {
		t := &inv.Color[i]
		if !t.Valid() {
			continue
		}
		forEachCovered(inv, func(x, y int, samples uint8) {
			uv := inv.Inputs.Eval(1, inv.X+x, inv.Y+y)
			out := buf[:t.BytesPerPixel]
			if blitTexel(s, texel(s.Texture, uv[0], uv[1]), t, out) {
				writePixel(t, x, y, samples, out)
			}
		})
	}
	countVisible(inv)
}

func blitLinear(s *State, inv *LinearInvocation) {
	if s.Texture == nil || inv.Inputs == nil || inv.Inputs.Disable {
		return
	}
	var buf [format.MaxBytesPerPixel]byte
	t := &inv.Dst
	out := buf[:t.BytesPerPixel]
	for y := range inv.Height {
		for x := range inv.Width {
			uv := inv.Inputs.Eval(1, inv.X+x, inv.Y+y)
			if !blitTexel(s, texel(s.Texture, uv[0], uv[1]), t, out) {
				return
			}
			off := t.Offset(x, y, 0)
			copy(t.Data[off:off+t.BytesPerPixel], out)
		}
	}
	inv.Thread.VisCounter += uint64(inv.Width * inv.Height)
}
