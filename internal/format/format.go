// Package format describes the pixel formats a framebuffer plane may use and
// packs clear values into their in-memory encodings.
//
// Formats are identified by gputypes.TextureFormat so that planes can be
// described with the same vocabulary as GPU textures.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/internal/color"
)

// ErrUnsupportedFormat is returned for formats the rasterizer cannot address.
var ErrUnsupportedFormat = errors.New("format: unsupported format")

// MaxBytesPerPixel is the widest pixel any supported format stores.
const MaxBytesPerPixel = 16

// Aspect classifies which kind of data a format holds.
type Aspect uint8

const (
	// AspectColor holds colour data.
	AspectColor Aspect = iota
	// AspectDepth holds depth only.
	AspectDepth
	// AspectStencil holds stencil only.
	AspectStencil
	// AspectDepthStencil holds depth and stencil interleaved in one pixel.
	AspectDepthStencil
)

// Layout identifies the component arrangement of a colour format.
type Layout uint8

const (
	LayoutNone Layout = iota
	LayoutR8
	LayoutRGBA8
	LayoutBGRA8
	LayoutR32F
	LayoutRGBA32F
)

// Desc describes one pixel format.
type Desc struct {
	Format        gputypes.TextureFormat
	Name          string
	BytesPerPixel int
	Aspect        Aspect
	Layout        Layout
	SRGB          bool

	// DepthBits and StencilBits are zero for colour formats.
	// StencilShift is the bit position of the stencil value within the pixel.
	DepthBits    int
	StencilBits  int
	StencilShift int
}

// IsColor reports whether the format holds colour data.
func (d Desc) IsColor() bool { return d.Aspect == AspectColor }

// HasDepth reports whether the format has a depth component.
func (d Desc) HasDepth() bool { return d.DepthBits > 0 }

// HasStencil reports whether the format has a stencil component.
func (d Desc) HasStencil() bool { return d.StencilBits > 0 }

var descs = map[gputypes.TextureFormat]Desc{
	gputypes.TextureFormatR8Unorm: {
		Name: "r8unorm", BytesPerPixel: 1, Aspect: AspectColor, Layout: LayoutR8,
	},
	gputypes.TextureFormatRGBA8Unorm: {
		Name: "rgba8unorm", BytesPerPixel: 4, Aspect: AspectColor, Layout: LayoutRGBA8,
	},
	gputypes.TextureFormatRGBA8UnormSrgb: {
		Name: "rgba8unorm-srgb", BytesPerPixel: 4, Aspect: AspectColor, Layout: LayoutRGBA8, SRGB: true,
	},
	gputypes.TextureFormatBGRA8Unorm: {
		Name: "bgra8unorm", BytesPerPixel: 4, Aspect: AspectColor, Layout: LayoutBGRA8,
	},
	gputypes.TextureFormatBGRA8UnormSrgb: {
		Name: "bgra8unorm-srgb", BytesPerPixel: 4, Aspect: AspectColor, Layout: LayoutBGRA8, SRGB: true,
	},
	gputypes.TextureFormatR32Float: {
		Name: "r32float", BytesPerPixel: 4, Aspect: AspectColor, Layout: LayoutR32F,
	},
	gputypes.TextureFormatRGBA32Float: {
		Name: "rgba32float", BytesPerPixel: 16, Aspect: AspectColor, Layout: LayoutRGBA32F,
	},
	gputypes.TextureFormatStencil8: {
		Name: "stencil8", BytesPerPixel: 1, Aspect: AspectStencil, StencilBits: 8,
	},
	gputypes.TextureFormatDepth16Unorm: {
		Name: "depth16unorm", BytesPerPixel: 2, Aspect: AspectDepth, DepthBits: 16,
	},
	gputypes.TextureFormatDepth32Float: {
		Name: "depth32float", BytesPerPixel: 4, Aspect: AspectDepth, DepthBits: 32,
	},
	// Depth in the low 24 bits, stencil in the high byte.
	gputypes.TextureFormatDepth24PlusStencil8: {
		Name: "depth24plus-stencil8", BytesPerPixel: 4, Aspect: AspectDepthStencil,
		DepthBits: 24, StencilBits: 8, StencilShift: 24,
	},
	// Float depth in the low word, stencil in the next byte, 24 bits padding.
	gputypes.TextureFormatDepth32FloatStencil8: {
		Name: "depth32float-stencil8", BytesPerPixel: 8, Aspect: AspectDepthStencil,
		DepthBits: 32, StencilBits: 8, StencilShift: 32,
	},
}

func init() {
	for f, d := range descs {
		d.Format = f
		descs[f] = d
	}
}

// Lookup returns the description of f.
func Lookup(f gputypes.TextureFormat) (Desc, bool) {
	d, ok := descs[f]
	return d, ok
}

// MustLookup returns the description of f or panics.
func MustLookup(f gputypes.TextureFormat) Desc {
	d, ok := descs[f]
	if !ok {
		panic(fmt.Sprintf("format: unsupported format %v", f))
	}
	return d
}

// BytesPerPixel returns the pixel size of f, or 0 if f is unsupported.
func BytesPerPixel(f gputypes.TextureFormat) int {
	return descs[f].BytesPerPixel
}

// ByName returns the format with the given lower-case WebGPU-style name.
func ByName(name string) (gputypes.TextureFormat, bool) {
	for f, d := range descs {
		if d.Name == name {
			return f, true
		}
	}
	return gputypes.TextureFormatUndefined, false
}

// Name returns the WebGPU-style name of f.
func Name(f gputypes.TextureFormat) string {
	if d, ok := descs[f]; ok {
		return d.Name
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}

// PackColor encodes a linear RGBA colour in the layout of f. Only the first
// BytesPerPixel bytes of the result are meaningful.
func PackColor(f gputypes.TextureFormat, rgba [4]float32) ([MaxBytesPerPixel]byte, error) {
	var out [MaxBytesPerPixel]byte

	d, ok := descs[f]
	if !ok || !d.IsColor() {
		return out, fmt.Errorf("%w: %s is not a colour format", ErrUnsupportedFormat, Name(f))
	}

	enc := color.ToUnorm8
	if d.SRGB {
		enc = color.LinearToSRGB8
	}

	switch d.Layout {
	case LayoutR8:
		out[0] = color.ToUnorm8(rgba[0])
	case LayoutRGBA8:
		out[0], out[1], out[2], out[3] = enc(rgba[0]), enc(rgba[1]), enc(rgba[2]), color.ToUnorm8(rgba[3])
	case LayoutBGRA8:
		out[0], out[1], out[2], out[3] = enc(rgba[2]), enc(rgba[1]), enc(rgba[0]), color.ToUnorm8(rgba[3])
	case LayoutR32F:
		binary.LittleEndian.PutUint32(out[0:], math.Float32bits(rgba[0]))
	case LayoutRGBA32F:
		for i := range 4 {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(rgba[i]))
		}
	}
	return out, nil
}

// UnpackColor decodes one pixel of format f into linear RGBA.
// Missing components read as 0 for colour and 1 for alpha.
func UnpackColor(f gputypes.TextureFormat, px []byte) [4]float32 {
	d := descs[f]

	dec := color.FromUnorm8
	if d.SRGB {
		dec = color.SRGB8ToLinear
	}

	switch d.Layout {
	case LayoutR8:
		return [4]float32{color.FromUnorm8(px[0]), 0, 0, 1}
	case LayoutRGBA8:
		return [4]float32{dec(px[0]), dec(px[1]), dec(px[2]), color.FromUnorm8(px[3])}
	case LayoutBGRA8:
		return [4]float32{dec(px[2]), dec(px[1]), dec(px[0]), color.FromUnorm8(px[3])}
	case LayoutR32F:
		return [4]float32{math.Float32frombits(binary.LittleEndian.Uint32(px)), 0, 0, 1}
	case LayoutRGBA32F:
		var c [4]float32
		for i := range 4 {
			c[i] = math.Float32frombits(binary.LittleEndian.Uint32(px[i*4:]))
		}
		return c
	}
	return [4]float32{0, 0, 0, 1}
}

// PackDepthStencil encodes a depth/stencil clear for format f. The returned
// mask selects the bits that clearDepth/clearStencil ask to overwrite; the
// value holds the new contents of those bits.
func PackDepthStencil(f gputypes.TextureFormat, depth float64, stencil uint8, clearDepth, clearStencil bool) (value, mask uint64, err error) {
	d, ok := descs[f]
	if !ok || d.IsColor() {
		return 0, 0, fmt.Errorf("%w: %s is not a depth/stencil format", ErrUnsupportedFormat, Name(f))
	}

	depth = math.Max(0, math.Min(1, depth))

	if clearDepth && d.HasDepth() {
		switch d.DepthBits {
		case 16:
			value |= uint64(color.ToUnorm16(float32(depth)))
			mask |= 0xFFFF
		case 24:
			value |= uint64(color.ToUnorm24(float32(depth)))
			mask |= 0xFFFFFF
		case 32:
			value |= uint64(math.Float32bits(float32(depth)))
			mask |= 0xFFFFFFFF
		}
	}
	if clearStencil && d.HasStencil() {
		value |= uint64(stencil) << d.StencilShift
		mask |= uint64(0xFF) << d.StencilShift
	}
	return value, mask, nil
}

// FullMask returns the mask covering every bit of a pixel of format f.
func FullMask(f gputypes.TextureFormat) uint64 {
	n := descs[f].BytesPerPixel
	if n >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * n)) - 1
}

// RawCopyCompatible reports whether pixels of src can be copied byte for
// byte into a plane of dst.
func RawCopyCompatible(src, dst gputypes.TextureFormat) bool {
	s, ok1 := descs[src]
	d, ok2 := descs[dst]
	return ok1 && ok2 && s.IsColor() && src == dst && d.BytesPerPixel == s.BytesPerPixel
}

// AlphaFill returns the bits that force alpha to fully opaque in a 4-byte
// pixel of format f, read as a little-endian uint32. ok is false when the
// format has no 8-bit alpha byte.
func AlphaFill(f gputypes.TextureFormat) (bits uint32, ok bool) {
	switch descs[f].Layout {
	case LayoutRGBA8, LayoutBGRA8:
		return 0xFF000000, true
	}
	return 0, false
}
