// Package shader defines the hand-off point between the tile rasterizer and
// fragment processing.
//
// The rasterizer never interprets colours itself. For every 4x4 pixel block
// it decides to shade, it calls one of the FragmentFunc entry points of the
// currently bound State, passing the block position, interpolation inputs,
// per-plane destination views, a coverage mask and the calling thread's
// scratch data. Production fragment code is generated elsewhere; this package
// carries the ABI plus a few reference routines (see builtin.go) that are
// enough to drive the rasterizer end to end.
package shader

import (
	"github.com/gogpu/gputypes"
)

// BlockSize is the edge length of the pixel block a FragmentFunc shades.
const BlockSize = 4

// MaxSamples is the largest supported multisample count. Coverage for a
// block is 16 bits per sample, so four samples fill a uint64 mask.
const MaxSamples = 4

// FullMask covers every pixel of every sample slot of a block.
const FullMask = ^uint64(0)

// MaxAttributes is the number of interpolated vec4 inputs a State may read.
const MaxAttributes = 8

// Strategy selects which entry point of a State the rasterizer calls.
type Strategy uint8

const (
	// StrategyWholeTile is used when the block is known to be fully
	// covered. The mask is always FullMask.
	StrategyWholeTile Strategy = iota

	// StrategyEdgeTest is used for partially covered blocks. The mask
	// carries per-sample coverage.
	StrategyEdgeTest

	// NumStrategies is the number of entry points in a State.
	NumStrategies
)

// Kind tells the rasterizer what a State does, so that recognisable
// operations can be replaced by a direct copy.
type Kind uint8

const (
	// KindGeneral is any fragment routine.
	KindGeneral Kind = iota

	// KindBlitRGBA copies texels from the bound texture unchanged.
	KindBlitRGBA

	// KindBlitRGB1 copies texels and forces alpha to one.
	KindBlitRGB1
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindGeneral:
		return "general"
	case KindBlitRGBA:
		return "blit-rgba"
	case KindBlitRGB1:
		return "blit-rgb1"
	}
	return "unknown"
}

// IsBlit reports whether k is one of the blit kinds.
func (k Kind) IsBlit() bool {
	return k == KindBlitRGBA || k == KindBlitRGB1
}

// Inputs holds interpolation coefficients for one primitive.
//
// Attribute a evaluates at framebuffer position (x, y) as
//
//	A0[a] + DADX[a]*x + DADY[a]*y
//
// where (x, y) is a pixel centre, i.e. integer coordinates plus one half.
// Attribute 0 is the colour by convention and attribute 1 the texture
// coordinate in normalized [0,1] units.
type Inputs struct {
	A0   [MaxAttributes][4]float32
	DADX [MaxAttributes][4]float32
	DADY [MaxAttributes][4]float32

	// Facing is true for front-facing primitives.
	Facing bool

	// Opaque hints that the result fully replaces the destination.
	Opaque bool

	// Disable marks inputs whose primitive was culled after binning;
	// shading with disabled inputs is a no-op.
	Disable bool

	// Layer is the framebuffer layer the primitive renders to.
	Layer int
}

// Eval returns attribute a at framebuffer pixel (x, y).
func (in *Inputs) Eval(a, x, y int) [4]float32 {
	fx := float32(x) + 0.5
	fy := float32(y) + 0.5
	var v [4]float32
	for c := range 4 {
		v[c] = in.A0[a][c] + in.DADX[a][c]*fx + in.DADY[a][c]*fy
	}
	return v
}

// Target is a view of one destination plane positioned at a block origin.
//
// The byte for pixel (px, py) of sample s, relative to the view origin, is
// at py*Stride + px*BytesPerPixel + s*SampleStride.
type Target struct {
	Data          []byte
	Stride        int
	SampleStride  int
	Samples       int
	BytesPerPixel int
	Format        gputypes.TextureFormat
}

// Valid reports whether the target points at memory.
func (t *Target) Valid() bool {
	return t.Data != nil
}

// Offset returns the byte offset of pixel (px, py) sample s.
func (t *Target) Offset(px, py, s int) int {
	return py*t.Stride + px*t.BytesPerPixel + s*t.SampleStride
}

// Invocation is the argument block of one FragmentFunc call.
type Invocation struct {
	// X and Y are the framebuffer position of the block's top-left pixel.
	X, Y int

	Inputs *Inputs

	// Color holds one view per colour plane; Depth is the depth/stencil
	// plane view and may be invalid.
	Color []Target
	Depth Target

	// Samples is the framebuffer's sample count.
	Samples int

	// Mask holds coverage, bit s*16 + py*4 + px for pixel (px, py) of
	// sample s.
	Mask uint64

	Thread *ThreadData
}

// Covered reports whether pixel (px, py) of sample s is covered.
func (inv *Invocation) Covered(px, py, s int) bool {
	return inv.Mask&(1<<(s*16+py*BlockSize+px)) != 0
}

// FragmentFunc shades one 4x4 block.
type FragmentFunc func(s *State, inv *Invocation)

// LinearInvocation is the argument block of a LinearFunc call: an
// axis-aligned span rectangle on a single 4-byte colour plane.
type LinearInvocation struct {
	// X, Y, Width and Height give the rectangle in framebuffer pixels.
	X, Y, Width, Height int

	Inputs *Inputs

	// Dst is positioned at (X, Y).
	Dst Target

	Thread *ThreadData
}

// LinearFunc shades a whole rectangle at once. It is only called on
// single-sampled, single-plane framebuffers without depth.
type LinearFunc func(s *State, inv *LinearInvocation)

// Texture is a read-only image bound to a State.
type Texture struct {
	Format        gputypes.TextureFormat
	Width, Height int
	Stride        int
	Data          []byte
}

// Desc is the serializable description a State is rebuilt from.
type Desc struct {
	// Name selects the registered factory.
	Name string

	// Color is a constant colour for routines that use one.
	Color [4]float32

	// Opaque hints that the routine never blends.
	Opaque bool
}

// State is a bound fragment-processing object: the entry points plus the
// resources they read.
type State struct {
	Desc Desc
	Kind Kind

	// Funcs is indexed by Strategy. A nil entry makes the rasterizer skip
	// blocks that would use it.
	Funcs [NumStrategies]FragmentFunc

	// Linear is optional; the rasterizer's linear path requires it.
	Linear LinearFunc

	// Texture is the blit source for blit kinds.
	Texture *Texture
}

// Name returns the registered routine name.
func (s *State) Name() string {
	if s == nil {
		return "<nil>"
	}
	return s.Desc.Name
}
