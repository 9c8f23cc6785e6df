package scene

import (
	"image"

	"github.com/gogpu/tilerast/shader"
)

// Kind identifies a rasterization command in a bin.
type Kind uint8

// Command kinds. The order is part of the recording format.
const (
	// KindClearColor fills one colour plane of the tile.
	// Arg: ClearColor.
	KindClearColor Kind = iota

	// KindClearZS clears the depth/stencil plane under a bit mask.
	// Arg: ClearZS.
	KindClearZS

	// KindShadeTile shades every 4x4 block of the tile.
	// Arg: Inputs.
	KindShadeTile

	// KindShadeTileOpaque is KindShadeTile with a no-blend hint.
	// Arg: Inputs.
	KindShadeTileOpaque

	// KindTriangle1 through KindTriangle8 rasterize a triangle against the
	// given number of edge planes. Arg: Triangle, PlaneMask.
	KindTriangle1
	KindTriangle2
	KindTriangle3
	KindTriangle4
	KindTriangle5
	KindTriangle6
	KindTriangle7
	KindTriangle8

	// KindTriangle3Block4 rasterizes a three-plane triangle known to lie in
	// the 4x4 block at (BlockX, BlockY). Arg: Triangle, PlaneMask, BlockX, BlockY.
	KindTriangle3Block4

	// KindTriangle3Block16 is the same for a 16x16 block.
	KindTriangle3Block16

	// KindTriangle4Block16 is the four-plane variant of KindTriangle3Block16.
	KindTriangle4Block16

	// KindSetState binds a new fragment state for the commands that follow.
	// Arg: State.
	KindSetState

	// KindBeginQuery starts counting for a query. Arg: Query.
	KindBeginQuery

	// KindEndQuery stops counting for a query. Arg: Query.
	KindEndQuery

	// KindRectangle shades an axis-aligned rectangle. Arg: Rect.
	KindRectangle

	// KindBlit copies the bound state's texture to the tile. Arg: Inputs.
	KindBlit

	// NumKinds is the number of command kinds.
	NumKinds
)

var kindNames = [NumKinds]string{
	KindClearColor:       "clear-color",
	KindClearZS:          "clear-zs",
	KindShadeTile:        "shade-tile",
	KindShadeTileOpaque:  "shade-tile-opaque",
	KindTriangle1:        "triangle-1",
	KindTriangle2:        "triangle-2",
	KindTriangle3:        "triangle-3",
	KindTriangle4:        "triangle-4",
	KindTriangle5:        "triangle-5",
	KindTriangle6:        "triangle-6",
	KindTriangle7:        "triangle-7",
	KindTriangle8:        "triangle-8",
	KindTriangle3Block4:  "triangle-3-4",
	KindTriangle3Block16: "triangle-3-16",
	KindTriangle4Block16: "triangle-4-16",
	KindSetState:         "set-state",
	KindBeginQuery:       "begin-query",
	KindEndQuery:         "end-query",
	KindRectangle:        "rectangle",
	KindBlit:             "blit",
}

// String returns the kind's name.
func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return "unknown"
}

// TrianglePlanes returns the number of edge planes a triangle kind tests,
// or 0 if k is not a triangle kind.
func (k Kind) TrianglePlanes() int {
	switch {
	case k >= KindTriangle1 && k <= KindTriangle8:
		return int(k-KindTriangle1) + 1
	case k == KindTriangle3Block4, k == KindTriangle3Block16:
		return 3
	case k == KindTriangle4Block16:
		return 4
	}
	return 0
}

// TriangleKind returns the whole-tile triangle kind for n planes.
func TriangleKind(n int) (Kind, bool) {
	if n < 1 || n > MaxPlanes {
		return 0, false
	}
	return KindTriangle1 + Kind(n-1), true
}

// MaxPlanes is the largest number of edge planes a triangle command carries:
// three edges plus up to four scissor/guard-band planes and one spare.
const MaxPlanes = 8

// EdgePlane is one integer edge function of a triangle.
//
// The value at framebuffer pixel (x, y) is C + DCDX*x + DCDY*y; the pixel
// is inside the edge when the value is positive. Fill-rule bias is already
// folded into C.
type EdgePlane struct {
	C, DCDX, DCDY int64
}

// Eval returns the edge value at pixel (x, y).
func (p EdgePlane) Eval(x, y int) int64 {
	return p.C + p.DCDX*int64(x) + p.DCDY*int64(y)
}

// Triangle is the shared payload of all triangle commands of one primitive.
// Each bin selects the planes it needs through Arg.PlaneMask.
type Triangle struct {
	Inputs shader.Inputs
	Planes [MaxPlanes]EdgePlane
	Count  int
}

// Rect is the payload of a rectangle command. Box is in framebuffer pixels
// with an exclusive max corner.
type Rect struct {
	Inputs shader.Inputs
	Box    image.Rectangle
}

// ClearColor is the payload of a colour clear: a value already packed in
// the plane's format.
type ClearColor struct {
	Plane int
	Value [16]byte
}

// ClearZS is the payload of a depth/stencil clear. Bits set in Mask take
// their value from Value; the rest keep the existing content.
type ClearZS struct {
	Value, Mask uint64
}

// Arg is the argument payload of one command. Which fields are meaningful
// depends on the Kind; see the Kind constants.
type Arg struct {
	Inputs     *shader.Inputs
	Triangle   *Triangle
	Rect       *Rect
	State      *shader.State
	Query      *Query
	ClearColor *ClearColor
	ClearZS    ClearZS

	// PlaneMask selects the Triangle planes a triangle command tests.
	PlaneMask uint8

	// BlockX and BlockY are the tile-relative block position of the
	// block-restricted triangle kinds.
	BlockX, BlockY int32
}
