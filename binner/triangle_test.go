package binner

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

func insideAll(planes []scene.EdgePlane, x, y int) bool {
	for _, e := range planes {
		if e.Eval(x, y) <= 0 {
			return false
		}
	}
	return true
}

func TestSetupTriangle_Degenerate(t *testing.T) {
	_, ok := setupTriangle([3]Vertex{{0, 0}, {5, 5}, {10, 10}})
	assert.False(t, ok)
}

func TestSetupTriangle_WindingIndependent(t *testing.T) {
	cw, ok := setupTriangle([3]Vertex{{0, 0}, {10, 0}, {0, 10}})
	require.True(t, ok)
	ccw, ok := setupTriangle([3]Vertex{{0, 0}, {0, 10}, {10, 0}})
	require.True(t, ok)

	for y := range 12 {
		for x := range 12 {
			assert.Equal(t, insideAll(cw[:], x, y), insideAll(ccw[:], x, y), "pixel (%d,%d)", x, y)
		}
	}
	assert.True(t, insideAll(cw[:], 1, 1))
	assert.False(t, insideAll(cw[:], 9, 9))
}

func TestSetupTriangle_SharedEdgeCoveredOnce(t *testing.T) {
	a, ok := setupTriangle([3]Vertex{{0, 0}, {8, 0}, {0, 8}})
	require.True(t, ok)
	b, ok := setupTriangle([3]Vertex{{8, 0}, {8, 8}, {0, 8}})
	require.True(t, ok)

	for y := range 8 {
		for x := range 8 {
			n := 0
			if insideAll(a[:], x, y) {
				n++
			}
			if insideAll(b[:], x, y) {
				n++
			}
			assert.Equal(t, 1, n, "pixel (%d,%d) covered %d times", x, y, n)
		}
	}
}

func TestScissorPlanes(t *testing.T) {
	sc := image.Rect(10, 20, 30, 40)
	planes := scissorPlanes(image.Rect(0, 0, 50, 50), sc)
	require.Len(t, planes, 4)

	for y := range 50 {
		for x := range 50 {
			in := image.Pt(x, y).In(sc)
			assert.Equal(t, in, insideAll(planes, x, y), "pixel (%d,%d)", x, y)
		}
	}

	assert.Empty(t, scissorPlanes(image.Rect(12, 22, 20, 30), sc))
}

func TestTriangle_Binning(t *testing.T) {
	fb, err := scene.NewFramebuffer(130, 65, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatUndefined)
	require.NoError(t, err)

	tests := []struct {
		name   string
		v      [3]Vertex
		tx, ty int
		want   scene.Kind
		block  [2]int32
	}{
		{"covers everything", [3]Vertex{{-10, -10}, {1000, -10}, {-10, 1000}}, 2, 1, scene.KindShadeTile, [2]int32{}},
		{"inside one 4x4 block", [3]Vertex{{5, 9}, {7, 9}, {5, 11}}, 0, 0, scene.KindTriangle3Block4, [2]int32{4, 8}},
		{"inside one 16x16 block", [3]Vertex{{66, 2}, {76, 2}, {66, 12}}, 1, 0, scene.KindTriangle3Block16, [2]int32{0, 0}},
		{"spans blocks", [3]Vertex{{2, 2}, {60, 2}, {2, 60}}, 0, 0, scene.KindTriangle3, [2]int32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(fb)
			require.NoError(t, err)
			b.Triangle(tt.v, shader.Interpolated(), nil)

			bin := b.Scene().Bin(tt.tx, tt.ty)
			require.Equal(t, 2, bin.Len())
			k, arg := bin.At(1)
			assert.Equal(t, tt.want, k)
			assert.Equal(t, tt.block, [2]int32{arg.BlockX, arg.BlockY})
		})
	}
}

func TestTriangle_PlaneMask(t *testing.T) {
	fb, err := scene.NewFramebuffer(128, 64, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatUndefined)
	require.NoError(t, err)
	b, err := New(fb)
	require.NoError(t, err)

	// Only the hypotenuse crosses the first tile.
	b.Triangle([3]Vertex{{-10, -10}, {160, -10}, {-10, 160}}, shader.Interpolated(), nil)

	k, _ := b.Scene().Bin(0, 0).At(1)
	assert.Equal(t, scene.KindShadeTile, k)

	k, arg := b.Scene().Bin(1, 0).At(1)
	assert.Equal(t, scene.KindTriangle1, k)
	assert.Equal(t, uint8(1<<1), arg.PlaneMask)
}

func TestTriangle_Scissor(t *testing.T) {
	fb, err := scene.NewFramebuffer(128, 128, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatUndefined)
	require.NoError(t, err)
	b, err := New(fb)
	require.NoError(t, err)

	b.SetScissor(image.Rect(10, 10, 50, 50))
	b.Triangle([3]Vertex{{-100, -100}, {400, -100}, {-100, 400}}, shader.Interpolated(), nil)

	s := b.Scene()
	k, arg := s.Bin(0, 0).At(1)
	assert.Equal(t, scene.KindTriangle4, k)
	assert.Equal(t, 7, arg.Triangle.Count)
	assert.Equal(t, uint8(0b1111000), arg.PlaneMask)
	assert.True(t, s.Bin(1, 0).Empty())
	assert.True(t, s.Bin(1, 1).Empty())
}

func TestTriangle_Skipped(t *testing.T) {
	fb, err := scene.NewFramebuffer(64, 64, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatUndefined)
	require.NoError(t, err)
	b, err := New(fb)
	require.NoError(t, err)

	b.Triangle([3]Vertex{{0, 0}, {5, 5}, {10, 10}}, shader.Interpolated(), nil)
	b.Triangle([3]Vertex{{100, 100}, {120, 100}, {100, 120}}, shader.Interpolated(), nil)
	b.Triangle([3]Vertex{{0, 0}, {10, 0}, {0, 10}}, nil, nil)
	assert.True(t, b.Scene().Empty())
}
