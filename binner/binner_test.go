package binner

import (
	"image"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

func newFB(t *testing.T, w, h int, depth gputypes.TextureFormat) *scene.Framebuffer {
	t.Helper()
	fb, err := scene.NewFramebuffer(w, h, 1, []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, depth)
	require.NoError(t, err)
	return fb
}

func kinds(bin *scene.Bin) []scene.Kind {
	return slices.Collect(bin.Kinds())
}

func TestNew_InvalidFramebuffer(t *testing.T) {
	_, err := New(&scene.Framebuffer{})
	assert.ErrorIs(t, err, scene.ErrInvalidFramebuffer)
}

func TestClear(t *testing.T) {
	fb := newFB(t, 130, 65, gputypes.TextureFormatUndefined)
	b, err := New(fb)
	require.NoError(t, err)

	require.NoError(t, b.Clear(0, [4]float32{1, 0, 0, 1}))
	assert.Error(t, b.Clear(1, [4]float32{}))

	s := b.Scene()
	assert.Equal(t, 6, s.Commands())
	for i := range s.Grid().TileCount() {
		k, arg := s.BinAtIndex(i).At(0)
		assert.Equal(t, scene.KindClearColor, k)
		assert.Equal(t, []byte{0xFF, 0, 0, 0xFF}, arg.ClearColor.Value[:4])
	}
}

func TestClearDepthStencil(t *testing.T) {
	b, err := New(newFB(t, 64, 64, gputypes.TextureFormatUndefined))
	require.NoError(t, err)
	assert.Error(t, b.ClearDepthStencil(1, 0, true, true))

	b, err = New(newFB(t, 64, 64, gputypes.TextureFormatDepth24PlusStencil8))
	require.NoError(t, err)
	require.NoError(t, b.ClearDepthStencil(1, 0x12, false, true))

	k, arg := b.Scene().Bin(0, 0).At(0)
	assert.Equal(t, scene.KindClearZS, k)
	assert.Equal(t, uint64(0xFF000000), arg.ClearZS.Mask)
	assert.Equal(t, uint64(0x12000000), arg.ClearZS.Value)
}

func TestFillRect(t *testing.T) {
	b, err := New(newFB(t, 130, 65, gputypes.TextureFormatUndefined))
	require.NoError(t, err)

	st := shader.Interpolated()
	b.FillRect(image.Rect(0, 0, 64, 64), st, nil)
	b.FillRect(image.Rect(10, 10, 100, 50), st, nil)

	s := b.Scene()
	assert.Equal(t,
		[]scene.Kind{scene.KindSetState, scene.KindShadeTile, scene.KindRectangle},
		kinds(s.Bin(0, 0)), "state is bound once per bin")
	assert.Equal(t, []scene.Kind{scene.KindSetState, scene.KindRectangle}, kinds(s.Bin(1, 0)))
	assert.True(t, s.Bin(2, 0).Empty())
	assert.True(t, s.Bin(0, 1).Empty())

	_, arg := s.Bin(1, 0).At(1)
	assert.Equal(t, image.Rect(10, 10, 100, 50), arg.Rect.Box)
}

func TestFillRect_OpaqueAndClipped(t *testing.T) {
	b, err := New(newFB(t, 100, 100, gputypes.TextureFormatUndefined))
	require.NoError(t, err)

	b.FillRect(image.Rect(-50, -50, 500, 500), shader.Solid([4]float32{0, 1, 0, 1}), nil)
	b.FillRect(image.Rect(200, 200, 300, 300), shader.Solid([4]float32{0, 1, 0, 1}), nil)
	b.FillRect(image.Rect(0, 0, 10, 10), nil, nil)

	s := b.Scene()
	for _, bin := range []*scene.Bin{s.Bin(0, 0), s.Bin(1, 0), s.Bin(0, 1), s.Bin(1, 1)} {
		assert.Equal(t, []scene.Kind{scene.KindSetState, scene.KindShadeTileOpaque}, kinds(bin))
	}
}

func TestBlit(t *testing.T) {
	b, err := New(newFB(t, 128, 64, gputypes.TextureFormatUndefined))
	require.NoError(t, err)

	tex := &shader.Texture{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Width:  256, Height: 128, Stride: 1024,
		Data: make([]byte, 1024*128),
	}
	b.Blit(image.Rect(0, 0, 100, 64), tex, image.Pt(8, 4), false)

	s := b.Scene()
	assert.Equal(t, []scene.Kind{scene.KindSetState, scene.KindBlit}, kinds(s.Bin(0, 0)))
	assert.Equal(t, []scene.Kind{scene.KindSetState, scene.KindRectangle}, kinds(s.Bin(1, 0)))

	k, arg := s.Bin(0, 0).At(0)
	require.Equal(t, scene.KindSetState, k)
	assert.Equal(t, shader.KindBlitRGBA, arg.State.Kind)
	assert.Same(t, tex, arg.State.Texture)

	_, arg = s.Bin(0, 0).At(1)
	assert.InDelta(t, 8.0/256, arg.Inputs.A0[1][0], 1e-7)
	assert.InDelta(t, 4.0/128, arg.Inputs.A0[1][1], 1e-7)
	assert.InDelta(t, 1.0/256, arg.Inputs.DADX[1][0], 1e-9)
	assert.InDelta(t, 1.0/128, arg.Inputs.DADY[1][1], 1e-9)

	b.Blit(image.Rect(0, 0, 10, 10), nil, image.Point{}, true)
	assert.Equal(t, 4, s.Commands())
}

func TestQueries_CarryOver(t *testing.T) {
	b, err := New(newFB(t, 64, 64, gputypes.TextureFormatUndefined))
	require.NoError(t, err)

	occ := scene.NewQuery(scene.QueryOcclusionCounter)
	stats := scene.NewQuery(scene.QueryPipelineStatistics)
	b.BeginQuery(occ)
	b.BeginQuery(stats)
	b.EndQuery(stats)

	first := b.Finish()
	assert.Equal(t,
		[]scene.Kind{scene.KindBeginQuery, scene.KindBeginQuery, scene.KindEndQuery},
		kinds(first.Bin(0, 0)))
	assert.Empty(t, first.ActiveQueries)

	second := b.Scene()
	assert.NotSame(t, first, second)
	assert.Equal(t, []*scene.Query{occ}, second.ActiveQueries)
}

func TestOptions(t *testing.T) {
	pool := scene.NewPool()
	fb := newFB(t, 64, 64, gputypes.TextureFormatUndefined)
	b, err := New(fb, WithPool(pool), WithPermitLinear(true))
	require.NoError(t, err)

	s := b.Finish()
	assert.True(t, s.Pooled())
	assert.True(t, s.PermitLinear)
	assert.True(t, b.Scene().PermitLinear)
}

func TestSetFence(t *testing.T) {
	b, err := New(newFB(t, 64, 64, gputypes.TextureFormatUndefined))
	require.NoError(t, err)
	f := scene.NewFence()
	b.SetFence(f)
	assert.Same(t, f, b.Finish().Fence)
	assert.Nil(t, b.Scene().Fence)
}
