package recording

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tilerast"
	"github.com/gogpu/tilerast/binner"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

func newFB(t *testing.T) *scene.Framebuffer {
	t.Helper()
	fb, err := scene.NewFramebuffer(150, 100, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatDepth24PlusStencil8)
	require.NoError(t, err)
	return fb
}

func texture() *shader.Texture {
	tex := &shader.Texture{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Width:  64,
		Height: 64,
		Stride: 64 * 4,
		Data:   make([]byte, 64*64*4),
	}
	for i := range tex.Data {
		tex.Data[i] = byte(i * 13)
	}
	return tex
}

// build bins a scene that uses every resource table.
func build(t *testing.T, fb *scene.Framebuffer, q *scene.Query) *scene.Scene {
	t.Helper()
	b, err := binner.New(fb, binner.WithPermitLinear(true))
	require.NoError(t, err)

	in := &shader.Inputs{}
	in.A0[0] = [4]float32{0.1, 0.3, 0.5, 1}
	in.DADX[0] = [4]float32{0.005, 0, 0.001, 0}

	require.NoError(t, b.Clear(0, [4]float32{0.5, 0.5, 0.5, 1}))
	require.NoError(t, b.ClearDepthStencil(0.25, 7, true, true))
	b.BeginQuery(q)
	b.FillRect(image.Rect(5, 5, 120, 70), shader.Interpolated(), in)
	b.Triangle([3]binner.Vertex{{X: 2, Y: 95}, {X: 70, Y: 4}, {X: 148, Y: 80}}, shader.Solid([4]float32{1, 0, 0, 1}), nil)
	b.Triangle([3]binner.Vertex{{X: 20.5, Y: 20.25}, {X: 23, Y: 21}, {X: 21, Y: 23.5}}, shader.Interpolated(), in)
	b.EndQuery(q)
	b.Blit(image.Rect(70, 40, 140, 100), texture(), image.Pt(1, 2), false)
	return b.Finish()
}

func rasterize(t *testing.T, s *scene.Scene) {
	t.Helper()
	r, err := tilerast.New(tilerast.WithThreads(2))
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.QueueScene(s))
	r.Finish()
}

func TestRoundTrip_SamePixels(t *testing.T) {
	fb := newFB(t)
	q := scene.NewQuery(scene.QueryOcclusionCounter)
	s := build(t, fb, q)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))

	c, err := Decode(&buf)
	require.NoError(t, err)
	replay, queries, err := c.Build()
	require.NoError(t, err)
	require.Len(t, queries, 1)

	assert.Equal(t, s.Commands(), replay.Commands())
	assert.True(t, replay.PermitLinear)

	rasterize(t, s)
	rasterize(t, replay)

	assert.Equal(t, fb.Color[0].Data, replay.FB.Color[0].Data)
	assert.Equal(t, fb.Depth.Data, replay.FB.Depth.Data)
	assert.NotZero(t, q.Result())
	assert.Equal(t, q.Result(), queries[0].Result())
}

func TestNewCapture_Dedupes(t *testing.T) {
	fb := newFB(t)
	b, err := binner.New(fb)
	require.NoError(t, err)

	st := shader.Solid([4]float32{0, 1, 0, 1})
	require.NoError(t, b.Clear(0, [4]float32{}))
	b.FillRect(image.Rect(0, 0, 150, 100), st, nil)

	c, err := NewCapture(b.Finish())
	require.NoError(t, err)
	assert.Len(t, c.Clears, 1)
	assert.Len(t, c.Rects, 1)
	assert.Len(t, c.States, 1)
	assert.Equal(t, "solid", c.States[0].Desc.Name)
	assert.Equal(t, NoRef, c.States[0].Texture)
	assert.Len(t, c.Bins, 6)
}

func TestNewCapture_Errors(t *testing.T) {
	_, err := NewCapture(nil)
	assert.ErrorIs(t, err, ErrNilScene)

	fb := newFB(t)
	b, err := binner.New(fb)
	require.NoError(t, err)
	st := shader.Solid([4]float32{1, 1, 1, 1})
	st.Desc.Name = "not-registered"
	b.FillRect(image.Rect(0, 0, 10, 10), st, nil)

	_, err = NewCapture(b.Finish())
	assert.ErrorIs(t, err, ErrUnregisteredState)
}

func TestBuild_Version(t *testing.T) {
	c, err := NewCapture(build(t, newFB(t), scene.NewQuery(scene.QueryOcclusionPredicate)))
	require.NoError(t, err)
	c.Version = Version + 1

	_, _, err = c.Build()
	assert.ErrorIs(t, err, ErrVersion)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	_, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestBuild_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Capture)
	}{
		{"bad ref", func(c *Capture) {
			for i, cmd := range c.Bins[0] {
				if cmd.Kind == scene.KindRectangle {
					c.Bins[0][i].Ref = 99
					return
				}
			}
		}},
		{"missing ref", func(c *Capture) { c.Bins[0][0].Ref = NoRef }},
		{"unknown kind", func(c *Capture) { c.Bins[1][0].Kind = scene.NumKinds }},
		{"bin count", func(c *Capture) { c.Bins = c.Bins[1:] }},
		{"active query", func(c *Capture) { c.Active = []Ref{5} }},
		{"texture ref", func(c *Capture) {
			for i := range c.States {
				if c.States[i].Texture.IsValid() {
					c.States[i].Texture = 42
				}
			}
		}},
		{"query kind", func(c *Capture) { c.Queries[0] = scene.NumQueryKinds }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCapture(build(t, newFB(t), scene.NewQuery(scene.QueryOcclusionCounter)))
			require.NoError(t, err)
			tt.mutate(c)

			_, _, err = c.Build()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	fb := newFB(t)
	s := build(t, fb, scene.NewQuery(scene.QueryPipelineStatistics))
	path := filepath.Join(t.TempDir(), "scene.tlr")
	require.NoError(t, Save(path, s))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Version, c.Version)
	assert.Equal(t, 150, c.Width)
	assert.Equal(t, 100, c.Height)

	replay, err := Read(bytes.NewReader(mustEncode(t, c)))
	require.NoError(t, err)
	assert.Equal(t, s.Commands(), replay.Commands())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a capture")))
	assert.Error(t, err)
}

func mustEncode(t *testing.T, c *Capture) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	return buf.Bytes()
}
