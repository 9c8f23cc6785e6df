package config

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/binner"
	"github.com/gogpu/tilerast/internal/format"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// Scene describes a frame to bin: the framebuffer layout followed by
// draws, which are binned in the order clear, rects, triangles, blits.
type Scene struct {
	Width   int      `toml:"width" yaml:"width"`
	Height  int      `toml:"height" yaml:"height"`
	Samples int      `toml:"samples" yaml:"samples"`
	Color   []string `toml:"color" yaml:"color"`
	Depth   string   `toml:"depth" yaml:"depth"`

	// PermitLinear lets rect-only tiles take the linear path.
	PermitLinear bool `toml:"permit_linear" yaml:"permit_linear"`

	// Clear, if set, clears colour plane 0 before anything is drawn.
	Clear *[4]float32 `toml:"clear" yaml:"clear"`

	// ClearDepth and ClearStencil clear the depth/stencil plane.
	ClearDepth   *float64 `toml:"clear_depth" yaml:"clear_depth"`
	ClearStencil *uint8   `toml:"clear_stencil" yaml:"clear_stencil"`

	Rects     []Rect     `toml:"rects" yaml:"rects"`
	Triangles []Triangle `toml:"triangles" yaml:"triangles"`
	Blits     []Blit     `toml:"blits" yaml:"blits"`
}

// Rect is a filled rectangle. Box is [x0, y0, x1, y1] with exclusive max.
// With Gradient set the colour varies by DX and DY per pixel.
type Rect struct {
	Box      [4]int     `toml:"box" yaml:"box"`
	Color    [4]float32 `toml:"color" yaml:"color"`
	Gradient bool       `toml:"gradient" yaml:"gradient"`
	DX       [4]float32 `toml:"dx" yaml:"dx"`
	DY       [4]float32 `toml:"dy" yaml:"dy"`
}

// Triangle is a solid or gradient triangle in pixel coordinates.
type Triangle struct {
	Vertices [3][2]float32 `toml:"vertices" yaml:"vertices"`
	Color    [4]float32    `toml:"color" yaml:"color"`
	Gradient bool          `toml:"gradient" yaml:"gradient"`
	DX       [4]float32    `toml:"dx" yaml:"dx"`
	DY       [4]float32    `toml:"dy" yaml:"dy"`
	Scissor  *[4]int       `toml:"scissor" yaml:"scissor"`
}

// Blit copies a generated checkerboard into Dst.
type Blit struct {
	Dst  [4]int `toml:"dst" yaml:"dst"`
	Src  [2]int `toml:"src" yaml:"src"`
	RGB1 bool   `toml:"rgb1" yaml:"rgb1"`

	// Size and Cell give the texture size and checker cell size in texels.
	Size int        `toml:"size" yaml:"size"`
	Cell int        `toml:"cell" yaml:"cell"`
	A    [4]float32 `toml:"a" yaml:"a"`
	B    [4]float32 `toml:"b" yaml:"b"`
}

// DefaultScene returns a small frame that touches every dispatch path.
func DefaultScene() Scene {
	bg := [4]float32{0.1, 0.1, 0.12, 1}
	return Scene{
		Width:        256,
		Height:       192,
		Samples:      1,
		Color:        []string{"rgba8unorm"},
		PermitLinear: true,
		Clear:        &bg,
		Rects: []Rect{
			{Box: [4]int{16, 16, 200, 120}, Color: [4]float32{0.1, 0.3, 0.8, 1},
				Gradient: true, DX: [4]float32{0.003, 0, 0, 0}, DY: [4]float32{0, 0.004, 0, 0}},
			{Box: [4]int{100, 90, 240, 180}, Color: [4]float32{0.9, 0.6, 0.1, 1}},
		},
		Triangles: []Triangle{
			{Vertices: [3][2]float32{{8, 184}, {128, 8}, {248, 150}}, Color: [4]float32{0.8, 0.1, 0.2, 1}},
		},
		Blits: []Blit{
			{Dst: [4]int{160, 8, 248, 72}, Size: 64, Cell: 8,
				A: [4]float32{1, 1, 1, 1}, B: [4]float32{0, 0, 0, 1}},
		},
	}
}

func formatByName(name string) (gputypes.TextureFormat, error) {
	f, ok := format.ByName(name)
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: format %q", ErrInvalid, name)
	}
	return f, nil
}

// Framebuffer allocates the framebuffer the scene renders into.
func (s *Scene) Framebuffer() (*scene.Framebuffer, error) {
	color := make([]gputypes.TextureFormat, 0, len(s.Color))
	for _, name := range s.Color {
		f, err := formatByName(name)
		if err != nil {
			return nil, err
		}
		color = append(color, f)
	}
	depth := gputypes.TextureFormatUndefined
	if s.Depth != "" {
		f, err := formatByName(s.Depth)
		if err != nil {
			return nil, err
		}
		depth = f
	}
	fb, err := scene.NewFramebuffer(s.Width, s.Height, s.Samples, color, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return fb, nil
}

func box(b [4]int) image.Rectangle {
	return image.Rect(b[0], b[1], b[2], b[3])
}

func inputs(color, dx, dy [4]float32) *shader.Inputs {
	in := &shader.Inputs{}
	in.A0[0] = color
	in.DADX[0] = dx
	in.DADY[0] = dy
	return in
}

// Bin records the scene's draws into b.
func (s *Scene) Bin(b *binner.Builder) error {
	if s.Clear != nil {
		if err := b.Clear(0, *s.Clear); err != nil {
			return err
		}
	}
	if s.ClearDepth != nil || s.ClearStencil != nil {
		var (
			depth   float64
			stencil uint8
		)
		if s.ClearDepth != nil {
			depth = *s.ClearDepth
		}
		if s.ClearStencil != nil {
			stencil = *s.ClearStencil
		}
		if err := b.ClearDepthStencil(depth, stencil, s.ClearDepth != nil, s.ClearStencil != nil); err != nil {
			return err
		}
	}

	for _, r := range s.Rects {
		if r.Gradient {
			b.FillRect(box(r.Box), shader.Interpolated(), inputs(r.Color, r.DX, r.DY))
		} else {
			b.FillRect(box(r.Box), shader.Solid(r.Color), nil)
		}
	}

	full := image.Rect(0, 0, s.Width, s.Height)
	for _, t := range s.Triangles {
		sc := full
		if t.Scissor != nil {
			sc = box(*t.Scissor)
		}
		b.SetScissor(sc)

		var v [3]binner.Vertex
		for i, p := range t.Vertices {
			v[i] = binner.Vertex{X: p[0], Y: p[1]}
		}
		if t.Gradient {
			b.Triangle(v, shader.Interpolated(), inputs(t.Color, t.DX, t.DY))
		} else {
			b.Triangle(v, shader.Solid(t.Color), nil)
		}
	}
	b.SetScissor(full)

	for _, bl := range s.Blits {
		tex, err := bl.texture()
		if err != nil {
			return err
		}
		b.Blit(box(bl.Dst), tex, image.Pt(bl.Src[0], bl.Src[1]), bl.RGB1)
	}
	return nil
}

// Build allocates the framebuffer and bins the scene into it.
func (s *Scene) Build(opts ...binner.Option) (*scene.Scene, error) {
	fb, err := s.Framebuffer()
	if err != nil {
		return nil, err
	}
	opts = append([]binner.Option{binner.WithPermitLinear(s.PermitLinear)}, opts...)
	b, err := binner.New(fb, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Bin(b); err != nil {
		return nil, err
	}
	return b.Finish(), nil
}

// texture generates the blit's checkerboard in rgba8unorm.
func (bl *Blit) texture() (*shader.Texture, error) {
	size, cell := bl.Size, bl.Cell
	if size <= 0 {
		return nil, fmt.Errorf("%w: blit texture size %d", ErrInvalid, size)
	}
	if cell <= 0 {
		cell = size
	}
	f := gputypes.TextureFormatRGBA8Unorm
	a, err := format.PackColor(f, bl.A)
	if err != nil {
		return nil, err
	}
	c, err := format.PackColor(f, bl.B)
	if err != nil {
		return nil, err
	}

	tex := &shader.Texture{Format: f, Width: size, Height: size, Stride: size * 4, Data: make([]byte, size*size*4)}
	for y := range size {
		for x := range size {
			px := a
			if (x/cell+y/cell)%2 == 1 {
				px = c
			}
			copy(tex.Data[y*tex.Stride+x*4:], px[:4])
		}
	}
	return tex, nil
}
