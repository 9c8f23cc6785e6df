// Package binner is a reference setup stage: it turns clears, rectangles,
// triangles, blits and queries into the per-tile command bins of a
// scene.Scene.
//
// A Builder bins into one scene at a time. Finish hands the scene over and
// starts the next one, carrying open queries along.
//
//	b, _ := binner.New(fb)
//	_ = b.Clear(0, [4]float32{0, 0, 0, 1})
//	b.FillRect(image.Rect(10, 10, 200, 120), shader.Solid(red), nil)
//	s := b.Finish()
package binner

import (
	"fmt"
	"image"

	"github.com/gogpu/tilerast/internal/format"
	"github.com/gogpu/tilerast/internal/parallel"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// Option configures a Builder.
type Option func(*Builder)

// WithPermitLinear lets rect-only bins of the built scenes take the
// rasterizer's linear path.
func WithPermitLinear(permit bool) Option {
	return func(b *Builder) {
		b.permitLinear = permit
	}
}

// WithPool makes the builder take its scenes from pool.
func WithPool(pool *scene.Pool) Option {
	return func(b *Builder) {
		b.pool = pool
	}
}

// Builder bins draw operations into scenes.
type Builder struct {
	fb   *scene.Framebuffer
	grid parallel.Grid

	s *scene.Scene

	// binState is the state last bound in each bin of s.
	binState []*shader.State

	// active holds queries begun and not yet ended.
	active []*scene.Query

	scissor      image.Rectangle
	permitLinear bool
	pool         *scene.Pool
}

// New creates a builder for fb.
func New(fb *scene.Framebuffer, opts ...Option) (*Builder, error) {
	b := &Builder{fb: fb}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.start(); err != nil {
		return nil, err
	}
	b.grid = b.s.Grid()
	b.scissor = image.Rect(0, 0, fb.Width, fb.Height)
	return b, nil
}

// start opens a new scene.
func (b *Builder) start() error {
	var (
		s   *scene.Scene
		err error
	)
	if b.pool != nil {
		s, err = b.pool.Get(b.fb)
	} else {
		s, err = scene.New(b.fb)
	}
	if err != nil {
		return fmt.Errorf("binner: %w", err)
	}
	s.PermitLinear = b.permitLinear
	s.ActiveQueries = append(s.ActiveQueries, b.active...)

	b.s = s
	n := s.Grid().TileCount()
	if cap(b.binState) >= n {
		b.binState = b.binState[:n]
		clear(b.binState)
	} else {
		b.binState = make([]*shader.State, n)
	}
	return nil
}

// Scene returns the scene being built.
func (b *Builder) Scene() *scene.Scene {
	return b.s
}

// Finish returns the built scene and starts a new one. Queries still open
// become active queries of the new scene.
func (b *Builder) Finish() *scene.Scene {
	s := b.s
	if err := b.start(); err != nil {
		// The framebuffer was valid for s, so it is valid now.
		panic(err)
	}
	return s
}

// SetFence attaches f to the scene being built.
func (b *Builder) SetFence(f *scene.Fence) {
	b.s.Fence = f
}

// SetScissor limits triangles to r. The scissor is clipped to the
// framebuffer.
func (b *Builder) SetScissor(r image.Rectangle) {
	b.scissor = r.Intersect(image.Rect(0, 0, b.fb.Width, b.fb.Height))
}

// Clear clears colour plane to rgba in every tile.
func (b *Builder) Clear(plane int, rgba [4]float32) error {
	if plane < 0 || plane >= len(b.fb.Color) || b.fb.Color[plane] == nil {
		return fmt.Errorf("binner: no colour plane %d", plane)
	}
	px, err := format.PackColor(b.fb.Color[plane].Format, rgba)
	if err != nil {
		return fmt.Errorf("binner: %w", err)
	}
	cc := &scene.ClearColor{Plane: plane, Value: px}
	b.s.BinEverywhere(scene.KindClearColor, scene.Arg{ClearColor: cc})
	return nil
}

// ClearDepthStencil clears the selected aspects of the depth/stencil plane.
func (b *Builder) ClearDepthStencil(depth float64, stencil uint8, clearDepth, clearStencil bool) error {
	if b.fb.Depth == nil {
		return fmt.Errorf("binner: framebuffer has no depth/stencil plane")
	}
	value, mask, err := format.PackDepthStencil(b.fb.Depth.Format, depth, stencil, clearDepth, clearStencil)
	if err != nil {
		return fmt.Errorf("binner: %w", err)
	}
	b.ClearMasked(value, mask)
	return nil
}

// ClearMasked clears the depth/stencil plane with a raw value and mask.
func (b *Builder) ClearMasked(value, mask uint64) {
	b.s.BinEverywhere(scene.KindClearZS, scene.Arg{ClearZS: scene.ClearZS{Value: value, Mask: mask}})
}

// BeginQuery starts q in every tile.
func (b *Builder) BeginQuery(q *scene.Query) {
	b.s.BinEverywhere(scene.KindBeginQuery, scene.Arg{Query: q})
	b.active = append(b.active, q)
}

// EndQuery stops q in every tile.
func (b *Builder) EndQuery(q *scene.Query) {
	b.s.BinEverywhere(scene.KindEndQuery, scene.Arg{Query: q})
	for i, a := range b.active {
		if a == q {
			b.active = append(b.active[:i], b.active[i+1:]...)
			break
		}
	}
}

// bind appends a set-state command to the bin of tile idx if st is not
// already bound there.
func (b *Builder) bind(idx int, st *shader.State) *scene.Bin {
	bin := b.s.BinAtIndex(idx)
	if b.binState[idx] != st {
		bin.Append(scene.KindSetState, scene.Arg{State: st})
		b.binState[idx] = st
	}
	return bin
}

// tileRect returns the pixel rectangle of tile (tx, ty).
func (b *Builder) tileRect(tx, ty int) image.Rectangle {
	t, _ := b.grid.TileAt(tx, ty)
	x, y, w, h := t.Bounds()
	return image.Rect(x, y, x+w, y+h)
}

// FillRect shades r with st. Tiles fully inside r get a shade-tile command,
// tiles on its border a rectangle command.
func (b *Builder) FillRect(r image.Rectangle, st *shader.State, inputs *shader.Inputs) {
	if st == nil {
		return
	}
	r = r.Intersect(image.Rect(0, 0, b.fb.Width, b.fb.Height))
	tx0, ty0, tx1, ty1, ok := b.grid.TileRange(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	if !ok {
		return
	}

	if inputs == nil {
		inputs = &shader.Inputs{}
	}
	rect := &scene.Rect{Inputs: *inputs, Box: r}

	shadeKind := scene.KindShadeTile
	if st.Desc.Opaque {
		shadeKind = scene.KindShadeTileOpaque
	}

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			bin := b.bind(b.grid.Index(tx, ty), st)
			if b.tileRect(tx, ty).In(r) {
				bin.Append(shadeKind, scene.Arg{Inputs: &rect.Inputs})
			} else {
				bin.Append(scene.KindRectangle, scene.Arg{Rect: rect})
			}
		}
	}
}

// Blit copies the texels of tex starting at src into dst. With rgb1 the
// copied alpha is forced to one.
func (b *Builder) Blit(dst image.Rectangle, tex *shader.Texture, src image.Point, rgb1 bool) {
	if tex == nil || tex.Width <= 0 || tex.Height <= 0 {
		return
	}
	kind := shader.KindBlitRGBA
	if rgb1 {
		kind = shader.KindBlitRGB1
	}
	st := shader.Blit(tex, kind)

	w, h := float32(tex.Width), float32(tex.Height)
	inputs := &shader.Inputs{Opaque: true}
	inputs.A0[1] = [4]float32{float32(src.X-dst.Min.X) / w, float32(src.Y-dst.Min.Y) / h, 0, 0}
	inputs.DADX[1] = [4]float32{1 / w, 0, 0, 0}
	inputs.DADY[1] = [4]float32{0, 1 / h, 0, 0}

	dst = dst.Intersect(image.Rect(0, 0, b.fb.Width, b.fb.Height))
	tx0, ty0, tx1, ty1, ok := b.grid.TileRange(dst.Min.X, dst.Min.Y, dst.Max.X, dst.Max.Y)
	if !ok {
		return
	}
	rect := &scene.Rect{Inputs: *inputs, Box: dst}

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			bin := b.bind(b.grid.Index(tx, ty), st)
			if b.tileRect(tx, ty).In(dst) {
				bin.Append(scene.KindBlit, scene.Arg{Inputs: &rect.Inputs})
			} else {
				bin.Append(scene.KindRectangle, scene.Arg{Rect: rect})
			}
		}
	}
}
