package tilerast

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/gogpu/tilerast/internal/parallel"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// tilePlane is a destination plane plus the byte offset of the current
// tile's top-left pixel (sample 0, layer 0).
type tilePlane struct {
	plane  *scene.Plane
	origin int
}

// target returns a shader view at tile-relative pixel (x, y) of layer.
func (tp *tilePlane) target(x, y, layer int) shader.Target {
	p := tp.plane
	if p == nil {
		return shader.Target{}
	}
	off := tp.origin + y*p.Stride + x*p.BytesPerPixel + layer*p.LayerStride
	return shader.Target{
		Data:          p.Data[off:],
		Stride:        p.Stride,
		SampleStride:  p.SampleStride,
		Samples:       p.Samples,
		BytesPerPixel: p.BytesPerPixel,
		Format:        p.Format,
	}
}

// Task is the per-thread rasterization state. Each Task is only ever used
// by its own thread.
type Task struct {
	index int
	rast  *Rasterizer

	scene *scene.Scene

	// Current tile: framebuffer origin and clipped size.
	x, y          int
	width, height int

	color  [scene.MaxColorPlanes]tilePlane
	ncolor int
	depth  tilePlane

	// state is the fragment state bound by the last set-state command.
	state *shader.State

	thread *shader.ThreadData

	// psInvocations counts fragment shader invocations (covered pixels).
	psInvocations uint64

	// queries holds the query of each kind this task has open.
	queries [scene.NumQueryKinds]*scene.Query

	// Reused invocation blocks.
	inv     shader.Invocation
	targets [scene.MaxColorPlanes]shader.Target

	stats Stats
}

func newTask(r *Rasterizer, index int, td *shader.ThreadData) *Task {
	return &Task{index: index, rast: r, thread: td}
}

// rasterizeScene claims tiles of s until none are left, rasterizing the
// non-empty ones, then folds the task's counters into the rasterizer.
func (t *Task) rasterizeScene(s *scene.Scene) {
	t.scene = s
	for {
		bin, tile, ok := s.NextBin()
		if !ok {
			break
		}
		if c := t.rast.claimed; c != nil && !c.Add(tile.X, tile.Y) {
			panic(fmt.Sprintf("tilerast: tile (%d,%d) claimed twice", tile.X, tile.Y))
		}
		if bin.Empty() {
			t.stats.EmptyBins++
			continue
		}
		t.rasterizeBin(bin, tile)
	}
	t.scene = nil

	t.rast.stats.add(&t.stats)
	t.stats = Stats{}
}

// rasterizeBin runs one bin against its tile.
func (t *Task) rasterizeBin(bin *scene.Bin, tile parallel.Tile) {
	t.tileBegin(tile)
	if t.rast.opts.debug&DebugNoRast == 0 {
		t.dispatch(bin)
	}
	t.tileEnd()
	t.stats.Tiles++
}

// tileBegin sets up the tile bounds and destination offsets and begins
// every query the scene started with.
func (t *Task) tileBegin(tile parallel.Tile) {
	fb := t.scene.FB
	t.x, t.y = tile.Origin()
	t.width, t.height = tile.Width, tile.Height

	t.ncolor = len(fb.Color)
	for i, p := range fb.Color {
		t.color[i] = tilePlane{}
		if p != nil {
			t.color[i] = tilePlane{plane: p, origin: p.Offset(t.x, t.y, 0, 0)}
		}
	}
	if fb.Depth != nil {
		t.depth = tilePlane{plane: fb.Depth, origin: fb.Depth.Offset(t.x, t.y, 0, 0)}
	}

	t.state = nil
	for _, q := range t.scene.ActiveQueries {
		t.beginQuery(q)
	}
}

// tileEnd ends the task's open queries and drops the tile's destination
// offsets.
func (t *Task) tileEnd() {
	for _, q := range t.queries {
		if q != nil {
			t.endQuery(q)
		}
	}

	if t.rast.opts.debug&DebugShowTiles != 0 {
		t.outlineTile()
	}

	clear(t.color[:])
	t.ncolor = 0
	t.depth = tilePlane{}
	t.state = nil
}

// queryValue returns the counter a query of kind k samples.
func (t *Task) queryValue(k scene.QueryKind) uint64 {
	switch k {
	case scene.QueryOcclusionCounter, scene.QueryOcclusionPredicate:
		return t.thread.VisCounter
	case scene.QueryPipelineStatistics:
		return t.psInvocations
	}
	return uint64(time.Now().UnixNano())
}

func (t *Task) beginQuery(q *scene.Query) {
	q.Begin(t.index, t.queryValue(q.Kind))
	t.queries[q.Kind] = q
}

func (t *Task) endQuery(q *scene.Query) {
	q.End(t.index, t.queryValue(q.Kind))
	if t.queries[q.Kind] == q {
		t.queries[q.Kind] = nil
	}
}

// invoke calls the bound state's entry point for strategy on the 4x4 block
// at tile-relative (x, y). mask must already be clipped to the tile.
// Blocks addressed to a layer the framebuffer does not have are dropped.
func (t *Task) invoke(strategy shader.Strategy, inputs *shader.Inputs, x, y int, mask uint64) {
	st := t.state
	if st == nil || st.Funcs[strategy] == nil || t.rast.opts.perf&PerfNoShade != 0 {
		return
	}
	layer, ok := t.layer(inputs)
	if !ok {
		return
	}

	for i := range t.ncolor {
		t.targets[i] = t.color[i].target(x, y, layer)
	}

	inv := &t.inv
	*inv = shader.Invocation{
		X:       t.x + x,
		Y:       t.y + y,
		Inputs:  inputs,
		Color:   t.targets[:t.ncolor],
		Depth:   t.depth.target(x, y, layer),
		Samples: t.scene.FB.Samples,
		Mask:    mask,
		Thread:  t.thread,
	}

	t.psInvocations += uint64(bits.OnesCount16(coveredPixels(mask)))
	st.Funcs[strategy](st, inv)
}

// layer returns the framebuffer layer inputs render to, reporting false
// if the framebuffer has no such layer.
func (t *Task) layer(inputs *shader.Inputs) (int, bool) {
	if inputs == nil {
		return 0, true
	}
	l := inputs.Layer
	return l, l >= 0 && l < max(t.scene.FB.Layers, 1)
}

// coveredPixels folds a per-sample block mask into a 16-bit pixel mask.
func coveredPixels(mask uint64) uint16 {
	return uint16(mask) | uint16(mask>>16) | uint16(mask>>32) | uint16(mask>>48)
}
