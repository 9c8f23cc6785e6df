package tilerast

import (
	"fmt"
	"image"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// rasterizeLinear runs a rect-classified bin through the states' linear
// entry points, one call per rectangle instead of one per 4x4 block.
//
// It needs a single 4-byte colour plane, no depth plane, one sample, and a
// linear entry point on every state the bin binds. If any of that does not
// hold it executes nothing and returns false.
func (t *Task) rasterizeLinear(bin *scene.Bin) bool {
	fb := t.scene.FB
	if len(fb.Color) != 1 || fb.Color[0] == nil || fb.Color[0].BytesPerPixel != 4 ||
		fb.Depth != nil || fb.Samples != 1 {
		return false
	}
	for kind, arg := range bin.All() {
		if kind == scene.KindSetState && (arg.State == nil || arg.State.Linear == nil) {
			return false
		}
	}

	full := image.Rect(t.x, t.y, t.x+t.width, t.y+t.height)
	for kind, arg := range bin.All() {
		switch kind {
		case scene.KindClearColor:
			t.clearColor(arg)
		case scene.KindClearZS:
			t.clearZS(arg)
		case scene.KindSetState:
			t.setState(arg)
		case scene.KindShadeTile, scene.KindShadeTileOpaque:
			t.shadeLinear(arg.Inputs, full)
		case scene.KindRectangle:
			if arg.Rect != nil {
				t.shadeLinear(&arg.Rect.Inputs, arg.Rect.Box.Intersect(full))
			}
		case scene.KindBlit:
			t.blitTileToDest(arg)
		default:
			panic(fmt.Sprintf("tilerast: linear path has no handler for %v", kind))
		}
		t.stats.Commands++
	}
	return true
}

// shadeLinear calls the bound state's linear entry point on r, given in
// framebuffer pixels and already clipped to the tile.
func (t *Task) shadeLinear(inputs *shader.Inputs, r image.Rectangle) {
	st := t.state
	if st == nil || st.Linear == nil || r.Empty() || t.rast.opts.perf&PerfNoShade != 0 {
		return
	}
	if inputs != nil && inputs.Disable {
		return
	}

	layer, ok := t.layer(inputs)
	if !ok {
		return
	}
	st.Linear(st, &shader.LinearInvocation{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
		Inputs: inputs,
		Dst:    t.color[0].target(r.Min.X-t.x, r.Min.Y-t.y, layer),
		Thread: t.thread,
	})
	t.psInvocations += uint64(r.Dx() * r.Dy())
}
