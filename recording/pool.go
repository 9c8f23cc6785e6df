package recording

import (
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// refTable stores resources in insertion order and hands out one Ref per
// distinct pointer.
type refTable[T any] struct {
	items []*T
	index map[*T]Ref
}

// add returns the reference of p, adding it on first sight. A nil p
// yields NoRef.
func (t *refTable[T]) add(p *T) Ref {
	if p == nil {
		return NoRef
	}
	if r, ok := t.index[p]; ok {
		return r
	}
	if t.index == nil {
		t.index = make(map[*T]Ref)
	}
	// #nosec G115 -- table size is bounded by the command count
	r := Ref(len(t.items))
	t.items = append(t.items, p)
	t.index[p] = r
	return r
}

// get returns the resource for r, or nil if r is out of range.
func get[T any](items []*T, r Ref) *T {
	if r < 0 || int(r) >= len(items) {
		return nil
	}
	return items[r]
}

// resourcePool collects the resources a scene's commands point at while
// the scene is captured.
//
// resourcePool is not safe for concurrent use.
type resourcePool struct {
	clears    refTable[scene.ClearColor]
	inputs    refTable[shader.Inputs]
	triangles refTable[scene.Triangle]
	rects     refTable[scene.Rect]
	states    refTable[shader.State]
	textures  refTable[shader.Texture]
	queries   refTable[scene.Query]
}

// ref adds the resource arg carries for a command of kind k.
func (p *resourcePool) ref(k scene.Kind, arg *scene.Arg) Ref {
	switch tableOf(k) {
	case tableClears:
		return p.clears.add(arg.ClearColor)
	case tableInputs:
		return p.inputs.add(arg.Inputs)
	case tableTriangles:
		return p.triangles.add(arg.Triangle)
	case tableRects:
		return p.rects.add(arg.Rect)
	case tableStates:
		return p.states.add(arg.State)
	case tableQueries:
		return p.queries.add(arg.Query)
	}
	return NoRef
}
