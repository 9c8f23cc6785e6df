package recording

import (
	"errors"
	"fmt"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// Version is the capture format version written by this package.
const Version = 1

var (
	// ErrVersion is returned when a capture has an unsupported version.
	ErrVersion = errors.New("recording: unsupported capture version")

	// ErrCorrupt is returned when a capture refers to resources it does
	// not contain or holds an unknown command.
	ErrCorrupt = errors.New("recording: corrupt capture")

	// ErrUnregisteredState is returned when a scene binds a state whose
	// routine is not in the shader registry.
	ErrUnregisteredState = errors.New("recording: state routine not registered")

	// ErrNilScene is returned when asked to capture a nil scene.
	ErrNilScene = errors.New("recording: nil scene")
)

// StateRecord describes a fragment state by registry name and texture.
type StateRecord struct {
	Desc    shader.Desc `msgpack:"desc"`
	Texture Ref         `msgpack:"texture"`
}

// Capture is the decoded form of a recorded scene.
type Capture struct {
	Version int `msgpack:"version"`

	Width   int            `msgpack:"width"`
	Height  int            `msgpack:"height"`
	Samples int            `msgpack:"samples"`
	Layers  int            `msgpack:"layers"`
	Color   []*scene.Plane `msgpack:"color"`
	Depth   *scene.Plane   `msgpack:"depth,omitempty"`

	PermitLinear bool `msgpack:"permit_linear,omitempty"`

	Clears    []*scene.ClearColor `msgpack:"clears,omitempty"`
	Inputs    []*shader.Inputs    `msgpack:"inputs,omitempty"`
	Triangles []*scene.Triangle   `msgpack:"triangles,omitempty"`
	Rects     []*scene.Rect       `msgpack:"rects,omitempty"`
	States    []StateRecord       `msgpack:"states,omitempty"`
	Textures  []*shader.Texture   `msgpack:"textures,omitempty"`
	Queries   []scene.QueryKind   `msgpack:"queries,omitempty"`

	// Active lists the queries open when the scene begins.
	Active []Ref `msgpack:"active,omitempty"`

	// Bins holds the commands of every tile in row-major tile order.
	Bins [][]Command `msgpack:"bins"`
}

// NewCapture records s. The capture shares plane and resource memory with
// s until it is encoded.
func NewCapture(s *scene.Scene) (*Capture, error) {
	if s == nil || s.FB == nil {
		return nil, ErrNilScene
	}
	fb := s.FB
	c := &Capture{
		Version:      Version,
		Width:        fb.Width,
		Height:       fb.Height,
		Samples:      fb.Samples,
		Layers:       fb.Layers,
		Color:        fb.Color,
		Depth:        fb.Depth,
		PermitLinear: s.PermitLinear,
	}

	var pool resourcePool
	for _, q := range s.ActiveQueries {
		c.Active = append(c.Active, pool.queries.add(q))
	}

	c.Bins = make([][]Command, s.Grid().TileCount())
	for i := range c.Bins {
		bin := s.BinAtIndex(i)
		if bin.Empty() {
			continue
		}
		cmds := make([]Command, 0, bin.Len())
		for kind, arg := range bin.All() {
			cmd := Command{Kind: kind, Ref: pool.ref(kind, arg)}
			switch {
			case kind == scene.KindClearZS:
				cmd.Value, cmd.Mask = arg.ClearZS.Value, arg.ClearZS.Mask
			case kind.TrianglePlanes() > 0:
				cmd.PlaneMask = arg.PlaneMask
				cmd.BlockX, cmd.BlockY = arg.BlockX, arg.BlockY
			}
			cmds = append(cmds, cmd)
		}
		c.Bins[i] = cmds
	}

	for _, st := range pool.states.items {
		if !shader.Registered(st.Desc.Name) {
			return nil, fmt.Errorf("%w: %q", ErrUnregisteredState, st.Desc.Name)
		}
		c.States = append(c.States, StateRecord{Desc: st.Desc, Texture: pool.textures.add(st.Texture)})
	}
	c.Clears = pool.clears.items
	c.Inputs = pool.inputs.items
	c.Triangles = pool.triangles.items
	c.Rects = pool.rects.items
	c.Textures = pool.textures.items
	for _, q := range pool.queries.items {
		c.Queries = append(c.Queries, q.Kind)
	}
	return c, nil
}

// Build turns the capture back into a scene. The returned queries are
// indexed like c.Queries and start empty.
func (c *Capture) Build() (*scene.Scene, []*scene.Query, error) {
	if c.Version != Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrVersion, c.Version)
	}

	fb := &scene.Framebuffer{
		Width:   c.Width,
		Height:  c.Height,
		Samples: c.Samples,
		Layers:  c.Layers,
		Color:   c.Color,
		Depth:   c.Depth,
	}
	s, err := scene.New(fb)
	if err != nil {
		return nil, nil, fmt.Errorf("recording: %w", err)
	}
	s.PermitLinear = c.PermitLinear

	states := make([]*shader.State, len(c.States))
	for i, rec := range c.States {
		var tex *shader.Texture
		if rec.Texture.IsValid() {
			if tex = get(c.Textures, rec.Texture); tex == nil {
				return nil, nil, fmt.Errorf("%w: state %d texture %d", ErrCorrupt, i, rec.Texture)
			}
		}
		if states[i], err = shader.New(rec.Desc, tex); err != nil {
			return nil, nil, fmt.Errorf("recording: state %d: %w", i, err)
		}
	}

	queries := make([]*scene.Query, len(c.Queries))
	for i, kind := range c.Queries {
		if kind >= scene.NumQueryKinds {
			return nil, nil, fmt.Errorf("%w: query kind %d", ErrCorrupt, kind)
		}
		queries[i] = scene.NewQuery(kind)
	}
	for _, r := range c.Active {
		q := get(queries, r)
		if q == nil {
			return nil, nil, fmt.Errorf("%w: active query %d", ErrCorrupt, r)
		}
		s.ActiveQueries = append(s.ActiveQueries, q)
	}

	if len(c.Bins) != s.Grid().TileCount() {
		return nil, nil, fmt.Errorf("%w: %d bins for %d tiles", ErrCorrupt, len(c.Bins), s.Grid().TileCount())
	}
	for i, cmds := range c.Bins {
		bin := s.BinAtIndex(i)
		for j, cmd := range cmds {
			arg, err := c.arg(cmd, states, queries)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: bin %d command %d: %w", ErrCorrupt, i, j, err)
			}
			bin.Append(cmd.Kind, arg)
		}
	}
	return s, queries, nil
}

// arg resolves the references of cmd.
func (c *Capture) arg(cmd Command, states []*shader.State, queries []*scene.Query) (scene.Arg, error) {
	if cmd.Kind >= scene.NumKinds {
		return scene.Arg{}, fmt.Errorf("unknown kind %d", cmd.Kind)
	}

	var (
		arg scene.Arg
		ok  bool
	)
	switch tableOf(cmd.Kind) {
	case tableClears:
		arg.ClearColor = get(c.Clears, cmd.Ref)
		ok = arg.ClearColor != nil
	case tableInputs:
		arg.Inputs = get(c.Inputs, cmd.Ref)
		ok = arg.Inputs != nil || cmd.Ref == NoRef
	case tableTriangles:
		arg.Triangle = get(c.Triangles, cmd.Ref)
		arg.PlaneMask = cmd.PlaneMask
		arg.BlockX, arg.BlockY = cmd.BlockX, cmd.BlockY
		ok = arg.Triangle != nil
	case tableRects:
		arg.Rect = get(c.Rects, cmd.Ref)
		ok = arg.Rect != nil
	case tableStates:
		// A nil state unbinds; keep it.
		arg.State = get(states, cmd.Ref)
		ok = arg.State != nil || cmd.Ref == NoRef
	case tableQueries:
		arg.Query = get(queries, cmd.Ref)
		ok = arg.Query != nil
	default:
		arg.ClearZS = scene.ClearZS{Value: cmd.Value, Mask: cmd.Mask}
		ok = true
	}
	if !ok {
		return scene.Arg{}, fmt.Errorf("%v has bad %v reference %d", cmd.Kind, tableOf(cmd.Kind), cmd.Ref)
	}
	return arg, nil
}
