package recording

import (
	"github.com/gogpu/tilerast/scene"
)

// Ref indexes one of a Capture's resource tables.
type Ref int32

// NoRef marks a command without a resource.
const NoRef Ref = -1

// IsValid reports whether r refers to a table entry.
func (r Ref) IsValid() bool {
	return r >= 0
}

// Command is one recorded bin command. Ref points into the table that
// Kind uses:
//
//	ClearColor                        Clears
//	ShadeTile, ShadeTileOpaque, Blit  Inputs
//	Triangle kinds                    Triangles
//	Rectangle                         Rects
//	SetState                          States
//	BeginQuery, EndQuery              Queries
//
// ClearZS stores its payload inline in Value and Mask.
type Command struct {
	Kind      scene.Kind `msgpack:"k"`
	Ref       Ref        `msgpack:"r"`
	Value     uint64     `msgpack:"v,omitempty"`
	Mask      uint64     `msgpack:"m,omitempty"`
	PlaneMask uint8      `msgpack:"p,omitempty"`
	BlockX    int32      `msgpack:"bx,omitempty"`
	BlockY    int32      `msgpack:"by,omitempty"`
}

// table identifies a resource table.
type table uint8

const (
	tableNone table = iota
	tableClears
	tableInputs
	tableTriangles
	tableRects
	tableStates
	tableQueries
)

var tableNames = [...]string{
	tableNone:      "none",
	tableClears:    "clears",
	tableInputs:    "inputs",
	tableTriangles: "triangles",
	tableRects:     "rects",
	tableStates:    "states",
	tableQueries:   "queries",
}

func (t table) String() string {
	if int(t) < len(tableNames) {
		return tableNames[t]
	}
	return "unknown"
}

// tableOf returns the resource table commands of kind k refer to.
func tableOf(k scene.Kind) table {
	switch {
	case k == scene.KindClearColor:
		return tableClears
	case k == scene.KindShadeTile, k == scene.KindShadeTileOpaque, k == scene.KindBlit:
		return tableInputs
	case k.TrianglePlanes() > 0:
		return tableTriangles
	case k == scene.KindRectangle:
		return tableRects
	case k == scene.KindSetState:
		return tableStates
	case k == scene.KindBeginQuery, k == scene.KindEndQuery:
		return tableQueries
	}
	return tableNone
}
