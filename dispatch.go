package tilerast

import (
	"fmt"

	"github.com/gogpu/tilerast/scene"
)

// Flag is a per-command capability: which dispatch paths can execute a
// command kind.
type Flag uint8

const (
	// FlagTri marks kinds the generic triangle table handles.
	FlagTri Flag = 1 << iota

	// FlagRect marks kinds the linear path handles.
	FlagRect

	// FlagBlit marks kinds the blit table handles.
	FlagBlit

	// FlagAll is every capability.
	FlagAll = FlagTri | FlagRect | FlagBlit
)

// kindFlags is indexed by scene.Kind.
var kindFlags = [scene.NumKinds]Flag{
	scene.KindClearColor:       FlagAll,
	scene.KindClearZS:          FlagTri | FlagRect,
	scene.KindShadeTile:        FlagTri | FlagRect,
	scene.KindShadeTileOpaque:  FlagTri | FlagRect,
	scene.KindTriangle1:        FlagTri,
	scene.KindTriangle2:        FlagTri,
	scene.KindTriangle3:        FlagTri,
	scene.KindTriangle4:        FlagTri,
	scene.KindTriangle5:        FlagTri,
	scene.KindTriangle6:        FlagTri,
	scene.KindTriangle7:        FlagTri,
	scene.KindTriangle8:        FlagTri,
	scene.KindTriangle3Block4:  FlagTri,
	scene.KindTriangle3Block16: FlagTri,
	scene.KindTriangle4Block16: FlagTri,
	scene.KindSetState:         FlagAll,
	scene.KindBeginQuery:       FlagTri,
	scene.KindEndQuery:         FlagTri,
	scene.KindRectangle:        FlagTri | FlagRect,
	scene.KindBlit:             FlagAll,
}

// Class is the fast-path classification of a bin.
type Class uint8

const (
	// ClassTri needs the generic triangle table.
	ClassTri Class = iota

	// ClassRect can take the linear path.
	ClassRect

	// ClassBlit can take the blit table.
	ClassBlit
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassTri:
		return "tri"
	case ClassRect:
		return "rect"
	case ClassBlit:
		return "blit"
	}
	return "unknown"
}

// CharacterizeFlags returns the AND of the capability flags of every
// command in bin. An empty bin has every flag.
func CharacterizeFlags(bin *scene.Bin) Flag {
	flags := FlagAll
	for k := range bin.Kinds() {
		flags &= kindFlags[k]
	}
	return flags
}

// Characterize classifies bin for dispatch. Blit wins over rect.
func Characterize(bin *scene.Bin) Class {
	flags := CharacterizeFlags(bin)
	switch {
	case flags&FlagBlit != 0:
		return ClassBlit
	case flags&FlagRect != 0:
		return ClassRect
	}
	return ClassTri
}

// handler executes one command on the task's current tile.
type handler func(t *Task, arg *scene.Arg)

// dispatchTable maps every command kind to its handler. A nil entry is a
// kind the table must never see.
type dispatchTable struct {
	name     string
	handlers [scene.NumKinds]handler
}

// triTable handles every command with its regular handler.
var triTable = dispatchTable{
	name: "tri",
	handlers: [scene.NumKinds]handler{
		scene.KindClearColor:       (*Task).clearColor,
		scene.KindClearZS:          (*Task).clearZS,
		scene.KindShadeTile:        (*Task).shadeTile,
		scene.KindShadeTileOpaque:  (*Task).shadeTileOpaque,
		scene.KindTriangle1:        triangleHandler(1),
		scene.KindTriangle2:        triangleHandler(2),
		scene.KindTriangle3:        triangleHandler(3),
		scene.KindTriangle4:        triangleHandler(4),
		scene.KindTriangle5:        triangleHandler(5),
		scene.KindTriangle6:        triangleHandler(6),
		scene.KindTriangle7:        triangleHandler(7),
		scene.KindTriangle8:        triangleHandler(8),
		scene.KindTriangle3Block4:  triangleBlockHandler(3, 4),
		scene.KindTriangle3Block16: triangleBlockHandler(3, 16),
		scene.KindTriangle4Block16: triangleBlockHandler(4, 16),
		scene.KindSetState:         (*Task).setState,
		scene.KindBeginQuery:       (*Task).beginQueryCmd,
		scene.KindEndQuery:         (*Task).endQueryCmd,
		scene.KindRectangle:        (*Task).rectangle,
		scene.KindBlit:             (*Task).blitTileToDest,
	},
}

// debugTable uses the most general handler for every command.
var debugTable = dispatchTable{
	name: "debug",
	handlers: [scene.NumKinds]handler{
		scene.KindClearColor:       (*Task).clearColor,
		scene.KindClearZS:          (*Task).clearZS,
		scene.KindShadeTile:        (*Task).shadeTile,
		scene.KindShadeTileOpaque:  (*Task).shadeTile,
		scene.KindTriangle1:        triangleHandler(1),
		scene.KindTriangle2:        triangleHandler(2),
		scene.KindTriangle3:        triangleHandler(3),
		scene.KindTriangle4:        triangleHandler(4),
		scene.KindTriangle5:        triangleHandler(5),
		scene.KindTriangle6:        triangleHandler(6),
		scene.KindTriangle7:        triangleHandler(7),
		scene.KindTriangle8:        triangleHandler(8),
		scene.KindTriangle3Block4:  triangleBlockHandler(3, 4),
		scene.KindTriangle3Block16: triangleBlockHandler(3, 16),
		scene.KindTriangle4Block16: triangleBlockHandler(4, 16),
		scene.KindSetState:         (*Task).setState,
		scene.KindBeginQuery:       (*Task).beginQueryCmd,
		scene.KindEndQuery:         (*Task).endQueryCmd,
		scene.KindRectangle:        (*Task).rectangle,
		scene.KindBlit:             (*Task).blitShade,
	},
}

// blitTable only handles the kinds a blit-classified bin can hold.
var blitTable = dispatchTable{
	name: "blit",
	handlers: [scene.NumKinds]handler{
		scene.KindClearColor: (*Task).clearColor,
		scene.KindSetState:   (*Task).setState,
		scene.KindBlit:       (*Task).blitTileToDest,
	},
}

// dispatch picks the path for bin and executes it.
func (t *Task) dispatch(bin *scene.Bin) {
	opts := &t.rast.opts

	if opts.debug&DebugNoFastpath != 0 {
		t.stats.DebugBins++
		t.execute(bin, &debugTable)
		return
	}

	switch Characterize(bin) {
	case ClassBlit:
		t.stats.BlitBins++
		t.execute(bin, &blitTable)
		return
	case ClassRect:
		if t.scene.PermitLinear && opts.perf&PerfNoRastLinear == 0 {
			if t.rasterizeLinear(bin) {
				t.stats.LinearBins++
				return
			}
			t.stats.LinearFallbacks++
		}
	}

	t.stats.TriBins++
	t.execute(bin, &triTable)
}

// execute runs every command of bin through table, in bin order.
func (t *Task) execute(bin *scene.Bin, table *dispatchTable) {
	for kind, arg := range bin.All() {
		h := table.handlers[kind]
		if h == nil {
			panic(fmt.Sprintf("tilerast: %s table has no handler for %v", table.name, kind))
		}
		h(t, arg)
		t.stats.Commands++
	}
}
