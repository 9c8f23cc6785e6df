package tilerast

import (
	"fmt"
	"strings"
)

// DebugFlags change what the rasterizer does, for debugging.
type DebugFlags uint32

const (
	// DebugNoFastpath routes every bin through the most general handlers.
	DebugNoFastpath DebugFlags = 1 << iota

	// DebugNoRast claims tiles but executes no commands.
	DebugNoRast

	// DebugShowTiles outlines every rasterized tile in colour plane 0.
	DebugShowTiles

	// DebugCheckTiles panics when a scene tile is claimed twice or left
	// unclaimed.
	DebugCheckTiles
)

// PerfFlags disable parts of the pipeline to measure their cost.
type PerfFlags uint32

const (
	// PerfNoRastLinear never takes the linear path.
	PerfNoRastLinear PerfFlags = 1 << iota

	// PerfNoShade skips every fragment routine call.
	PerfNoShade
)

var debugNames = []struct {
	name string
	flag DebugFlags
}{
	{"nofastpath", DebugNoFastpath},
	{"norast", DebugNoRast},
	{"tiles", DebugShowTiles},
	{"checktiles", DebugCheckTiles},
}

var perfNames = []struct {
	name string
	flag PerfFlags
}{
	{"no_rast_linear", PerfNoRastLinear},
	{"no_shade", PerfNoShade},
}

// ParseDebugFlags parses a comma-separated list such as "nofastpath,tiles".
func ParseDebugFlags(s string) (DebugFlags, error) {
	var flags DebugFlags
	for _, word := range splitFlags(s) {
		found := false
		for _, n := range debugNames {
			if n.name == word {
				flags |= n.flag
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("tilerast: unknown debug flag %q", word)
		}
	}
	return flags, nil
}

// ParsePerfFlags parses a comma-separated list such as "no_rast_linear".
func ParsePerfFlags(s string) (PerfFlags, error) {
	var flags PerfFlags
	for _, word := range splitFlags(s) {
		found := false
		for _, n := range perfNames {
			if n.name == word {
				flags |= n.flag
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("tilerast: unknown perf flag %q", word)
		}
	}
	return flags, nil
}

func splitFlags(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// String returns the flags as a comma-separated list.
func (f DebugFlags) String() string {
	var words []string
	for _, n := range debugNames {
		if f&n.flag != 0 {
			words = append(words, n.name)
		}
	}
	return strings.Join(words, ",")
}

// String returns the flags as a comma-separated list.
func (f PerfFlags) String() string {
	var words []string
	for _, n := range perfNames {
		if f&n.flag != 0 {
			words = append(words, n.name)
		}
	}
	return strings.Join(words, ",")
}
