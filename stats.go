package tilerast

import "sync/atomic"

// Stats is a snapshot of rasterizer activity since creation.
type Stats struct {
	// Scenes is the number of scenes retired.
	Scenes uint64

	// Tiles is the number of non-empty bins rasterized.
	Tiles uint64

	// EmptyBins is the number of tiles skipped because their bin was empty.
	EmptyBins uint64

	// Commands is the number of commands executed.
	Commands uint64

	// Bins taken per dispatch path.
	TriBins    uint64
	BlitBins   uint64
	LinearBins uint64
	DebugBins  uint64

	// LinearFallbacks counts rect bins that were eligible for the linear
	// path but had to use the triangle table.
	LinearFallbacks uint64

	// BlitFallbacks counts blit commands that could not copy directly.
	BlitFallbacks uint64
}

// counters is the shared, atomically updated form of Stats.
type counters struct {
	scenes, tiles, emptyBins, commands       atomic.Uint64
	triBins, blitBins, linearBins, debugBins atomic.Uint64
	linearFallbacks, blitFallbacks           atomic.Uint64
}

// add folds a task's local counts into c.
func (c *counters) add(s *Stats) {
	c.tiles.Add(s.Tiles)
	c.emptyBins.Add(s.EmptyBins)
	c.commands.Add(s.Commands)
	c.triBins.Add(s.TriBins)
	c.blitBins.Add(s.BlitBins)
	c.linearBins.Add(s.LinearBins)
	c.debugBins.Add(s.DebugBins)
	c.linearFallbacks.Add(s.LinearFallbacks)
	c.blitFallbacks.Add(s.BlitFallbacks)
}

// Stats returns a snapshot of the rasterizer's counters.
func (r *Rasterizer) Stats() Stats {
	c := &r.stats
	return Stats{
		Scenes:          c.scenes.Load(),
		Tiles:           c.tiles.Load(),
		EmptyBins:       c.emptyBins.Load(),
		Commands:        c.commands.Load(),
		TriBins:         c.triBins.Load(),
		BlitBins:        c.blitBins.Load(),
		LinearBins:      c.linearBins.Load(),
		DebugBins:       c.debugBins.Load(),
		LinearFallbacks: c.linearFallbacks.Load(),
		BlitFallbacks:   c.blitFallbacks.Load(),
	}
}
