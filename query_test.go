package tilerast

import (
	"image"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

func TestQueries_Counters(t *testing.T) {
	for _, threads := range []int{0, 4} {
		r := newRasterizer(t, WithThreads(threads))
		fb := newFB(t, 128, 128, gputypes.TextureFormatUndefined)
		b := newBuilder(t, fb)

		occ := scene.NewQuery(scene.QueryOcclusionCounter)
		pred := scene.NewQuery(scene.QueryOcclusionPredicate)
		stats := scene.NewQuery(scene.QueryPipelineStatistics)
		miss := scene.NewQuery(scene.QueryOcclusionPredicate)

		b.BeginQuery(miss)
		b.EndQuery(miss)
		b.BeginQuery(occ)
		b.BeginQuery(pred)
		b.BeginQuery(stats)
		// 10x10 pixels across all four tiles.
		b.FillRect(image.Rect(59, 59, 69, 69), shader.Solid(red), nil)
		b.EndQuery(stats)
		b.EndQuery(pred)
		b.EndQuery(occ)
		render(t, r, b.Finish())

		if got := occ.Result(); got != 100 {
			t.Errorf("threads=%d: occlusion counter = %d, want 100", threads, got)
		}
		if got := pred.Result(); got != 1 {
			t.Errorf("threads=%d: predicate = %d, want 1", threads, got)
		}
		if got := stats.Result(); got != 100 {
			t.Errorf("threads=%d: pipeline statistics = %d, want 100", threads, got)
		}
		if got := miss.Result(); got != 0 {
			t.Errorf("threads=%d: empty predicate = %d, want 0", threads, got)
		}
	}
}

func TestQueries_SpanScenes(t *testing.T) {
	r := newRasterizer(t, WithThreads(3))
	fb := newFB(t, 200, 100, gputypes.TextureFormatUndefined)
	b := newBuilder(t, fb)

	occ := scene.NewQuery(scene.QueryOcclusionCounter)
	b.BeginQuery(occ)
	b.FillRect(image.Rect(0, 0, 10, 10), shader.Solid(red), nil)
	render(t, r, b.Finish())

	// The second scene starts with occ active in every tile.
	b.FillRect(image.Rect(100, 50, 150, 51), shader.Solid(blue), nil)
	b.EndQuery(occ)
	render(t, r, b.Finish())

	if got := occ.Result(); got != 150 {
		t.Errorf("occlusion counter = %d, want 150", got)
	}

	// Work after the end is not counted.
	b.FillRect(image.Rect(0, 0, 200, 100), shader.Solid(green), nil)
	render(t, r, b.Finish())
	if got := occ.Result(); got != 150 {
		t.Errorf("occlusion counter after end = %d, want 150", got)
	}
}

func TestQueries_Clock(t *testing.T) {
	r := newRasterizer(t, WithThreads(2))
	fb := newFB(t, 128, 64, gputypes.TextureFormatUndefined)
	b := newBuilder(t, fb)

	before := uint64(time.Now().UnixNano())
	ts := scene.NewQuery(scene.QueryTimestamp)
	elapsed := scene.NewQuery(scene.QueryTimeElapsed)
	b.BeginQuery(elapsed)
	b.FillRect(image.Rect(0, 0, 128, 64), shader.Solid(red), nil)
	b.EndQuery(elapsed)
	b.EndQuery(ts)
	render(t, r, b.Finish())
	after := uint64(time.Now().UnixNano())

	if got := ts.Result(); got < before || got > after {
		t.Errorf("timestamp %d outside [%d, %d]", got, before, after)
	}
	if got := elapsed.Result(); got > after-before {
		t.Errorf("elapsed %d longer than the whole render (%d)", got, after-before)
	}
}
