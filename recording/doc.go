// Package recording captures binned scenes to a compact file and replays
// them.
//
// A capture holds everything needed to rasterize a scene again: the
// framebuffer layout and its current pixels, every command of every bin,
// and the resources the commands point at. Fragment states are stored by
// their shader.Desc and rebuilt through the shader registry, so only
// registered routines can be captured.
//
// # File Format
//
// A capture is a single msgpack document compressed with zstd. Resources
// (states, textures, queries, triangles, rectangles, inputs, colour clears)
// are stored once in per-type tables and referenced from commands by index,
// so a triangle binned into many tiles is written once.
//
// # Usage
//
//	f, _ := os.Create("frame.tilerast")
//	if err := recording.Write(f, s); err != nil {
//	    return err
//	}
//
//	c, err := recording.Load("frame.tilerast")
//	if err != nil {
//	    return err
//	}
//	s, queries, err := c.Build()
//
// Queries are recreated empty on replay and returned by Build in the
// order of Capture.Queries. Fences are not recorded.
package recording
