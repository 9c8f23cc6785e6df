package tilerast

import (
	"fmt"
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/binner"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

var benchSizes = []struct {
	name          string
	width, height int
}{
	{"256x256", 256, 256},
	{"1024x768", 1024, 768},
	{"1920x1080", 1920, 1080},
}

func benchScene(b *testing.B, w, h int, build func(*binner.Builder)) *scene.Scene {
	b.Helper()
	fb, err := scene.NewFramebuffer(w, h, 1,
		[]gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatUndefined)
	if err != nil {
		b.Fatal(err)
	}
	bb, err := binner.New(fb, binner.WithPermitLinear(true))
	if err != nil {
		b.Fatal(err)
	}
	build(bb)
	return bb.Finish()
}

func benchRender(b *testing.B, s *scene.Scene, opts ...Option) {
	b.Helper()
	r, err := New(opts...)
	if err != nil {
		b.Fatal(err)
	}
	defer r.Close()

	b.SetBytes(int64(s.FB.Width * s.FB.Height * 4))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.QueueScene(s); err != nil {
			b.Fatal(err)
		}
		r.Finish()
	}
}

// BenchmarkClear measures the clear-only scene across thread counts.
func BenchmarkClear(b *testing.B) {
	for _, size := range benchSizes {
		s := benchScene(b, size.width, size.height, func(bb *binner.Builder) {
			_ = bb.Clear(0, [4]float32{0.2, 0.3, 0.4, 1})
		})
		for _, threads := range []int{0, 4} {
			b.Run(fmt.Sprintf("%s/threads=%d", size.name, threads), func(b *testing.B) {
				benchRender(b, s, WithThreads(threads))
			})
		}
	}
}

// BenchmarkRects compares the linear path with the general triangle path
// for rectangle-only bins.
func BenchmarkRects(b *testing.B) {
	build := func(bb *binner.Builder) {
		in := &shader.Inputs{}
		in.A0[0] = [4]float32{0.1, 0.2, 0.3, 1}
		in.DADX[0] = [4]float32{0.001, 0, 0, 0}
		for i := range 64 {
			r := image.Rect(i*13, i*7, i*13+300, i*7+200)
			bb.FillRect(r, shader.Interpolated(), in)
		}
	}
	s := benchScene(b, 1024, 768, build)

	b.Run("linear", func(b *testing.B) {
		benchRender(b, s, WithThreads(4))
	})
	b.Run("tri", func(b *testing.B) {
		benchRender(b, s, WithThreads(4), WithPerf(PerfNoRastLinear))
	})
}

// BenchmarkTriangles measures many small triangles, which exercise the
// block-restricted and general triangle commands.
func BenchmarkTriangles(b *testing.B) {
	for _, size := range benchSizes {
		s := benchScene(b, size.width, size.height, func(bb *binner.Builder) {
			st := shader.Solid([4]float32{1, 0.5, 0, 1})
			for y := 0; y+24 < size.height; y += 20 {
				for x := 0; x+24 < size.width; x += 20 {
					fx, fy := float32(x)+0.5, float32(y)+0.25
					bb.Triangle([3]binner.Vertex{{X: fx, Y: fy}, {X: fx + 18, Y: fy + 2}, {X: fx + 3, Y: fy + 17}}, st, nil)
				}
			}
		})
		b.Run(size.name, func(b *testing.B) {
			benchRender(b, s, WithThreads(4))
		})
	}
}

// BenchmarkBlit measures the direct copy path.
func BenchmarkBlit(b *testing.B) {
	tex := testTexture(1024, 1024)
	s := benchScene(b, 1024, 768, func(bb *binner.Builder) {
		bb.Blit(image.Rect(0, 0, 1024, 768), tex, image.Pt(0, 0), false)
	})
	benchRender(b, s, WithThreads(4))
}
