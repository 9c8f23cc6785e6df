package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goforj/godump"
	xdraw "golang.org/x/image/draw"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/tilerast/internal/format"
	"github.com/gogpu/tilerast/recording"
	"github.com/gogpu/tilerast/scene"
	"github.com/gogpu/tilerast/shader"
)

// newLogger returns a JSON logger writing to a rotating file, or a
// discarding logger when path is empty.
func newLogger(path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("invalid log level %q", level)
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 512
	}
	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	return l, func() { _ = w.Close() }, nil
}

// toImage converts sample 0 of layer 0 of p to an NRGBA image.
func toImage(p *scene.Plane) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := range p.Height {
		for x := range p.Width {
			c := format.UnpackColor(p.Format, p.Pixel(x, y, 0, 0))
			o := img.PixOffset(x, y)
			for i, v := range c {
				img.Pix[o+i] = uint8(min(max(v, 0), 1)*255 + 0.5)
			}
		}
	}
	return img
}

// writePNG writes colour plane 0 of fb to path, scaled by scale.
func writePNG(path string, fb *scene.Framebuffer, scale float64) (err error) {
	if len(fb.Color) == 0 {
		return errors.New("framebuffer has no colour plane to write")
	}
	var img image.Image = toImage(fb.Color[0])
	if scale != 1 {
		b := img.Bounds()
		w := max(1, int(float64(b.Dx())*scale+0.5))
		h := max(1, int(float64(b.Dy())*scale+0.5))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	out, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(out, img)
}

// sceneSummary is what -dump prints.
type sceneSummary struct {
	Width     int
	Height    int
	Samples   int
	Color     []string
	Depth     string
	Tiles     int
	Commands  int
	Kinds     map[string]int
	States    []shader.Desc
	Resources map[string]int
}

func dumpScene(w io.Writer, s *scene.Scene) error {
	c, err := recording.NewCapture(s)
	if err != nil {
		return err
	}
	sum := sceneSummary{
		Width:    c.Width,
		Height:   c.Height,
		Samples:  c.Samples,
		Tiles:    len(c.Bins),
		Commands: s.Commands(),
		Kinds:    make(map[string]int),
		Resources: map[string]int{
			"triangles": len(c.Triangles),
			"rects":     len(c.Rects),
			"inputs":    len(c.Inputs),
			"textures":  len(c.Textures),
			"queries":   len(c.Queries),
		},
	}
	for _, p := range c.Color {
		sum.Color = append(sum.Color, format.Name(p.Format))
	}
	if c.Depth != nil {
		sum.Depth = format.Name(c.Depth.Format)
	}
	for _, bin := range c.Bins {
		for _, cmd := range bin {
			sum.Kinds[cmd.Kind.String()]++
		}
	}
	for _, st := range c.States {
		sum.States = append(sum.States, st.Desc)
	}
	godump.Fdump(w, sum)
	return nil
}
