package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tilerast/internal/format"
	"github.com/gogpu/tilerast/shader"
)

// MaxColorPlanes is the largest number of colour planes a framebuffer binds.
const MaxColorPlanes = 8

// ErrInvalidFramebuffer is returned when a framebuffer description is
// inconsistent.
var ErrInvalidFramebuffer = errors.New("scene: invalid framebuffer")

// Plane is one flat, row-major destination buffer.
//
// The byte of pixel (x, y), sample s, layer l is at
//
//	y*Stride + x*BytesPerPixel + s*SampleStride + l*LayerStride
type Plane struct {
	Format        gputypes.TextureFormat
	BytesPerPixel int
	Width, Height int
	Samples       int
	Layers        int

	Stride       int
	SampleStride int
	LayerStride  int

	Data []byte
}

// NewPlane allocates a zeroed plane. Samples of one layer are stored as
// consecutive images, and layers follow each other.
func NewPlane(f gputypes.TextureFormat, width, height, samples, layers int) (*Plane, error) {
	bpp := format.BytesPerPixel(f)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupportedFormat, format.Name(f))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: plane size %dx%d", ErrInvalidFramebuffer, width, height)
	}
	samples = max(samples, 1)
	layers = max(layers, 1)
	if samples > shader.MaxSamples {
		return nil, fmt.Errorf("%w: %d samples (max %d)", ErrInvalidFramebuffer, samples, shader.MaxSamples)
	}

	stride := width * bpp
	sampleStride := stride * height
	layerStride := sampleStride * samples
	return &Plane{
		Format:        f,
		BytesPerPixel: bpp,
		Width:         width,
		Height:        height,
		Samples:       samples,
		Layers:        layers,
		Stride:        stride,
		SampleStride:  sampleStride,
		LayerStride:   layerStride,
		Data:          make([]byte, layerStride*layers),
	}, nil
}

// Offset returns the byte offset of pixel (x, y) of the given sample and layer.
func (p *Plane) Offset(x, y, sample, layer int) int {
	return y*p.Stride + x*p.BytesPerPixel + sample*p.SampleStride + layer*p.LayerStride
}

// Pixel returns the bytes of one pixel.
func (p *Plane) Pixel(x, y, sample, layer int) []byte {
	off := p.Offset(x, y, sample, layer)
	return p.Data[off : off+p.BytesPerPixel]
}

// Target returns a shader view of the plane positioned at (x, y) of layer.
func (p *Plane) Target(x, y, layer int) shader.Target {
	if p == nil {
		return shader.Target{}
	}
	return shader.Target{
		Data:          p.Data[p.Offset(x, y, 0, layer):],
		Stride:        p.Stride,
		SampleStride:  p.SampleStride,
		Samples:       p.Samples,
		BytesPerPixel: p.BytesPerPixel,
		Format:        p.Format,
	}
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	c := *p
	c.Data = append([]byte(nil), p.Data...)
	return &c
}

// validate checks that the plane's strides address width x height pixels
// inside Data.
func (p *Plane) validate(width, height int) error {
	if p.BytesPerPixel != format.BytesPerPixel(p.Format) || p.BytesPerPixel == 0 {
		return fmt.Errorf("%w: plane format %s with %d bytes per pixel",
			ErrInvalidFramebuffer, format.Name(p.Format), p.BytesPerPixel)
	}
	if p.Width < width || p.Height < height {
		return fmt.Errorf("%w: plane %dx%d smaller than framebuffer %dx%d",
			ErrInvalidFramebuffer, p.Width, p.Height, width, height)
	}
	last := p.Offset(width-1, height-1, max(p.Samples, 1)-1, max(p.Layers, 1)-1) + p.BytesPerPixel
	if last > len(p.Data) {
		return fmt.Errorf("%w: plane data is %d bytes, need %d", ErrInvalidFramebuffer, len(p.Data), last)
	}
	return nil
}

// Framebuffer describes the planes a scene renders into.
type Framebuffer struct {
	Width, Height int
	Samples       int
	Layers        int

	Color []*Plane
	Depth *Plane
}

// NewFramebuffer allocates planes for the given formats. depth may be
// gputypes.TextureFormatUndefined for no depth/stencil plane.
func NewFramebuffer(width, height, samples int, color []gputypes.TextureFormat, depth gputypes.TextureFormat) (*Framebuffer, error) {
	fb := &Framebuffer{Width: width, Height: height, Samples: max(samples, 1), Layers: 1}
	for _, f := range color {
		p, err := NewPlane(f, width, height, fb.Samples, 1)
		if err != nil {
			return nil, err
		}
		fb.Color = append(fb.Color, p)
	}
	if depth != gputypes.TextureFormatUndefined {
		p, err := NewPlane(depth, width, height, fb.Samples, 1)
		if err != nil {
			return nil, err
		}
		fb.Depth = p
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	return fb, nil
}

// Validate checks the framebuffer for consistency.
func (fb *Framebuffer) Validate() error {
	if fb.Width <= 0 || fb.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFramebuffer, fb.Width, fb.Height)
	}
	if len(fb.Color) > MaxColorPlanes {
		return fmt.Errorf("%w: %d colour planes (max %d)", ErrInvalidFramebuffer, len(fb.Color), MaxColorPlanes)
	}
	if fb.Samples < 1 || fb.Samples > shader.MaxSamples {
		return fmt.Errorf("%w: %d samples", ErrInvalidFramebuffer, fb.Samples)
	}
	for i, p := range fb.Color {
		if p == nil {
			continue
		}
		if d, _ := format.Lookup(p.Format); !d.IsColor() {
			return fmt.Errorf("%w: colour plane %d has format %s", ErrInvalidFramebuffer, i, format.Name(p.Format))
		}
		if err := fb.checkPlane(p); err != nil {
			return fmt.Errorf("colour plane %d: %w", i, err)
		}
	}
	if fb.Depth != nil {
		if d, _ := format.Lookup(fb.Depth.Format); d.IsColor() {
			return fmt.Errorf("%w: depth plane has colour format %s", ErrInvalidFramebuffer, format.Name(fb.Depth.Format))
		}
		if err := fb.checkPlane(fb.Depth); err != nil {
			return fmt.Errorf("depth plane: %w", err)
		}
	}
	return nil
}

func (fb *Framebuffer) checkPlane(p *Plane) error {
	if p.Samples != fb.Samples {
		return fmt.Errorf("%w: plane has %d samples, framebuffer %d", ErrInvalidFramebuffer, p.Samples, fb.Samples)
	}
	if p.Layers < fb.Layers {
		return fmt.Errorf("%w: plane has %d layers, framebuffer %d", ErrInvalidFramebuffer, p.Layers, fb.Layers)
	}
	return p.validate(fb.Width, fb.Height)
}

// Clone returns a deep copy of the framebuffer and its planes.
func (fb *Framebuffer) Clone() *Framebuffer {
	c := *fb
	c.Color = make([]*Plane, len(fb.Color))
	for i, p := range fb.Color {
		if p != nil {
			c.Color[i] = p.Clone()
		}
	}
	if fb.Depth != nil {
		c.Depth = fb.Depth.Clone()
	}
	return &c
}
