package recording

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/tilerast/scene"
)

// Encode writes c as zstd-compressed msgpack.
func (c *Capture) Encode(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("recording: create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(c); err != nil {
		return fmt.Errorf("recording: encode capture: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("recording: close zstd writer: %w", err)
	}
	return nil
}

// Decode reads a capture written by Encode.
func Decode(r io.Reader) (*Capture, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("recording: create zstd reader: %w", err)
	}
	defer zr.Close()

	var c Capture
	if err := msgpack.NewDecoder(zr).Decode(&c); err != nil {
		return nil, fmt.Errorf("recording: decode capture: %w", err)
	}
	if c.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, c.Version)
	}
	return &c, nil
}

// Write captures s and encodes it to w.
func Write(w io.Writer, s *scene.Scene) error {
	c, err := NewCapture(s)
	if err != nil {
		return err
	}
	return c.Encode(w)
}

// Read decodes a capture from r and rebuilds its scene. Queries recorded
// in the scene are recreated empty; use Decode and Capture.Build to reach
// them.
func Read(r io.Reader) (*scene.Scene, error) {
	c, err := Decode(r)
	if err != nil {
		return nil, err
	}
	s, _, err := c.Build()
	return s, err
}

// Save writes s to the file at path.
func Save(path string, s *scene.Scene) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, s)
}

// Load reads a capture file written by Save.
func Load(path string) (*Capture, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
