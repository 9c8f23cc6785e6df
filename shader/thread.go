package shader

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/gogpu/tilerast/internal/format"
)

// ScratchSize is the size of the per-thread scratch block.
const ScratchSize = 16 * 1024

// DefaultFormatCacheSize is the number of packed colours a ThreadData keeps.
const DefaultFormatCacheSize = 64

type packKey struct {
	format gputypes.TextureFormat
	rgba   [4]float32
}

type packed struct {
	px [format.MaxBytesPerPixel]byte
	ok bool
}

// ThreadData is the per-rasterizer-thread block handed to every fragment
// call. It is owned by exactly one thread and never locked.
type ThreadData struct {
	// Index is the owning thread's index.
	Index int

	// VisCounter accumulates the number of samples written. Occlusion
	// queries read it at tile begin and end.
	VisCounter uint64

	// Scratch is free for fragment routines to use during one call.
	Scratch []byte

	formats *simplelru.LRU[packKey, packed]
}

// NewThreadData allocates the scratch block and format cache for thread
// index. cacheSize must be positive.
func NewThreadData(index, cacheSize int) (*ThreadData, error) {
	cache, err := simplelru.NewLRU[packKey, packed](cacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("shader: format cache: %w", err)
	}
	return &ThreadData{
		Index:   index,
		Scratch: make([]byte, ScratchSize),
		formats: cache,
	}, nil
}

// PackColor returns rgba encoded for format f, caching the result.
// ok is false if f is not a colour format.
func (td *ThreadData) PackColor(f gputypes.TextureFormat, rgba [4]float32) (px [format.MaxBytesPerPixel]byte, ok bool) {
	key := packKey{format: f, rgba: rgba}
	if td.formats != nil {
		if p, hit := td.formats.Get(key); hit {
			return p.px, p.ok
		}
	}

	px, err := format.PackColor(f, rgba)
	p := packed{px: px, ok: err == nil}
	if td.formats != nil {
		td.formats.Add(key, p)
	}
	return p.px, p.ok
}

// CachedFormats returns the number of entries in the format cache.
func (td *ThreadData) CachedFormats() int {
	if td.formats == nil {
		return 0
	}
	return td.formats.Len()
}

// Reset clears the counters and the format cache.
func (td *ThreadData) Reset() {
	td.VisCounter = 0
	if td.formats != nil {
		td.formats.Purge()
	}
}
