package thumbs

import (
	"image"
	"sync"
	"sync/atomic"

	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxEntries is the thumbnail cache entry ceiling.
	DefaultMaxEntries = 200
	// DefaultMaxBytes is the thumbnail cache byte budget.
	DefaultMaxBytes = 100 << 20 // 100 MB
	// DefaultThumbnailDimension is the longest-side target for
	// thumbnail decodes, in pixels.
	DefaultThumbnailDimension = 300
)

// Loader decodes thumbnails and full-resolution images through a
// Decoder. Thumbnails go through a bounded LRU cache keyed by path;
// full decodes are never cached. Concurrent requests are independent:
// two simultaneous misses for the same path may both decode and both
// populate the cache, which is harmless.
type Loader struct {
	decoder  Decoder
	maxDim   int
	maxBytes int64

	cache      *lru.Cache[string, image.Image]
	cacheBytes atomic.Int64

	// addMu serializes insertions so the byte accounting stays exact
	// when racing misses insert the same path.
	addMu sync.Mutex
}

// LoaderOptions configures a Loader. Zero fields fall back to the
// defaults above.
type LoaderOptions struct {
	MaxEntries   int
	MaxBytes     int64
	MaxDimension int
}

// NewLoader builds a Loader over decoder. Construct one at startup and
// hand it to whoever needs it; there is no process-wide instance.
func NewLoader(decoder Decoder, opts LoaderOptions) *Loader {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultThumbnailDimension
	}

	l := &Loader{
		decoder:  decoder,
		maxDim:   opts.MaxDimension,
		maxBytes: opts.MaxBytes,
	}

	cache, err := lru.NewWithEvict(opts.MaxEntries, func(key string, value image.Image) {
		l.cacheBytes.Add(-imageBytes(value))
		metrics.ThumbnailCacheBytes.Set(float64(l.cacheBytes.Load()))
	})
	if err != nil {
		// Only reachable with a non-positive size, which the guard
		// above rules out.
		panic(err)
	}
	l.cache = cache

	return l
}

// Thumbnail returns a downscaled bitmap for path, decoding on cache
// miss. The second return is false when the decode fails; callers show
// a placeholder. Never returns an error.
func (l *Loader) Thumbnail(path string) (image.Image, bool) {
	if img, ok := l.cache.Get(path); ok {
		metrics.ThumbnailCacheHits.Inc()
		return img, true
	}
	metrics.ThumbnailCacheMisses.Inc()

	img, err := l.decoder.Decode(path, DecodeOptions{
		Thumbnail:    true,
		MaxDimension: l.maxDim,
	})
	if err != nil {
		logging.Debug("Thumbnail decode failed for %s: %v", path, err)
		return nil, false
	}

	l.addMu.Lock()
	// Add on an existing key replaces the value without firing the
	// eviction callback, so when a racing miss got here first its
	// entry's bytes must be released by hand.
	if prev, ok := l.cache.Peek(path); ok {
		l.cacheBytes.Add(-imageBytes(prev))
	}
	l.cache.Add(path, img)
	l.cacheBytes.Add(imageBytes(img))
	l.enforceByteBudget()
	l.addMu.Unlock()
	metrics.ThumbnailCacheBytes.Set(float64(l.cacheBytes.Load()))

	return img, true
}

// FullImage returns a native-resolution bitmap for path, or false when
// the decode fails. Every call re-decodes; full images are not cached.
func (l *Loader) FullImage(path string) (image.Image, bool) {
	img, err := l.decoder.Decode(path, DecodeOptions{})
	if err != nil {
		logging.Debug("Full decode failed for %s: %v", path, err)
		return nil, false
	}
	return img, true
}

// ClearCache empties the thumbnail cache unconditionally.
func (l *Loader) ClearCache() {
	l.cache.Purge()
}

// CacheLen returns the number of cached thumbnails.
func (l *Loader) CacheLen() int {
	return l.cache.Len()
}

// CacheBytes returns the approximate bytes held by cached thumbnails.
func (l *Loader) CacheBytes() int64 {
	return l.cacheBytes.Load()
}

// enforceByteBudget drops oldest entries until the cache fits the byte
// ceiling. The entry ceiling is enforced by the LRU itself.
func (l *Loader) enforceByteBudget() {
	for l.cacheBytes.Load() > l.maxBytes && l.cache.Len() > 0 {
		l.cache.RemoveOldest()
	}
}

// imageBytes estimates the memory held by a decoded bitmap. Thumbnails
// decode to RGBA-like layouts, so 4 bytes per pixel is close enough
// for budget accounting.
func imageBytes(img image.Image) int64 {
	if img == nil {
		return 0
	}
	bounds := img.Bounds()
	return int64(bounds.Dx()) * int64(bounds.Dy()) * 4
}
