package thumbs

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeDecoder counts decode calls and can be told to fail for specific
// paths.
type fakeDecoder struct {
	mu      sync.Mutex
	calls   map[string]int
	failing map[string]bool
	size    int // square bitmap edge length
}

func newFakeDecoder(size int) *fakeDecoder {
	return &fakeDecoder{
		calls:   make(map[string]int),
		failing: make(map[string]bool),
		size:    size,
	}
}

func (d *fakeDecoder) Decode(path string, opts DecodeOptions) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls[path]++
	if d.failing[path] {
		return nil, errors.New("decode failed")
	}

	size := d.size
	if opts.Thumbnail && opts.MaxDimension > 0 && size > opts.MaxDimension {
		size = opts.MaxDimension
	}
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

func (d *fakeDecoder) callCount(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[path]
}

func TestThumbnailCacheHit(t *testing.T) {
	decoder := newFakeDecoder(1000)
	loader := NewLoader(decoder, LoaderOptions{})

	img, ok := loader.Thumbnail("/photos/a.jpg")
	if !ok {
		t.Fatal("first Thumbnail call failed")
	}
	if img.Bounds().Dx() != DefaultThumbnailDimension {
		t.Errorf("thumbnail edge = %d, want %d", img.Bounds().Dx(), DefaultThumbnailDimension)
	}

	if _, ok := loader.Thumbnail("/photos/a.jpg"); !ok {
		t.Fatal("second Thumbnail call failed")
	}
	if got := decoder.callCount("/photos/a.jpg"); got != 1 {
		t.Errorf("decoder invoked %d times, want 1 (cache hit)", got)
	}
}

func TestThumbnailClearCacheForcesRedecode(t *testing.T) {
	decoder := newFakeDecoder(100)
	loader := NewLoader(decoder, LoaderOptions{})

	loader.Thumbnail("/p.jpg")
	loader.ClearCache()

	if loader.CacheLen() != 0 {
		t.Errorf("CacheLen = %d after clear, want 0", loader.CacheLen())
	}
	if loader.CacheBytes() != 0 {
		t.Errorf("CacheBytes = %d after clear, want 0", loader.CacheBytes())
	}

	loader.Thumbnail("/p.jpg")
	if got := decoder.callCount("/p.jpg"); got != 2 {
		t.Errorf("decoder invoked %d times, want 2 after clear", got)
	}
}

func TestThumbnailDecodeFailure(t *testing.T) {
	decoder := newFakeDecoder(100)
	decoder.failing["/broken.cr2"] = true
	loader := NewLoader(decoder, LoaderOptions{})

	if _, ok := loader.Thumbnail("/broken.cr2"); ok {
		t.Error("expected absent result for failing decode")
	}
	if loader.CacheLen() != 0 {
		t.Error("failed decode must not populate the cache")
	}

	// Failures are not cached either: the next request tries again.
	loader.Thumbnail("/broken.cr2")
	if got := decoder.callCount("/broken.cr2"); got != 2 {
		t.Errorf("decoder invoked %d times, want 2", got)
	}
}

func TestThumbnailEntryCeiling(t *testing.T) {
	decoder := newFakeDecoder(10)
	loader := NewLoader(decoder, LoaderOptions{MaxEntries: 3})

	for i := 0; i < 5; i++ {
		loader.Thumbnail(fmt.Sprintf("/p%d.jpg", i))
	}

	if loader.CacheLen() != 3 {
		t.Errorf("CacheLen = %d, want 3", loader.CacheLen())
	}

	// The oldest entries were evicted; re-requesting decodes again.
	loader.Thumbnail("/p0.jpg")
	if got := decoder.callCount("/p0.jpg"); got != 2 {
		t.Errorf("decoder invoked %d times for evicted entry, want 2", got)
	}
}

func TestThumbnailByteBudget(t *testing.T) {
	// Each 100x100 RGBA thumbnail accounts as 40000 bytes; a 100KB
	// budget fits two.
	decoder := newFakeDecoder(100)
	loader := NewLoader(decoder, LoaderOptions{
		MaxEntries:   50,
		MaxBytes:     100_000,
		MaxDimension: 100,
	})

	for i := 0; i < 4; i++ {
		loader.Thumbnail(fmt.Sprintf("/p%d.jpg", i))
	}

	if loader.CacheBytes() > 100_000 {
		t.Errorf("CacheBytes = %d, want <= 100000", loader.CacheBytes())
	}
	if loader.CacheLen() != 2 {
		t.Errorf("CacheLen = %d, want 2", loader.CacheLen())
	}
}

func TestFullImageNeverCached(t *testing.T) {
	decoder := newFakeDecoder(500)
	loader := NewLoader(decoder, LoaderOptions{})

	for i := 0; i < 3; i++ {
		img, ok := loader.FullImage("/big.arw")
		if !ok {
			t.Fatal("FullImage failed")
		}
		if img.Bounds().Dx() != 500 {
			t.Errorf("full image edge = %d, want native 500", img.Bounds().Dx())
		}
	}

	if got := decoder.callCount("/big.arw"); got != 3 {
		t.Errorf("decoder invoked %d times, want 3 (no caching)", got)
	}
	if loader.CacheLen() != 0 {
		t.Error("FullImage must not populate the thumbnail cache")
	}
}

func TestFullImageFailure(t *testing.T) {
	decoder := newFakeDecoder(500)
	decoder.failing["/broken.nef"] = true
	loader := NewLoader(decoder, LoaderOptions{})

	if _, ok := loader.FullImage("/broken.nef"); ok {
		t.Error("expected absent result for failing decode")
	}
}

func TestThumbnailConcurrentAccess(t *testing.T) {
	decoder := newFakeDecoder(50)
	loader := NewLoader(decoder, LoaderOptions{MaxEntries: 10})

	var wg sync.WaitGroup
	var failures atomic.Int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/p%d.jpg", i%5)
			if _, ok := loader.Thumbnail(path); !ok {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d concurrent requests failed", failures.Load())
	}
	if loader.CacheLen() != 5 {
		t.Errorf("CacheLen = %d, want 5", loader.CacheLen())
	}
}

func TestPrewarm(t *testing.T) {
	decoder := newFakeDecoder(50)
	loader := NewLoader(decoder, LoaderOptions{})

	paths := []string{"/a.jpg", "/b.jpg", "/c.nef"}
	loader.Prewarm(paths)

	if loader.CacheLen() != 3 {
		t.Errorf("CacheLen = %d after prewarm, want 3", loader.CacheLen())
	}
	for _, path := range paths {
		loader.Thumbnail(path)
		if got := decoder.callCount(path); got != 1 {
			t.Errorf("decoder invoked %d times for %s, want 1", got, path)
		}
	}
}

func TestPrewarmEmpty(t *testing.T) {
	loader := NewLoader(newFakeDecoder(50), LoaderOptions{})
	loader.Prewarm(nil)
}

// barrierDecoder holds every Decode call until release is closed, so a
// test can force several goroutines to miss the cache simultaneously.
type barrierDecoder struct {
	entered *sync.WaitGroup
	release chan struct{}
	size    int
}

func (d *barrierDecoder) Decode(path string, opts DecodeOptions) (image.Image, error) {
	d.entered.Done()
	<-d.release
	return image.NewRGBA(image.Rect(0, 0, d.size, d.size)), nil
}

func TestConcurrentMissesKeepByteAccountingExact(t *testing.T) {
	const racers = 4

	var entered sync.WaitGroup
	entered.Add(racers)
	decoder := &barrierDecoder{
		entered: &entered,
		release: make(chan struct{}),
		size:    100,
	}
	loader := NewLoader(decoder, LoaderOptions{})

	var done sync.WaitGroup
	done.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer done.Done()
			if _, ok := loader.Thumbnail("/photos/hot.jpg"); !ok {
				t.Error("Thumbnail failed")
			}
		}()
	}
	entered.Wait()
	close(decoder.release)
	done.Wait()

	// All racers inserted the same key; only one entry's bytes may be
	// counted, no matter who replaced whom.
	want := int64(100 * 100 * 4)
	if got := loader.CacheBytes(); got != want {
		t.Errorf("CacheBytes = %d, want %d", got, want)
	}
	if loader.CacheLen() != 1 {
		t.Errorf("CacheLen = %d, want 1", loader.CacheLen())
	}

	loader.ClearCache()
	if got := loader.CacheBytes(); got != 0 {
		t.Errorf("CacheBytes after ClearCache = %d, want 0", got)
	}
}
