package thumbs

import (
	"sync"
	"time"

	"photo-cull/internal/logging"
	"photo-cull/internal/workers"
)

// Prewarm decodes thumbnails for paths in the background so the first
// grid render hits a warm cache. Decode failures are skipped; overflow
// beyond the cache ceilings is simply evicted again. Blocks until the
// pool drains, so run it on its own goroutine.
func (l *Loader) Prewarm(paths []string) {
	if len(paths) == 0 {
		return
	}

	start := time.Now()
	workerCount := workers.ForCPU(8)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				l.Thumbnail(path)
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	logging.Debug("Prewarmed %d thumbnails with %d workers in %v",
		len(paths), workerCount, time.Since(start))
}
