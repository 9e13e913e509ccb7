package store

import (
	"context"
	"sync"
	"time"

	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"
)

// MaxRating is the highest star rating. Zero means unrated and is not
// a distinct stored state.
const MaxRating = 5

// RatingStore maps absolute file paths to a 0-5 star rating. Reads are
// served from an in-memory mirror; writes update the mirror first and
// persist to SQLite asynchronously. A single writer goroutine applies
// persistence in mutation order, so the database always converges on
// the mirror's last write for any path. The mirror is the source of
// truth regardless of persistence outcome.
type RatingStore struct {
	db *Database

	mu     sync.RWMutex
	mirror map[string]int

	queue  chan persistRequest
	writes sync.WaitGroup
}

// NewRatingStore builds a RatingStore over db, loading every existing
// row into the mirror before returning. The store is fully usable the
// moment it is returned.
func NewRatingStore(ctx context.Context, db *Database) (*RatingStore, error) {
	s := &RatingStore{
		db:     db,
		mirror: make(map[string]int),
		queue:  make(chan persistRequest, persistQueueSize),
	}
	go s.runWriter()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := db.db.QueryContext(ctx, "SELECT path, rating FROM ratings")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rating rows: %v", err)
		}
	}()

	for rows.Next() {
		var path string
		var rating int
		if err := rows.Scan(&path, &rating); err != nil {
			logging.Warn("Skipping unreadable rating row: %v", err)
			continue
		}
		if rating > 0 && rating <= MaxRating {
			s.mirror[path] = rating
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.StoreMirrorEntries.WithLabelValues("rating").Set(float64(len(s.mirror)))
	logging.Info("Loaded %d ratings", len(s.mirror))
	return s, nil
}

// Get returns the rating for path, or 0 when unrated. It only reads
// the mirror and never touches the backing store.
func (s *RatingStore) Get(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror[path]
}

// Set assigns a rating to path. Values are clamped to [0, MaxRating];
// setting 0 clears the rating. The mirror is updated before the
// backing-store write is issued.
func (s *RatingStore) Set(path string, rating int) {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}

	if rating == 0 {
		s.Delete(path)
		return
	}

	s.mu.Lock()
	s.mirror[path] = rating
	metrics.StoreMirrorEntries.WithLabelValues("rating").Set(float64(len(s.mirror)))
	s.mu.Unlock()

	s.persist("set", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, `
			INSERT INTO ratings (path, rating, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				rating = excluded.rating,
				updated_at = excluded.updated_at
		`, path, rating, time.Now().Unix())
		return err
	})
}

// Delete clears the rating for path. Reading the path afterwards
// returns 0.
func (s *RatingStore) Delete(path string) {
	s.mu.Lock()
	delete(s.mirror, path)
	metrics.StoreMirrorEntries.WithLabelValues("rating").Set(float64(len(s.mirror)))
	s.mu.Unlock()

	s.persist("delete", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, "DELETE FROM ratings WHERE path = ?", path)
		return err
	})
}

// ClearAll removes every rating.
func (s *RatingStore) ClearAll() {
	s.mu.Lock()
	s.mirror = make(map[string]int)
	metrics.StoreMirrorEntries.WithLabelValues("rating").Set(0)
	s.mu.Unlock()

	s.persist("clear_all", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, "DELETE FROM ratings")
		return err
	})
}

// All returns a copy of the rating mirror.
func (s *RatingStore) All() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.mirror))
	for path, rating := range s.mirror {
		out[path] = rating
	}
	return out
}

// Len returns the number of rated paths.
func (s *RatingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mirror)
}

// Flush blocks until all queued persistence writes have finished. Used
// at shutdown and in tests; callers on the interactive path never wait.
func (s *RatingStore) Flush() {
	s.writes.Wait()
}

// persist queues a backing-store write. Writes for the same store are
// applied strictly in queue order; a later Set or Delete on a path can
// never be overtaken by an earlier one. Failures are logged and
// dropped; the mirror stays the visible truth.
func (s *RatingStore) persist(operation string, write func(context.Context) error) {
	s.writes.Add(1)
	s.queue <- persistRequest{operation: operation, write: write}
}

// runWriter drains the persistence queue for the life of the store.
func (s *RatingStore) runWriter() {
	for req := range s.queue {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		err := req.write(ctx)
		cancel()

		status := "success"
		if err != nil {
			status = "error"
			logging.Error("Rating %s persistence failed: %v", req.operation, err)
		}
		metrics.StoreOperationsTotal.WithLabelValues("rating", req.operation, status).Inc()
		metrics.StoreWriteDuration.WithLabelValues("rating").Observe(time.Since(start).Seconds())
		s.writes.Done()
	}
}
