package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"
)

// CategoryStore maps absolute file paths to a CategorySet, persisted
// as a JSON int array in the categories table. It has the same shape
// and discipline as RatingStore: mirror-first writes, an ordered
// single-writer persistence queue, synchronous load at construction.
type CategoryStore struct {
	db *Database

	mu     sync.RWMutex
	mirror map[string]CategorySet

	queue  chan persistRequest
	writes sync.WaitGroup
}

// NewCategoryStore builds a CategoryStore over db, loading every
// existing row into the mirror before returning.
func NewCategoryStore(ctx context.Context, db *Database) (*CategoryStore, error) {
	s := &CategoryStore{
		db:     db,
		mirror: make(map[string]CategorySet),
		queue:  make(chan persistRequest, persistQueueSize),
	}
	go s.runWriter()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := db.db.QueryContext(ctx, "SELECT path, ids FROM categories")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing category rows: %v", err)
		}
	}()

	for rows.Next() {
		var path, encoded string
		if err := rows.Scan(&path, &encoded); err != nil {
			logging.Warn("Skipping unreadable category row: %v", err)
			continue
		}
		var set CategorySet
		if err := json.Unmarshal([]byte(encoded), &set); err != nil {
			logging.Warn("Skipping malformed category row for %s: %v", path, err)
			continue
		}
		if !set.IsEmpty() {
			s.mirror[path] = set
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.StoreMirrorEntries.WithLabelValues("category").Set(float64(len(s.mirror)))
	logging.Info("Loaded %d category sets", len(s.mirror))
	return s, nil
}

// Get returns the category set for path; absent paths read as the
// empty set. Mirror only, never the backing store.
func (s *CategoryStore) Get(path string) CategorySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror[path]
}

// Set replaces the category set for path. An empty set clears the
// entry entirely, like Delete.
func (s *CategoryStore) Set(path string, set CategorySet) {
	if set.IsEmpty() {
		s.Delete(path)
		return
	}

	s.mu.Lock()
	s.mirror[path] = set
	metrics.StoreMirrorEntries.WithLabelValues("category").Set(float64(len(s.mirror)))
	s.mu.Unlock()

	encoded, err := json.Marshal(set)
	if err != nil {
		logging.Error("Failed to encode category set for %s: %v", path, err)
		return
	}

	s.persist("set", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, `
			INSERT INTO categories (path, ids, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				ids = excluded.ids,
				updated_at = excluded.updated_at
		`, path, string(encoded), time.Now().Unix())
		return err
	})
}

// Toggle flips the membership of a single category id for path.
func (s *CategoryStore) Toggle(path string, id int) CategorySet {
	set := s.Get(path)
	if set.Has(id) {
		set = set.Without(id)
	} else {
		set = set.With(id)
	}
	s.Set(path, set)
	return set
}

// Delete removes all categories for path.
func (s *CategoryStore) Delete(path string) {
	s.mu.Lock()
	delete(s.mirror, path)
	metrics.StoreMirrorEntries.WithLabelValues("category").Set(float64(len(s.mirror)))
	s.mu.Unlock()

	s.persist("delete", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, "DELETE FROM categories WHERE path = ?", path)
		return err
	})
}

// ClearAll removes every category assignment.
func (s *CategoryStore) ClearAll() {
	s.mu.Lock()
	s.mirror = make(map[string]CategorySet)
	metrics.StoreMirrorEntries.WithLabelValues("category").Set(0)
	s.mu.Unlock()

	s.persist("clear_all", func(ctx context.Context) error {
		_, err := s.db.db.ExecContext(ctx, "DELETE FROM categories")
		return err
	})
}

// All returns a copy of the category mirror.
func (s *CategoryStore) All() map[string]CategorySet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]CategorySet, len(s.mirror))
	for path, set := range s.mirror {
		out[path] = set
	}
	return out
}

// Len returns the number of paths with at least one category.
func (s *CategoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mirror)
}

// Flush blocks until all queued persistence writes have finished.
func (s *CategoryStore) Flush() {
	s.writes.Wait()
}

// persist queues a backing-store write, applied in queue order by the
// store's writer goroutine.
func (s *CategoryStore) persist(operation string, write func(context.Context) error) {
	s.writes.Add(1)
	s.queue <- persistRequest{operation: operation, write: write}
}

func (s *CategoryStore) runWriter() {
	for req := range s.queue {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		err := req.write(ctx)
		cancel()

		status := "success"
		if err != nil {
			status = "error"
			logging.Error("Category %s persistence failed: %v", req.operation, err)
		}
		metrics.StoreOperationsTotal.WithLabelValues("category", req.operation, status).Inc()
		metrics.StoreWriteDuration.WithLabelValues("category").Observe(time.Since(start).Seconds())
		s.writes.Done()
	}
}
