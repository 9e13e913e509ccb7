// Package store persists per-photo ratings and category sets.
//
// Both stores follow the same pattern: a SQLite table keyed by
// absolute file path, mirrored into an in-process map. Reads hit the
// mirror only. Writes update the mirror synchronously, then queue onto
// a per-store writer goroutine that persists them in order, so the
// database converges on the last mirror write even when one path is
// mutated in quick succession. A failed write is logged and dropped and the
// mirror remains the visible truth. Both mirrors are bulk-loaded
// before the store constructor returns, so there is no window where a
// mutation can be silently lost to an unready store.
package store
