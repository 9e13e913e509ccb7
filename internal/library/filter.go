package library

import (
	"photo-cull/internal/catalog"
	"photo-cull/internal/imagekind"
	"photo-cull/internal/store"
)

// FilterOptions selects a subset of the collection. Zero values mean
// "no constraint".
type FilterOptions struct {
	// MinRating keeps images rated at least this many stars.
	MinRating int
	// Unrated keeps only images with no rating. Mutually exclusive
	// with MinRating; Unrated wins when both are set.
	Unrated bool
	// Categories keeps images whose set contains every listed id.
	Categories store.CategorySet
	// Kind keeps images of one detected kind.
	Kind imagekind.Kind
}

// Filter returns the records matching opts, preserving collection
// order (newest first). Filtering is pure in-memory work over the
// mirrors; it never touches the backing store.
func (l *Library) Filter(opts FilterOptions) []catalog.ImageRecord {
	records := l.Images()

	filtered := make([]catalog.ImageRecord, 0, len(records))
	for _, rec := range records {
		if opts.Kind != "" && rec.Kind != opts.Kind {
			continue
		}
		if opts.Unrated {
			if l.ratings.Get(rec.Path) != 0 {
				continue
			}
		} else if opts.MinRating > 0 && l.ratings.Get(rec.Path) < opts.MinRating {
			continue
		}
		if !opts.Categories.IsEmpty() && !l.categories.Get(rec.Path).Contains(opts.Categories) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
