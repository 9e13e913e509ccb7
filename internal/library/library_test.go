package library

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-cull/internal/catalog"
	"photo-cull/internal/imagekind"
	"photo-cull/internal/store"
	"photo-cull/internal/thumbs"
)

type stubDecoder struct{}

func (stubDecoder) Decode(path string, opts thumbs.DecodeOptions) (image.Image, error) {
	if filepath.Ext(path) == ".bad" {
		return nil, errors.New("decode failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}

// setupLibrary builds a Library over a temp photo directory and a temp
// database, with the scan already completed.
func setupLibrary(t *testing.T, files ...string) (*Library, string) {
	t.Helper()

	photoDir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(photoDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "attributes.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ratings, err := store.NewRatingStore(context.Background(), db)
	if err != nil {
		t.Fatalf("NewRatingStore failed: %v", err)
	}
	categories, err := store.NewCategoryStore(context.Background(), db)
	if err != nil {
		t.Fatalf("NewCategoryStore failed: %v", err)
	}

	scanner := catalog.NewScanner(photoDir)
	loader := thumbs.NewLoader(stubDecoder{}, thumbs.LoaderOptions{})
	lib := New(scanner, ratings, categories, loader)

	if _, err := scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return lib, photoDir
}

func pathOf(t *testing.T, lib *Library, name string) string {
	t.Helper()
	for _, rec := range lib.Images() {
		if rec.Name == name {
			return rec.Path
		}
	}
	t.Fatalf("no record named %s", name)
	return ""
}

func TestLibraryImages(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg", "b.cr2", "b.jpg", "c.png")

	// b.cr2/b.jpg collapse into one record.
	if got := len(lib.Images()); got != 3 {
		t.Errorf("Images() = %d records, want 3", got)
	}
}

func TestLibraryRatingRoundTrip(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg")
	path := pathOf(t, lib, "a.jpg")

	lib.SetRating(path, 4)
	if got := lib.Rating(path); got != 4 {
		t.Errorf("Rating = %d, want 4", got)
	}

	lib.ClearRating(path)
	if got := lib.Rating(path); got != 0 {
		t.Errorf("Rating = %d after clear, want 0", got)
	}
}

func TestLibraryCategories(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg")
	path := pathOf(t, lib, "a.jpg")

	lib.SetCategories(path, store.NewCategorySet(0, 2))
	if got := lib.Categories(path); !got.Has(0) || !got.Has(2) {
		t.Errorf("Categories = %v", got.IDs())
	}

	set := lib.ToggleCategory(path, 2)
	if set.Has(2) {
		t.Error("expected toggle to remove category 2")
	}
	if !lib.Categories(path).Has(0) {
		t.Error("toggle must not disturb other categories")
	}
}

func TestLibraryFilter(t *testing.T) {
	lib, _ := setupLibrary(t, "one.jpg", "two.cr2", "three.png")

	one := pathOf(t, lib, "one.jpg")
	two := pathOf(t, lib, "two.cr2")

	lib.SetRating(one, 5)
	lib.SetRating(two, 2)
	lib.SetCategories(one, store.NewCategorySet(1))

	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"All", FilterOptions{}, 3},
		{"MinRating2", FilterOptions{MinRating: 2}, 2},
		{"MinRating5", FilterOptions{MinRating: 5}, 1},
		{"Unrated", FilterOptions{Unrated: true}, 1},
		{"Category1", FilterOptions{Categories: store.NewCategorySet(1)}, 1},
		{"CategoryMiss", FilterOptions{Categories: store.NewCategorySet(3)}, 0},
		{"KindRaw", FilterOptions{Kind: imagekind.KindRAW}, 1},
		{"RatedRaw", FilterOptions{MinRating: 1, Kind: imagekind.KindRAW}, 1},
		{"FiveStarRaw", FilterOptions{MinRating: 5, Kind: imagekind.KindRAW}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(lib.Filter(tt.opts)); got != tt.want {
				t.Errorf("Filter(%+v) = %d records, want %d", tt.opts, got, tt.want)
			}
		})
	}
}

func TestLibraryFilterPreservesOrder(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg", "b.jpg", "c.jpg")

	all := lib.Images()
	for _, rec := range all {
		lib.SetRating(rec.Path, 3)
	}

	filtered := lib.Filter(FilterOptions{MinRating: 3})
	if len(filtered) != len(all) {
		t.Fatalf("Filter = %d records, want %d", len(filtered), len(all))
	}
	for i := range all {
		if filtered[i].Path != all[i].Path {
			t.Errorf("position %d: filter reordered records", i)
		}
	}
}

func TestLibrarySubscribe(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg")
	path := pathOf(t, lib, "a.jpg")

	events := lib.Subscribe()
	defer lib.Unsubscribe(events)

	lib.SetRating(path, 3)
	lib.SetCategories(path, store.NewCategorySet(1))

	expectEvent(t, events, EventRating, path)
	expectEvent(t, events, EventCategories, path)
}

func TestLibraryRescanEvent(t *testing.T) {
	lib, photoDir := setupLibrary(t, "a.jpg")
	events := lib.Subscribe()
	defer lib.Unsubscribe(events)

	if err := os.WriteFile(filepath.Join(photoDir, "b.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	lib.Rescan()

	expectEvent(t, events, EventScan, "")
	if got := len(lib.Images()); got != 2 {
		t.Errorf("Images() = %d after rescan, want 2", got)
	}
}

func TestLibraryAttributesSurviveRescan(t *testing.T) {
	lib, _ := setupLibrary(t, "keep.jpg")
	path := pathOf(t, lib, "keep.jpg")

	lib.SetRating(path, 5)
	lib.SetCategories(path, store.NewCategorySet(4))

	events := lib.Subscribe()
	defer lib.Unsubscribe(events)
	lib.Rescan()
	expectEvent(t, events, EventScan, "")

	// Attributes are keyed by path, not by scan session.
	if lib.Rating(path) != 5 {
		t.Error("rating lost across rescan")
	}
	if !lib.Categories(path).Has(4) {
		t.Error("categories lost across rescan")
	}
}

func TestLibraryClearAllAttributes(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg", "b.jpg")
	a := pathOf(t, lib, "a.jpg")
	b := pathOf(t, lib, "b.jpg")

	lib.SetRating(a, 1)
	lib.SetRating(b, 2)
	lib.SetCategories(a, store.NewCategorySet(0))

	lib.ClearAllAttributes()
	lib.Flush()

	if lib.Rating(a) != 0 || lib.Rating(b) != 0 {
		t.Error("expected ratings cleared")
	}
	if !lib.Categories(a).IsEmpty() {
		t.Error("expected categories cleared")
	}
}

func TestLibraryStats(t *testing.T) {
	lib, _ := setupLibrary(t, "a.jpg", "b.jpg")
	a := pathOf(t, lib, "a.jpg")

	lib.SetRating(a, 3)
	lib.SetCategories(a, store.NewCategorySet(1))
	lib.Loader().Thumbnail(a)

	stats := lib.Stats()
	if stats.Images != 2 {
		t.Errorf("Stats.Images = %d, want 2", stats.Images)
	}
	if stats.Rated != 1 {
		t.Errorf("Stats.Rated = %d, want 1", stats.Rated)
	}
	if stats.Categorized != 1 {
		t.Errorf("Stats.Categorized = %d, want 1", stats.Categorized)
	}
	if stats.CachedThumbs != 1 {
		t.Errorf("Stats.CachedThumbs = %d, want 1", stats.CachedThumbs)
	}
	if stats.CacheBytes == 0 {
		t.Error("Stats.CacheBytes should be non-zero with a cached thumbnail")
	}
}

func expectEvent(t *testing.T, events <-chan Event, eventType EventType, path string) {
	t.Helper()
	select {
	case event := <-events:
		if event.Type != eventType {
			t.Errorf("event type = %s, want %s", event.Type, eventType)
		}
		if event.Path != path {
			t.Errorf("event path = %s, want %s", event.Path, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s event", eventType)
	}
}
