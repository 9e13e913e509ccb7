package library

import (
	"sync"

	"photo-cull/internal/catalog"
	"photo-cull/internal/logging"
	"photo-cull/internal/store"
	"photo-cull/internal/thumbs"
)

// EventType identifies what changed in the library.
type EventType string

const (
	// EventScan fires after a scan replaces the record list.
	EventScan EventType = "scan"
	// EventRating fires after a rating changes.
	EventRating EventType = "rating"
	// EventCategories fires after a category set changes.
	EventCategories EventType = "categories"
)

// Event is a change notification. Path is empty for whole-collection
// events (scans, clear-alls).
type Event struct {
	Type EventType `json:"type"`
	Path string    `json:"path,omitempty"`
}

// Library ties the scanner, the two attribute stores, and the
// thumbnail loader together and fans out change notifications.
// Presentation code pulls snapshots after an event rather than holding
// live references into the library.
type Library struct {
	scanner    *catalog.Scanner
	ratings    *store.RatingStore
	categories *store.CategoryStore
	loader     *thumbs.Loader

	subMu sync.Mutex
	subs  []chan Event
}

// New wires a Library from its parts and hooks scan completion into
// the event stream.
func New(scanner *catalog.Scanner, ratings *store.RatingStore, categories *store.CategoryStore, loader *thumbs.Loader) *Library {
	lib := &Library{
		scanner:    scanner,
		ratings:    ratings,
		categories: categories,
		loader:     loader,
	}
	scanner.SetOnScanComplete(func([]catalog.ImageRecord) {
		lib.publish(Event{Type: EventScan})
	})
	return lib
}

// Images returns the current record list, newest first.
func (l *Library) Images() []catalog.ImageRecord {
	return l.scanner.Records()
}

// Rescan starts an asynchronous scan; the record list is replaced and
// an EventScan published when it completes. Ratings, categories, and
// cached thumbnails are keyed by path and survive rescans untouched.
func (l *Library) Rescan() {
	l.scanner.Start()
}

// ScanProgress reports the state of the current scan.
func (l *Library) ScanProgress() catalog.ScanProgress {
	return l.scanner.Progress()
}

// Rating returns the rating for path (0 = unrated).
func (l *Library) Rating(path string) int {
	return l.ratings.Get(path)
}

// SetRating assigns a rating and notifies subscribers.
func (l *Library) SetRating(path string, rating int) {
	l.ratings.Set(path, rating)
	l.publish(Event{Type: EventRating, Path: path})
}

// ClearRating removes the rating for path.
func (l *Library) ClearRating(path string) {
	l.ratings.Delete(path)
	l.publish(Event{Type: EventRating, Path: path})
}

// Categories returns the category set for path.
func (l *Library) Categories(path string) store.CategorySet {
	return l.categories.Get(path)
}

// SetCategories replaces the category set for path and notifies
// subscribers.
func (l *Library) SetCategories(path string, set store.CategorySet) {
	l.categories.Set(path, set)
	l.publish(Event{Type: EventCategories, Path: path})
}

// ToggleCategory flips one category id for path and returns the new
// set.
func (l *Library) ToggleCategory(path string, id int) store.CategorySet {
	set := l.categories.Toggle(path, id)
	l.publish(Event{Type: EventCategories, Path: path})
	return set
}

// ClearAllAttributes removes every rating and category assignment.
func (l *Library) ClearAllAttributes() {
	l.ratings.ClearAll()
	l.categories.ClearAll()
	l.publish(Event{Type: EventRating})
	l.publish(Event{Type: EventCategories})
}

// Loader exposes the thumbnail loader for image-serving callers.
func (l *Library) Loader() *thumbs.Loader {
	return l.loader
}

// Flush waits for outstanding persistence writes on both stores.
func (l *Library) Flush() {
	l.ratings.Flush()
	l.categories.Flush()
}

// Subscribe returns a channel of change events. Delivery is
// best-effort: a subscriber that falls behind loses events rather than
// blocking mutators.
func (l *Library) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	l.subMu.Lock()
	l.subs = append(l.subs, ch)
	l.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (l *Library) Unsubscribe(ch <-chan Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for i, sub := range l.subs {
		if sub == ch {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

func (l *Library) publish(event Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, sub := range l.subs {
		select {
		case sub <- event:
		default:
			logging.Debug("Dropping %s event for slow subscriber", event.Type)
		}
	}
}

// Stats summarizes the library state.
type Stats struct {
	Images       int   `json:"images"`
	Rated        int   `json:"rated"`
	Categorized  int   `json:"categorized"`
	CachedThumbs int   `json:"cachedThumbs"`
	CacheBytes   int64 `json:"cacheBytes"`
}

// Stats returns a point-in-time summary.
func (l *Library) Stats() Stats {
	return Stats{
		Images:       len(l.Images()),
		Rated:        l.ratings.Len(),
		Categorized:  l.categories.Len(),
		CachedThumbs: l.loader.CacheLen(),
		CacheBytes:   l.loader.CacheBytes(),
	}
}
