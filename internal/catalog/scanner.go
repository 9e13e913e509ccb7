package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"photo-cull/internal/imagekind"
	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"
)

// Scanner walks a photo directory and produces one ImageRecord per
// logical photo. Files sharing a directory and base name (IMG_0001.CR2
// and IMG_0001.JPG) form one group; a raw member wins the group.
type Scanner struct {
	root string

	scanMu   sync.Mutex
	scanning bool

	records atomic.Value // []ImageRecord

	filesSeen     atomic.Int64
	lastScanFiles atomic.Int64
	startedAt     time.Time

	onScanComplete func([]ImageRecord)

	stopChan chan struct{}
	stopOnce sync.Once
}

// groupKey identifies a sibling group: same directory, same base name
// without extension.
type groupKey struct {
	dir  string
	base string
}

// NewScanner creates a Scanner rooted at dir.
func NewScanner(root string) *Scanner {
	s := &Scanner{
		root:     root,
		stopChan: make(chan struct{}),
	}
	s.records.Store([]ImageRecord(nil))
	return s
}

// Root returns the directory this scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// SetOnScanComplete registers a callback invoked with the new record
// list after every completed scan.
func (s *Scanner) SetOnScanComplete(callback func([]ImageRecord)) {
	s.onScanComplete = callback
}

// Records returns the record list published by the most recent
// completed scan. The returned slice must not be modified.
func (s *Scanner) Records() []ImageRecord {
	recs, _ := s.records.Load().([]ImageRecord)
	return recs
}

// InProgress reports whether a scan is currently running.
func (s *Scanner) InProgress() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.scanning
}

// Progress returns the state of the current scan. The fraction is
// best-effort: it is estimated against the previous scan's file count
// and is cosmetic only.
func (s *Scanner) Progress() ScanProgress {
	s.scanMu.Lock()
	scanning := s.scanning
	startedAt := s.startedAt
	s.scanMu.Unlock()

	seen := s.filesSeen.Load()
	progress := ScanProgress{
		Scanning:  scanning,
		FilesSeen: seen,
	}
	if !scanning {
		progress.Fraction = 1.0
		return progress
	}

	progress.StartedAt = startedAt
	if last := s.lastScanFiles.Load(); last > 0 {
		fraction := float64(seen) / float64(last)
		if fraction > 0.99 {
			fraction = 0.99
		}
		progress.Fraction = fraction
	}
	return progress
}

// Start runs a scan on a background goroutine. The new record list is
// published atomically on completion and the completion callback is
// invoked with it. If a scan is already running, Start is a no-op.
func (s *Scanner) Start() {
	s.scanMu.Lock()
	if s.scanning {
		s.scanMu.Unlock()
		logging.Debug("Scan already in progress for %s, ignoring", s.root)
		return
	}
	s.scanning = true
	s.startedAt = time.Now()
	s.filesSeen.Store(0)
	s.scanMu.Unlock()

	go func() {
		start := time.Now()
		records, err := s.scan()
		if err != nil {
			// A missing or unreadable root degrades to an empty
			// collection rather than a failed session.
			logging.Warn("Scan of %s failed: %v", s.root, err)
			records = nil
		}

		s.records.Store(records)
		s.lastScanFiles.Store(s.filesSeen.Load())

		s.scanMu.Lock()
		s.scanning = false
		s.scanMu.Unlock()

		metrics.ScanRunsTotal.Inc()
		metrics.ScanDuration.Set(time.Since(start).Seconds())
		metrics.ScanRecords.Set(float64(len(records)))
		logging.Info("Scan of %s complete: %d records in %v", s.root, len(records), time.Since(start))

		if s.onScanComplete != nil {
			s.onScanComplete(records)
		}
	}()
}

// Scan runs a scan synchronously and returns the record list. Unlike
// Start it surfaces a root that does not exist or is not a directory
// as an error; per-entry failures inside the tree are still skipped.
func (s *Scanner) Scan() ([]ImageRecord, error) {
	s.scanMu.Lock()
	if s.scanning {
		s.scanMu.Unlock()
		return s.Records(), nil
	}
	s.scanning = true
	s.startedAt = time.Now()
	s.filesSeen.Store(0)
	s.scanMu.Unlock()

	defer func() {
		s.scanMu.Lock()
		s.scanning = false
		s.scanMu.Unlock()
	}()

	records, err := s.scan()
	if err != nil {
		return nil, err
	}
	s.records.Store(records)
	s.lastScanFiles.Store(s.filesSeen.Load())
	return records, nil
}

func (s *Scanner) scan() ([]ImageRecord, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrInvalid
	}

	// Groups keep first-encounter order so the final tie-break within
	// a group is "first member seen".
	groups := make(map[groupKey]int)
	var chosen []ImageRecord

	walkErr := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Permission and transient I/O errors skip the entry,
			// never the whole scan.
			logging.Debug("Skipping %s: %v", path, err)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != s.root {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		s.filesSeen.Add(1)
		metrics.ScanFilesSeen.Inc()

		if !imagekind.IsSupported(name) {
			return nil
		}

		record := s.makeRecord(path, name, entry)
		key := groupKey{
			dir:  filepath.Dir(path),
			base: baseName(name),
		}

		idx, ok := groups[key]
		if !ok {
			groups[key] = len(chosen)
			chosen = append(chosen, record)
			return nil
		}

		// A raw member takes over a group currently represented by a
		// non-raw file; the first raw member seen sticks.
		if chosen[idx].Kind != imagekind.KindRAW && record.Kind == imagekind.KindRAW {
			chosen[idx] = record
		}
		return nil
	})
	if walkErr != nil {
		logging.Warn("Walk of %s ended early: %v", s.root, walkErr)
	}

	// Newest first. The stable sort keeps original walk order for
	// records with equal or unreadable (zero) mod times.
	sort.SliceStable(chosen, func(i, j int) bool {
		return chosen[i].ModTime.After(chosen[j].ModTime)
	})

	return chosen, nil
}

// makeRecord builds an ImageRecord for a surviving file. Size and mod
// time stay zero when the stat fails; the record is still produced.
func (s *Scanner) makeRecord(path, name string, entry fs.DirEntry) ImageRecord {
	record := ImageRecord{
		Path: path,
		Name: name,
		Kind: imagekind.Detect(name),
	}
	if info, err := entry.Info(); err == nil {
		record.Size = info.Size()
		record.ModTime = info.ModTime()
	} else {
		logging.Debug("Could not stat %s: %v", path, err)
	}
	return record
}

// baseName strips the extension from a file name.
func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
