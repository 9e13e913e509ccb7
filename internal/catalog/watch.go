package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"photo-cull/internal/imagekind"
	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Debounce window between a watcher event and the rescan it triggers.
const rescanDelay = 2 * time.Second

// Watch monitors the scan root for new files and directories and
// triggers a rescan when something appears. It blocks until Stop is
// called and is meant to run on its own goroutine. Attribute and
// thumbnail state is untouched by rescans; this only refreshes the
// record list.
func (s *Scanner) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("Failed to create file watcher: %v", err)
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	watchCount := s.addDirectoriesToWatcher(watcher)
	logging.Debug("Catalog watcher started, watching %d directories", watchCount)

	s.processWatcherEvents(watcher)
}

// Stop shuts down the watcher loop.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scanner) addDirectoriesToWatcher(watcher *fsnotify.Watcher) int {
	watchCount := 0
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			if addErr := watcher.Add(path); addErr != nil {
				logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			} else {
				watchCount++
			}
		}
		return nil
	})
	if err != nil {
		logging.Error("failed to walk %s for watcher: %v", s.root, err)
	}
	return watchCount
}

func (s *Scanner) processWatcherEvents(watcher *fsnotify.Watcher) {
	var rescan <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if s.handleWatcherEvent(watcher, event) {
				rescan = time.After(rescanDelay)
			}

		case <-rescan:
			rescan = nil
			logging.Debug("Watcher triggering rescan of %s", s.root)
			s.Start()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)

		case <-s.stopChan:
			return
		}
	}
}

// handleWatcherEvent processes one filesystem event and reports
// whether it should schedule a rescan.
func (s *Scanner) handleWatcherEvent(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if strings.Contains(event.Name, string(filepath.Separator)+".") {
		return false
	}

	metrics.ScanWatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if addErr := watcher.Add(event.Name); addErr != nil {
				logging.Warn("failed to watch new directory %s: %v", event.Name, addErr)
			} else {
				logging.Debug("Watching new directory: %s", event.Name)
			}
			return true
		}
		return imagekind.IsSupported(event.Name)
	}

	return true
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
