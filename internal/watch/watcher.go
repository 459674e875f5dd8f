// Package watch implements the file watcher behind preview-on-save. It
// watches the directory containing the target file rather than the file
// itself: most editors save by writing a temp file and renaming it over the
// original, which silently drops a watch placed on the file.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kitman/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// PreviewWatcher watches a single markup file and hands the new contents to
// a callback once saves have settled. Rapid successive writes (editor swap
// files, formatters) collapse into one reload.
type PreviewWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string // absolute path of the watched file
	dir         string // parent directory actually registered with fsnotify
	onChange    func(body string)
	pending     bool
	pendingAt   time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for the status line and debugging.
type WatcherStats struct {
	Writes        int
	Removes       int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventOp   string
}

// NewPreviewWatcher creates a watcher for path. The callback runs on the
// watcher goroutine after a change has settled for the given duration.
func NewPreviewWatcher(path string, settle time.Duration, onChange func(body string)) (*PreviewWatcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if settle <= 0 {
		settle = 200 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &PreviewWatcher{
		watcher:     watcher,
		path:        abs,
		dir:         filepath.Dir(abs),
		onChange:    onChange,
		debounceDur: settle,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *PreviewWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Get(logging.CategoryWatch).Infof("Watching %s (settle %s)", w.path, w.debounceDur)

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *PreviewWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Errorf("Error closing watcher: %v", err)
	}
	logging.Get(logging.CategoryWatch).Debugf("Watcher stopped")
}

// Run starts the watcher and blocks until ctx is cancelled, then shuts it
// down. Cancellation is the normal way to leave watch mode, so it is not
// reported as an error.
func (w *PreviewWatcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// run is the event loop.
func (w *PreviewWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// The ticker drives settle detection; an atomic save fires several
	// events back to back and only the last one matters.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Get(logging.CategoryWatch).Debugf("Watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Errorf("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processSettled()
		}
	}
}

// handleEvent records a filesystem event for the watched file. Events for
// sibling files (editor temp files, other previews) are ignored.
func (w *PreviewWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var op string
	switch {
	case event.Op&fsnotify.Create != 0, event.Op&fsnotify.Write != 0:
		op = "write"
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		op = "remove"
	default:
		return // Ignore chmod, etc.
	}

	logging.Get(logging.CategoryWatch).Debugf("%s event for %s", op, event.Name)

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventOp = op
	if op == "write" {
		w.stats.Writes++
	} else {
		w.stats.Removes++
	}
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

// processSettled reloads the file once events have stopped arriving for the
// settle window.
func (w *PreviewWatcher) processSettled() {
	w.mu.Lock()
	settled := w.pending && time.Since(w.pendingAt) >= w.debounceDur
	if settled {
		w.pending = false
	}
	w.mu.Unlock()

	if settled {
		w.reload()
	}
}

// reload reads the file and hands the new body to the callback. A missing
// file is not an error: an atomic save briefly removes the name, and the
// create event that follows lands here again.
func (w *PreviewWatcher) reload() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryWatch).Debugf("File gone, skipping reload: %s", w.path)
			return
		}
		logging.Get(logging.CategoryWatch).Errorf("Failed to read %s: %v", w.path, err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()

	w.onChange(string(content))
}

// GetStats returns a snapshot of watcher activity.
func (w *PreviewWatcher) GetStats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *PreviewWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Path returns the absolute path of the watched file.
func (w *PreviewWatcher) Path() string {
	return w.path
}
