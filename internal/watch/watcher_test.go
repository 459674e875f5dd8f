package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

// newTestWatcher creates a watcher over a real temp file. Callers that
// Start it clean up with Stop; callers that never Start close the inner
// fsnotify watcher directly.
func newTestWatcher(t *testing.T, settle time.Duration) (*PreviewWatcher, string, chan string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "announce.txt")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0644))

	bodies := make(chan string, 16)
	w, err := NewPreviewWatcher(path, settle, func(body string) {
		bodies <- body
	})
	require.NoError(t, err)

	return w, path, bodies
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNewPreviewWatcher_RequiresCallback(t *testing.T) {
	_, err := NewPreviewWatcher("some.txt", time.Second, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "callback")
}

func TestNewPreviewWatcher_Defaults(t *testing.T) {
	w, err := NewPreviewWatcher("relative.txt", 0, func(string) {})
	require.NoError(t, err)
	defer w.watcher.Close()

	require.True(t, filepath.IsAbs(w.Path()))
	require.Equal(t, 200*time.Millisecond, w.debounceDur)
}

func TestPreviewWatcher_StartStop(t *testing.T) {
	w, _, _ := newTestWatcher(t, 50*time.Millisecond)

	require.False(t, w.IsWatching())
	require.NoError(t, w.Start(context.Background()))
	require.True(t, w.IsWatching())

	// Second start is a no-op.
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	require.False(t, w.IsWatching())

	// Second stop is a no-op too.
	w.Stop()
}

func TestPreviewWatcher_StartFailsOnMissingDir(t *testing.T) {
	w, err := NewPreviewWatcher(filepath.Join(t.TempDir(), "no-such-dir", "file.txt"), time.Second, func(string) {})
	require.NoError(t, err)
	defer w.watcher.Close()

	err = w.Start(context.Background())
	require.Error(t, err)
	require.False(t, w.IsWatching())
}

func TestHandleEvent_FiltersAndClassifies(t *testing.T) {
	w, path, _ := newTestWatcher(t, time.Hour)
	defer w.watcher.Close()

	sibling := filepath.Join(filepath.Dir(path), "other.txt")

	// Sibling files never register.
	w.handleEvent(fsnotify.Event{Name: sibling, Op: fsnotify.Write})
	require.False(t, w.pending)
	require.Zero(t, w.GetStats().Writes)

	// Chmod is noise.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	require.False(t, w.pending)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.True(t, w.pending)
	require.Equal(t, 1, w.GetStats().Writes)
	require.Equal(t, "write", w.GetStats().LastEventOp)

	// Create counts as a write: atomic saves surface as rename+create.
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	require.Equal(t, 2, w.GetStats().Writes)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Rename})
	require.Equal(t, 1, w.GetStats().Removes)
	require.Equal(t, "remove", w.GetStats().LastEventOp)
}

func TestProcessSettled_WaitsForTheSettleWindow(t *testing.T) {
	w, _, bodies := newTestWatcher(t, time.Hour)
	defer w.watcher.Close()

	w.handleEvent(fsnotify.Event{Name: w.Path(), Op: fsnotify.Write})

	// Inside the settle window: nothing happens.
	w.processSettled()
	require.True(t, w.pending)
	require.Empty(t, bodies)

	// Force the window to elapse.
	w.pendingAt = time.Now().Add(-2 * time.Hour)
	w.processSettled()

	require.False(t, w.pending)
	require.Equal(t, 1, w.GetStats().Reloads)
	select {
	case body := <-bodies:
		require.Equal(t, "initial", body)
	default:
		t.Fatal("expected a reload callback")
	}
}

func TestReload_MissingFileIsQuiet(t *testing.T) {
	w, path, bodies := newTestWatcher(t, time.Second)
	defer w.watcher.Close()

	require.NoError(t, os.Remove(path))
	w.reload()

	require.Empty(t, bodies)
	require.Zero(t, w.GetStats().Reloads)
	require.Zero(t, w.GetStats().Errors)
}

func TestPreviewWatcher_ReloadOnWrite(t *testing.T) {
	w, path, bodies := newTestWatcher(t, 20*time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("<b>updated</b>"), 0644))

	select {
	case body := <-bodies:
		require.Equal(t, "<b>updated</b>", body)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	stats := w.GetStats()
	require.GreaterOrEqual(t, stats.Writes, 1)
	require.GreaterOrEqual(t, stats.Reloads, 1)
}

func TestPreviewWatcher_RapidWritesCollapse(t *testing.T) {
	w, path, bodies := newTestWatcher(t, 30*time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// All three land well inside one settle window; the reload that follows
	// must already see the last body.
	for _, body := range []string{"one", "two", "three"} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}

	select {
	case body := <-bodies:
		require.Equal(t, "three", body)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writes")
	}
}

func TestPreviewWatcher_RunReturnsOnCancel(t *testing.T) {
	w, _, _ := newTestWatcher(t, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.True(t, waitFor(t, 2*time.Second, w.IsWatching), "watcher never started")
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	require.False(t, w.IsWatching())
}
