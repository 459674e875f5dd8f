package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

// resetForTest returns the package to its pre-Initialize state.
func resetForTest() {
	CloseAll()
	mu.Lock()
	logsDir = ""
	level = zapcore.InfoLevel
	ready = false
	mu.Unlock()
}

func TestGet_BeforeInitializeIsNoop(t *testing.T) {
	resetForTest()

	// Must not panic, write, or create files.
	l := Get(CategoryStore)
	l.Infow("dropped", "key", "value")
	l.Errorf("also dropped: %d", 42)
}

func TestInitialize_CreatesCategoryFiles(t *testing.T) {
	resetForTest()
	defer resetForTest()

	dir := t.TempDir()
	if err := Initialize(dir, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Get(CategoryStore).Infow("announcement created", "id", "abc123")
	Get(CategoryWatch).Debugf("settled after %v", 200*time.Millisecond)
	CloseAll()

	date := time.Now().Format("2006-01-02")
	storeLog := filepath.Join(dir, date+"_store.log")
	data, err := os.ReadFile(storeLog)
	if err != nil {
		t.Fatalf("store log not written: %v", err)
	}
	if !strings.Contains(string(data), "announcement created") {
		t.Errorf("store log missing message: %q", string(data))
	}
	if !strings.Contains(string(data), "store") {
		t.Errorf("store log missing category name: %q", string(data))
	}

	watchLog := filepath.Join(dir, date+"_watch.log")
	if data, err := os.ReadFile(watchLog); err != nil {
		t.Fatalf("watch log not written: %v", err)
	} else if !strings.Contains(string(data), "settled") {
		t.Errorf("watch log missing debug message: %q", string(data))
	}
}

func TestInitialize_LevelFiltering(t *testing.T) {
	resetForTest()
	defer resetForTest()

	dir := t.TempDir()
	if err := Initialize(dir, "warn"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryUI)
	l.Info("should be filtered")
	l.Warn("should appear")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+"_ui.log"))
	if err != nil {
		t.Fatalf("ui log not written: %v", err)
	}
	if strings.Contains(string(data), "should be filtered") {
		t.Error("info message leaked through warn level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("warn message missing")
	}
}

func TestInitialize_BadLevelFallsBack(t *testing.T) {
	resetForTest()
	defer resetForTest()

	if err := Initialize(t.TempDir(), "shouting"); err != nil {
		t.Fatalf("Initialize with bad level should not error: %v", err)
	}
	if level != zapcore.InfoLevel {
		t.Errorf("level = %v, want fallback info", level)
	}
}

func TestInitialize_EmptyDirErrors(t *testing.T) {
	resetForTest()
	if err := Initialize("", "info"); err == nil {
		t.Error("Initialize with empty dir should error")
	}
}

func TestGet_SameLoggerPerCategory(t *testing.T) {
	resetForTest()
	defer resetForTest()

	if err := Initialize(t.TempDir(), "info"); err != nil {
		t.Fatal(err)
	}
	if Get(CategoryBoot) != Get(CategoryBoot) {
		t.Error("Get should return the same logger for a category")
	}
}

func TestTimer_StopWithThreshold(t *testing.T) {
	resetForTest()
	defer resetForTest()

	dir := t.TempDir()
	if err := Initialize(dir, "debug"); err != nil {
		t.Fatal(err)
	}

	timer := StartTimer(CategoryPreview, "render")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)
	if elapsed < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 5ms", elapsed)
	}
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, date+"_preview.log"))
	if err != nil {
		t.Fatalf("preview log not written: %v", err)
	}
	if !strings.Contains(string(data), "threshold") {
		t.Errorf("expected threshold warning in log: %q", string(data))
	}
}
