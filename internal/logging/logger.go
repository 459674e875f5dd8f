// Package logging provides category-scoped zap loggers for kitman. Each
// category writes to its own dated file under the configured log directory,
// so a store problem can be read without wading through UI chatter. Before
// Initialize the package hands out no-op loggers, which lets library code
// log unconditionally; the CLI decides whether logging is on at all.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and config resolution
	CategoryMarkup  Category = "markup"  // Parse pipeline (depth-bound hits, cache stats)
	CategoryStore   Category = "store"   // Announcement database operations
	CategoryPreview Category = "preview" // Preview rendering
	CategoryUI      Category = "ui"      // Console pages
	CategoryWatch   Category = "watch"   // File watcher
)

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*zap.SugaredLogger)
	files   []*os.File
	logsDir string
	level   zapcore.Level = zapcore.InfoLevel
	ready   bool
)

// Initialize sets up the logging directory and level. Should be called once
// at startup; Get before it returns no-op loggers.
func Initialize(dir, lvl string) error {
	mu.Lock()
	defer mu.Unlock()

	if dir == "" {
		return fmt.Errorf("log directory required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	parsed, err := zapcore.ParseLevel(lvl)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	logsDir = dir
	level = parsed
	ready = true
	return nil
}

// Get returns (or creates) the logger for the given category. The file sink
// is opened lazily on first use; if it cannot be opened the category falls
// back to a no-op logger rather than failing the caller.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	initialized := ready
	mu.RUnlock()

	if !initialized {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := build(category)
	loggers[category] = l
	return l
}

// build opens the dated per-category file and wraps it in a zap core.
func build(category Category) *zap.SugaredLogger {
	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", path, err)
		return zap.NewNop().Sugar()
	}
	files = append(files, file)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(file), level)
	return zap.New(core).Named(string(category)).Sugar()
}

// CloseAll flushes and closes every open category sink (call at shutdown).
// Later Gets reopen files, so tests can cycle the package.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		_ = l.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	loggers = make(map[Category]*zap.SugaredLogger)
	files = nil
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds the threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
