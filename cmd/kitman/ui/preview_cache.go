package ui

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// PreviewCache caches styled preview renders so list rows and the edit pane
// do not re-parse markup on every frame. Entries are validated against a
// hash of their inputs, so a row whose body changed reads as a miss.
type PreviewCache struct {
	cache   sync.Map
	count   atomic.Int64
	maxSize int
}

type cacheEntry struct {
	hash    uint64
	content string
	hits    int
}

// NewPreviewCache creates a cache bounded at maxSize entries.
func NewPreviewCache(maxSize int) *PreviewCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &PreviewCache{maxSize: maxSize}
}

// computeHash generates a hash from the given inputs.
func (pc *PreviewCache) computeHash(inputs ...interface{}) uint64 {
	h := fnv.New64a()
	for _, input := range inputs {
		switch v := input.(type) {
		case string:
			h.Write([]byte(v))
		case int:
			h.Write([]byte(fmt.Sprintf("%d", v)))
		case float64:
			h.Write([]byte(fmt.Sprintf("%f", v)))
		case bool:
			h.Write([]byte(fmt.Sprintf("%t", v)))
		default:
			h.Write([]byte(fmt.Sprintf("%v", v)))
		}
	}
	return h.Sum64()
}

// Get retrieves cached content if the inputs haven't changed.
func (pc *PreviewCache) Get(key string, inputs ...interface{}) (string, bool) {
	val, ok := pc.cache.Load(key)
	if !ok {
		return "", false
	}

	entry := val.(cacheEntry)
	currentHash := pc.computeHash(inputs...)

	if entry.hash != currentHash {
		return "", false
	}

	entry.hits++
	pc.cache.Store(key, entry)
	return entry.content, true
}

// Set stores rendered content with a hash of its inputs.
func (pc *PreviewCache) Set(key string, content string, inputs ...interface{}) {
	if _, exists := pc.cache.Load(key); !exists {
		if int(pc.count.Add(1)) > pc.maxSize {
			// Full: drop everything and let live rows repopulate.
			pc.Clear()
			pc.count.Add(1)
		}
	}
	pc.cache.Store(key, cacheEntry{
		hash:    pc.computeHash(inputs...),
		content: content,
	})
}

// GetOrCompute retrieves cached content or computes and caches it.
func (pc *PreviewCache) GetOrCompute(key string, compute func() string, inputs ...interface{}) string {
	if content, ok := pc.Get(key, inputs...); ok {
		return content
	}
	content := compute()
	pc.Set(key, content, inputs...)
	return content
}

// Clear removes all cached entries.
func (pc *PreviewCache) Clear() {
	pc.cache.Range(func(key, _ interface{}) bool {
		pc.cache.Delete(key)
		return true
	})
	pc.count.Store(0)
}

// Size reports how many entries the cache currently holds.
func (pc *PreviewCache) Size() int {
	n := 0
	pc.cache.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// CachedPreview wraps a render function with single-slot caching for the
// edit pane, where consecutive frames usually share one key.
type CachedPreview struct {
	cache      *PreviewCache
	lastKey    string
	lastResult string
}

// NewCachedPreview creates a cached preview renderer.
func NewCachedPreview(cache *PreviewCache) *CachedPreview {
	return &CachedPreview{cache: cache}
}

// Render returns cached content or computes it.
func (cp *CachedPreview) Render(key string, inputs []interface{}, compute func() string) string {
	fullKey := fmt.Sprintf("%s-%d", key, cp.cache.computeHash(inputs...))

	if fullKey == cp.lastKey && cp.lastResult != "" {
		return cp.lastResult
	}

	result := cp.cache.GetOrCompute(fullKey, compute, inputs...)
	cp.lastKey = fullKey
	cp.lastResult = result
	return result
}

// Invalidate clears the fast path so the next Render recomputes.
func (cp *CachedPreview) Invalidate() {
	cp.lastKey = ""
	cp.lastResult = ""
}
