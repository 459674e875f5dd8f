package markup

import "sync"

// DefaultCacheSize bounds the parse cache. List pages re-render the same
// few dozen announcements on every keystroke, so a small cache absorbs
// nearly all repeat work.
const DefaultCacheSize = 256

// Cache memoizes Preprocess+Parse keyed by the exact raw string. Parsing is
// referentially transparent, so memoization can never change a result; the
// cache only trims repeated work when the UI re-renders unchanged rows.
//
// Keys are the raw strings themselves rather than hashes, so a lookup can
// never return the tree for a different input. Returned trees are shared
// across callers and must be treated as read-only.
type Cache struct {
	mu       sync.Mutex
	entries  map[string][]Node
	maxSize  int
	maxDepth int
	hits     uint64
	misses   uint64
}

// NewCache creates a parse cache holding at most maxSize entries, parsing
// with the given nesting limit. Non-positive arguments select the defaults.
func NewCache(maxSize, maxDepth int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Cache{
		entries:  make(map[string][]Node),
		maxSize:  maxSize,
		maxDepth: maxDepth,
	}
}

// Get returns the parsed tree for raw announcement text, computing and
// caching it on first sight. When the cache is full it is reset wholesale;
// a full reset is cheaper than eviction bookkeeping at these sizes.
func (c *Cache) Get(raw string) []Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nodes, ok := c.entries[raw]; ok {
		c.hits++
		return nodes
	}
	c.misses++

	nodes := ParseWithLimit(Preprocess(raw), c.maxDepth)
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string][]Node)
	}
	c.entries[raw] = nodes
	return nodes
}

// Stats reports cumulative hits and misses plus the current entry count.
func (c *Cache) Stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Reset discards all cached trees and counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Node)
	c.hits = 0
	c.misses = 0
}
