package corpus

import "sync"

// Key invalidates cached scan results when either the package or the version
// under migration changes.
type Key struct {
	Package string
	Version string
}

// Cache memoizes corpus scan results across plan runs in one process. It is
// an explicit value passed by reference; there is no process-wide singleton.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*Stats
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*Stats)}
}

// Get returns the cached stats for the key, if present.
func (c *Cache) Get(k Key) (*Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[k]
	return s, ok
}

// Put stores scan results under the key.
func (c *Cache) Put(k Key, s *Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = s
}

// Invalidate drops the entry for the key.
func (c *Cache) Invalidate(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, k)
}
