package persist

import (
	"sync"
	"weak"

	"golang.org/x/sync/singleflight"
)

// Default is the process-wide entity cache.
var Default = NewCache()

// Cache maps persistent paths to live entities. Entries hold weak references, so an entity
// nobody uses anymore is dropped by the garbage collector.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any

	// loadMu serializes load sessions so that a graph of entities is decoded and published
	// as a whole.
	loadMu sync.Mutex
	loads  singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]any),
	}
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// Len returns the number of entries, including entries whose entity was already collected.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func lookup[E any](c *Cache, path string) *E {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, ok := c.entries[path]
	if !ok {
		return nil
	}
	wp, ok := ref.(weak.Pointer[E])
	if !ok {
		return nil
	}
	e := wp.Value()
	if e == nil {
		delete(c.entries, path)
	}
	return e
}

func store[E any](c *Cache, path string, e *E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = weak.Make(e)
}
