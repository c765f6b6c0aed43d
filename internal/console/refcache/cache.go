// Package refcache holds reference entities (roles, levels, organisations)
// for one console session. Entries are never evicted or invalidated.
package refcache

import (
	"sync"

	"hradmin/internal/domain/core"
)

type key struct {
	kind core.ReferenceKind
	id   string
}

// Cache maps (kind, id) to a reference entity. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]core.Reference
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[key]core.Reference)}
}

// Get reports the cached entity for (kind, id), if any.
func (c *Cache) Get(kind core.ReferenceKind, id string) (core.Reference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.entries[key{kind, id}]
	return ref, ok
}

// Put stores ref under (kind, id). Last write wins.
func (c *Cache) Put(kind core.ReferenceKind, id string, ref core.Reference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key{kind, id}] = ref
}

// BulkPut indexes every ref by its own ID.
func (c *Cache) BulkPut(kind core.ReferenceKind, refs []core.Reference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range refs {
		c.entries[key{kind, ref.ID}] = ref
	}
}

// Len is the number of cached entities across all kinds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
