package icache

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Arena is the dense, append-only table of inline caches owned by one
// compiled unit. Generated code refers to a cache by its index.
type Arena struct {
	mu      sync.RWMutex
	caches  []*InlineCache
	lookups atomic.Uint64
}

func NewArena() *Arena {
	return &Arena{}
}

// Register appends c and returns its index. Indexes are never reused.
func (a *Arena) Register(c *InlineCache) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.caches = append(a.caches, c)
	return len(a.caches) - 1
}

// Lookup returns the cache registered under id.
func (a *Arena) Lookup(id int) (*InlineCache, error) {
	a.lookups.Add(1)
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || id >= len(a.caches) {
		return nil, fmt.Errorf("%w: %d (arena has %d)", ErrUnknownCache, id, len(a.caches))
	}
	return a.caches[id], nil
}

// Len returns the number of registered caches.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.caches)
}

// Lookups returns how many times Lookup has been called.
func (a *Arena) Lookups() uint64 {
	return a.lookups.Load()
}

// Caches returns the registered caches in index order.
func (a *Arena) Caches() []*InlineCache {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*InlineCache(nil), a.caches...)
}
