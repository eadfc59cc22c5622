// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes computed values by key for the lifetime of the cache.
// Entries are never invalidated.
//
// First access to a key is serialized: concurrent callers share the single
// computation and all observe the same stored value.
type Cache struct {
	mu     sync.RWMutex
	values map[string]any
	group  singleflight.Group
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{values: make(map[string]any)}
}

// Load returns the value stored under key, if any.
func (c *Cache) Load(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the populated keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Memo returns the value cached under key, computing and storing it on first use.
//
// INVARIANT: compute MUST NOT call Memo with the same key (it would wait on itself)
// and MUST NOT panic.
func Memo[T any](c *Cache, key string, compute func() T) T {
	if v, ok := c.Load(key); ok {
		return v.(T)
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// A caller that lost the race may arrive after the winner stored the value.
		if v, ok := c.Load(key); ok {
			return v, nil
		}
		v := compute()
		c.mu.Lock()
		c.values[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return v.(T)
}
