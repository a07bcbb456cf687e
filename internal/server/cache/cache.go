// Package cache keeps built matrices and aggregations between requests.
// It uses patrickmn/go-cache for TTL-based expiry.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Keys of the values the server caches.
const (
	KeyMatrix = "matrix"
	KeyTests  = "tests"
)

// Cache wraps go-cache and collapses concurrent loads of the same key.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
}

// New creates a new cache with the given TTL and cleanup interval.
// defaultTTL is the default expiration time for cache entries.
// cleanupInterval is how often expired items are removed from memory.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value in the cache with default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Remember returns the cached value of key, or runs load once for all
// concurrent callers and caches its result. Errors are not cached.
func (c *Cache) Remember(key string, load func() (any, error)) (value any, cached bool, err error) {
	if v, ok := c.store.Get(key); ok {
		return v, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.store.Set(key, v, gocache.DefaultExpiration)
		return v, nil
	})
	return v, false, err
}

// Delete removes a value from the cache.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int      `json:"item_count"`
	Keys      []string `json:"keys"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	items := c.store.Items()
	keys := make([]string, 0, len(items))
	for _, k := range []string{KeyMatrix, KeyTests} {
		if _, ok := items[k]; ok {
			keys = append(keys, k)
		}
	}
	return Stats{ItemCount: len(items), Keys: keys}
}
