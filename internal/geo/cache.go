package geo

import (
	"github.com/patrickmn/go-cache"
)

// Cache memoizes resolved coordinates for the lifetime of the process.
// Entries never expire and are never evicted: a geocoding failure must not
// invalidate a previously cached success, and a stable cache keeps marker
// positions stable across repeated assignments.
//
// Two independent instances exist per process: one keyed by normalized city
// name, one keyed by VenueKey.
type Cache struct {
	store *cache.Cache
}

// NewCache returns an empty coordinate cache.
func NewCache() *Cache {
	return &Cache{store: cache.New(cache.NoExpiration, 0)}
}

// Get returns the cached coordinate for key, if present. The key must already
// be normalized by the caller.
func (c *Cache) Get(key string) (Coordinate, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return Coordinate{}, false
	}
	return v.(Coordinate), true
}

// Put stores coord under key, overwriting any previous entry.
func (c *Cache) Put(key string, coord Coordinate) {
	c.store.Set(key, coord, cache.NoExpiration)
}
