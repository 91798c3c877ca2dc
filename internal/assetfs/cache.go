package assetfs

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of directory listings a store keeps.
const DefaultCacheSize = 4096

// Entry is one directory entry.
type Entry struct {
	Name string
	Dir  bool
}

// Cache holds directory listings keyed by absolute directory path.
// It is safe for concurrent use.
type Cache struct {
	listings *lru.Cache[string, []Entry]

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding at most size listings.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	listings, err := lru.New[string, []Entry](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Cache{listings: listings}
}

// Get retrieves a listing.
func (c *Cache) Get(dir string) ([]Entry, bool) {
	entries, ok := c.listings.Get(dir)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return entries, ok
}

// Set stores a listing.
func (c *Cache) Set(dir string, entries []Entry) {
	c.listings.Add(dir, entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
