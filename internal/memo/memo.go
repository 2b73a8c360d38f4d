// Package memo caches computed scenes keyed by the view state that
// produced them. The cache is explicit: the compute layer consults it
// before running the engines and stores results after, and a version
// bump on the event store invalidates everything derived from older
// data.
package memo

import (
	"sync"

	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Key identifies one memoized scene. Two identical keys always map to
// identical scenes since the engines are pure.
type Key struct {
	EventsVersion uint64
	Tier          tier.Tier
	Viewport      core.Size
	Orientation   core.Orientation
	Mode          core.DisplayMode
}

// Cache is a bounded scene memo, safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	entries    map[Key]core.Scene
	maxEntries int

	hits   int
	misses int
}

// DefaultMaxEntries bounds the cache; a handful of view states per
// events version is all the UI ever flips between.
const DefaultMaxEntries = 64

// NewCache creates a cache holding at most maxEntries scenes.
// maxEntries <= 0 selects DefaultMaxEntries.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[Key]core.Scene),
		maxEntries: maxEntries,
	}
}

// Get returns the memoized scene for the key, if present.
func (c *Cache) Get(key Key) (core.Scene, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return s, ok
}

// Put stores a scene. When the cache is full, entries computed from
// the oldest events version are evicted first: they are the least
// likely to be asked for again.
func (c *Cache) Put(key Key, scene core.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = scene
}

// evictOldestLocked drops every entry belonging to the lowest events
// version present. Callers hold c.mu.
func (c *Cache) evictOldestLocked() {
	first := true
	var oldest uint64
	for k := range c.entries {
		if first || k.EventsVersion < oldest {
			oldest = k.EventsVersion
			first = false
		}
	}
	if first {
		return
	}
	for k := range c.entries {
		if k.EventsVersion == oldest {
			delete(c.entries, k)
		}
	}
}

// InvalidateBefore removes all entries computed from an events version
// older than the given one.
func (c *Cache) InvalidateBefore(version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.EventsVersion < version {
			delete(c.entries, k)
		}
	}
}

// Reset empties the cache and its counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]core.Scene)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached scenes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts since the last Reset.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
