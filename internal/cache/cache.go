/*
Package cache provides the TTL-bounded result cache for the search engine.

The cache memoizes final ranked result lists per (normalized query,
category filter) key so repeated queries skip the scoring pipeline. LRU
eviction bounds memory; an expired entry is treated as a miss and lazily
overwritten by the next write-through rather than eagerly purged.
*/
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ResultCache is a thread-safe LRU cache with per-entry TTL. Values are
// opaque to the cache; callers type-assert on read and treat a failed
// assertion as corruption, which is indistinguishable from a miss.
type ResultCache struct {
	mu sync.Mutex

	maxSize int
	ttl     time.Duration

	list  *list.List
	items map[uint64]*list.Element

	// now is injectable for expiry tests.
	now func() time.Time

	hits   uint64
	misses uint64
}

type entry struct {
	key        uint64
	value      any
	computedAt time.Time
}

// New creates a cache holding up to maxSize entries for ttl each.
// A ttl of zero disables expiration (only LRU eviction applies).
func New(maxSize int, ttl time.Duration) *ResultCache {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &ResultCache{
		maxSize: maxSize,
		ttl:     ttl,
		list:    list.New(),
		items:   make(map[uint64]*list.Element, maxSize),
		now:     time.Now,
	}
}

// Key hashes the normalized query text and category filter into a
// deterministic cache key. Callers must pass already case-folded,
// whitespace-collapsed text so equivalent queries share an entry.
func Key(normalizedQuery, category string) uint64 {
	h := xxhash.New()
	h.WriteString(normalizedQuery)
	h.Write([]byte{0})
	h.WriteString(category)
	return h.Sum64()
}

// Get returns the cached value for key, or (nil, false) on miss or
// expiry. A hit refreshes the entry's LRU position but not its TTL.
func (c *ResultCache) Get(key uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.ttl > 0 && c.now().After(ent.computedAt.Add(c.ttl)) {
		// Expired entries count as misses; the next Set overwrites
		// them in place.
		c.misses++
		return nil, false
	}

	c.list.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

// Set stores value under key, overwriting any previous entry and evicting
// the least-recently-used entry when the cache is full. Overwriting with
// an equivalent or newer value is always safe (idempotent write-through).
func (c *ResultCache) Set(key uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.computedAt = c.now()
		c.list.MoveToFront(elem)
		return
	}

	elem := c.list.PushFront(&entry{key: key, value: value, computedAt: c.now()})
	c.items[key] = elem

	for c.list.Len() > c.maxSize {
		oldest := c.list.Back()
		if oldest == nil {
			break
		}
		c.list.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Stats returns cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// SetClock replaces the cache's time source. Test hook.
func (c *ResultCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
