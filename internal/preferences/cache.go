package preferences

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/jonboulle/clockwork"
)

// Cache is a process-local, non-authoritative memo of the last known preference
// per user. A nil *Cache is valid and caches nothing.
type Cache struct {
	mu    sync.Mutex
	lru   *lru.Cache
	ttl   time.Duration
	clock clockwork.Clock
}

type cacheEntry struct {
	pref     UserPreference
	storedAt time.Time
}

// NewCache creates a cache holding at most capacity users (0 means unbounded).
// Entries older than ttl are treated as missing; a zero ttl keeps them for the
// process lifetime.
func NewCache(capacity int, ttl time.Duration, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		lru:   lru.New(capacity),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns a copy of the cached preference
func (c *Cache) Get(userID int64) (*UserPreference, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(userID)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if c.ttl > 0 && c.clock.Since(entry.storedAt) > c.ttl {
		c.lru.Remove(userID)
		return nil, false
	}

	pref := entry.pref.Clone()
	return &pref, true
}

// Set stores a copy of pref
func (c *Cache) Set(pref *UserPreference) {
	if c == nil || pref == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(pref.UserID, cacheEntry{pref: pref.Clone(), storedAt: c.clock.Now()})
}

// Invalidate forgets userID
func (c *Cache) Invalidate(userID int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Remove(userID)
}

// Len returns the number of cached users, expired ones included
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}
