package session

import (
	"sync"
	"time"

	"github.com/iudanet/geojournal/internal/models"
)

// Cache maps a user ID to its resolved owner summary.
type Cache interface {
	Get(userID string) (models.Owner, bool)
	Set(userID string, owner models.Owner)
	Delete(userID string)
}

type cacheItem struct {
	expiresAt time.Time
	owner     models.Owner
}

// TTLCache is an in-memory Cache whose items expire after a fixed TTL.
type TTLCache struct {
	items map[string]cacheItem
	now   func() time.Time
	ttl   time.Duration
	mu    sync.RWMutex
}

// NewTTLCache creates a cache keeping items for ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a live item.
func (c *TTLCache) Get(userID string) (models.Owner, bool) {
	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()

	if !ok {
		return models.Owner{}, false
	}
	if c.now().After(item.expiresAt) {
		c.Delete(userID)
		return models.Owner{}, false
	}
	return item.owner, true
}

// Set stores owner under userID.
func (c *TTLCache) Set(userID string, owner models.Owner) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[userID] = cacheItem{owner: owner, expiresAt: c.now().Add(c.ttl)}
}

// Delete drops userID from the cache.
func (c *TTLCache) Delete(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, userID)
}

// Purge removes every expired item and returns how many were dropped.
func (c *TTLCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}
