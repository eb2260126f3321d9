// Package cache provides in-memory caches for fetched market data.
package cache

import (
	"sync"
	"time"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/models"
)

// historyEntry pairs cached candles with their fetch time.
type historyEntry struct {
	candles   []models.Candle
	fetchedAt time.Time
}

// HistoryCache is an in-memory TTL cache for benchmark price history.
// History is immutable day-granularity data, so a coarse TTL keyed by
// ticker+start-date is all the invalidation it needs.
type HistoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]historyEntry
	now     func() time.Time
}

// NewHistoryCache creates a HistoryCache with the given TTL.
func NewHistoryCache(ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		ttl:     ttl,
		entries: make(map[string]historyEntry),
		now:     time.Now,
	}
}

// Get returns the cached candles for key if present and still fresh.
func (c *HistoryCache) Get(key string) ([]models.Candle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !common.IsFresh(entry.fetchedAt, c.ttl) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.candles, true
}

// Set stores candles for key, replacing any existing entry.
func (c *HistoryCache) Set(key string, candles []models.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = historyEntry{candles: candles, fetchedAt: c.now()}
}
