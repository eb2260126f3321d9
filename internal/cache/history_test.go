package cache

import (
	"testing"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

func TestHistoryCacheHitAndMiss(t *testing.T) {
	c := NewHistoryCache(time.Hour)

	if _, ok := c.Get("SPY|2024-01-01"); ok {
		t.Error("expected miss on empty cache")
	}

	candles := []models.Candle{{Datetime: time.Now(), Close: 500}}
	c.Set("SPY|2024-01-01", candles)

	got, ok := c.Get("SPY|2024-01-01")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 1 || got[0].Close != 500 {
		t.Errorf("got %+v", got)
	}

	// Distinct start dates are distinct entries
	if _, ok := c.Get("SPY|2023-01-01"); ok {
		t.Error("expected miss for different key")
	}
}

func TestHistoryCacheExpiry(t *testing.T) {
	c := NewHistoryCache(time.Hour)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("GLD|2024-01-01", []models.Candle{{Close: 180}})

	if _, ok := c.Get("GLD|2024-01-01"); !ok {
		t.Fatal("expected hit before expiry")
	}

	// Entry written more than a TTL ago is evicted on read
	c.mu.Lock()
	entry := c.entries["GLD|2024-01-01"]
	entry.fetchedAt = current.Add(-2 * time.Hour)
	c.entries["GLD|2024-01-01"] = entry
	c.mu.Unlock()

	if _, ok := c.Get("GLD|2024-01-01"); ok {
		t.Error("expected miss after expiry")
	}
	c.mu.Lock()
	_, present := c.entries["GLD|2024-01-01"]
	c.mu.Unlock()
	if present {
		t.Error("expired entry should be evicted")
	}
}
