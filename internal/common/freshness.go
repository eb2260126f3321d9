package common

import "time"

// Freshness TTLs for fetched data
const (
	// FreshnessMarketData matches the original 5-minute polling cadence.
	FreshnessMarketData = 5 * time.Minute
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
