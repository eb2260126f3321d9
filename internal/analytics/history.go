package analytics

import (
	"sort"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// dayOf truncates a timestamp to calendar-day granularity in UTC.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PriceOnOrBefore returns the close of the latest candle whose date falls on
// or before target, comparing at day granularity. history must be ordered
// ascending by datetime. This is last-known-value interpolation: markets are
// closed on weekends and holidays, so trade dates rarely land exactly on a
// candle.
//
// The second return is false when history is empty or target precedes every
// candle in it.
func PriceOnOrBefore(history []models.Candle, target time.Time) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}

	targetDay := dayOf(target)

	// First index whose candle day is after the target day; the match, if
	// any, is the candle just before it.
	idx := sort.Search(len(history), func(i int) bool {
		return dayOf(history[i].Datetime).After(targetDay)
	})
	if idx == 0 {
		return 0, false
	}
	return history[idx-1].Close, true
}
