package interfaces

import (
	"context"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// MarketDataClient fetches market data from the brokerage API.
// Retry/backoff policy and token refresh live behind this contract; the
// analytics layer only ever sees already-resolved maps and series.
type MarketDataClient interface {
	// GetQuotes returns last-trade prices keyed by ticker. Tickers the API
	// does not know are simply absent from the map.
	GetQuotes(ctx context.Context, tickers []string) (map[string]float64, error)

	// GetBetas returns betas keyed by ticker. Absent or zero entries mean
	// the feed has no beta for that ticker.
	GetBetas(ctx context.Context, tickers []string) (map[string]float64, error)

	// GetAvailableCash returns the cash balance per brokerage account.
	GetAvailableCash(ctx context.Context) (map[string]float64, error)

	// GetPriceHistory returns daily candles for ticker from the given start
	// date through today, ascending by date.
	GetPriceHistory(ctx context.Context, ticker string, from time.Time) ([]models.Candle, error)
}

// HistoryCache is the injected cache collaborator for benchmark price
// histories. Implementations own their TTL policy; callers treat a miss
// and an expired entry identically.
type HistoryCache interface {
	Get(key string) ([]models.Candle, bool)
	Set(key string, candles []models.Candle)
}
