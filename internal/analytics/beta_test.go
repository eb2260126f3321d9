package analytics

import (
	"testing"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

func betaOf(v float64) *float64 {
	return &v
}

func TestClassifyBeta_Bands(t *testing.T) {
	tests := []struct {
		name string
		beta *float64
		want models.BetaCategory
	}{
		{"nil beta", nil, models.BetaCategoryUnknown},
		{"deeply negative", betaOf(-1.3), models.BetaCategoryHigh},
		{"lower high boundary", betaOf(-1.2), models.BetaCategoryHigh},
		{"mildly negative", betaOf(-0.5), models.BetaCategoryMedium},
		{"just below zero", betaOf(-0.01), models.BetaCategoryMedium},
		{"zero", betaOf(0), models.BetaCategoryLow},
		{"market-like", betaOf(0.5), models.BetaCategoryLow},
		{"just under 1.2", betaOf(1.19), models.BetaCategoryLow},
		{"elevated", betaOf(1.2), models.BetaCategoryMedium},
		{"high-ish", betaOf(1.3), models.BetaCategoryMedium},
		{"just under 2.5", betaOf(2.49), models.BetaCategoryMedium},
		{"upper high boundary", betaOf(2.5), models.BetaCategoryHigh},
		{"very high", betaOf(3.0), models.BetaCategoryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBeta(tt.beta); got != tt.want {
				t.Errorf("ClassifyBeta(%v) = %s, want %s", tt.beta, got, tt.want)
			}
		})
	}
}

func candleSeries(closes ...float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{Datetime: base.AddDate(0, 0, i), Close: c}
	}
	return candles
}

func TestBetaFromReturns_DoubledMoves(t *testing.T) {
	// Asset moves exactly 2x the market each day — beta should be 2.
	market := candleSeries(100, 101, 100, 102, 101, 103)
	asset := make([]models.Candle, len(market))
	assetPrice := 100.0
	asset[0] = models.Candle{Datetime: market[0].Datetime, Close: assetPrice}
	for i := 1; i < len(market); i++ {
		marketReturn := (market[i].Close - market[i-1].Close) / market[i-1].Close
		assetPrice *= 1 + 2*marketReturn
		asset[i] = models.Candle{Datetime: market[i].Datetime, Close: assetPrice}
	}

	beta := BetaFromReturns(asset, market)
	if beta < 1.99 || beta > 2.01 {
		t.Errorf("BetaFromReturns = %v, want ~2.0", beta)
	}
}

func TestBetaFromReturns_InsufficientData(t *testing.T) {
	if beta := BetaFromReturns(candleSeries(100, 101), candleSeries(100, 101)); beta != 1.0 {
		t.Errorf("BetaFromReturns with one return = %v, want 1.0", beta)
	}
	if beta := BetaFromReturns(nil, candleSeries(100, 101, 102)); beta != 1.0 {
		t.Errorf("BetaFromReturns with empty asset = %v, want 1.0", beta)
	}
}

func TestBetaFromReturns_FlatMarket(t *testing.T) {
	// Zero market variance — beta is undefined, defaults to 1.0.
	market := candleSeries(100, 100, 100, 100)
	asset := candleSeries(100, 105, 95, 110)
	if beta := BetaFromReturns(asset, market); beta != 1.0 {
		t.Errorf("BetaFromReturns with flat market = %v, want 1.0", beta)
	}
}
