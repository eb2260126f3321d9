package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omercanyy/investrack/internal/models"
)

func TestComputeAlpha_OpenTrade(t *testing.T) {
	history := []models.Candle{
		{Datetime: day(2023, 1, 3), Close: 400},
		{Datetime: day(2024, 1, 2), Close: 480},
	}
	open := []*models.Lot{mustLot(t, "AAPL", 10, 100, day(2023, 1, 4), "")}
	prices := map[string]float64{"AAPL": 150}
	now := day(2024, 1, 5)

	stats := ComputeAlpha(open, nil, history, prices, now)

	// Benchmark: $1000 × 480/400 = $1200. Actual: 10 × $150 = $1500.
	assert.InDelta(t, 1500.0, stats.TotalActualValue, 1e-9)
	assert.InDelta(t, 1200.0, stats.TotalBenchmarkValue, 1e-9)
	assert.InDelta(t, 300.0, stats.TotalAlphaDollars, 1e-9)
	assert.InDelta(t, 0.25, stats.TotalAlphaPercent, 1e-12)
}

func TestComputeAlpha_ClosedTradeUsesExit(t *testing.T) {
	history := []models.Candle{
		{Datetime: day(2023, 1, 3), Close: 400},
		{Datetime: day(2023, 7, 3), Close: 420},
		{Datetime: day(2024, 1, 2), Close: 480},
	}
	closed, err := models.NewClosedLot("MSFT", 5, 200, day(2023, 1, 4), 260, day(2023, 7, 5), "")
	require.NoError(t, err)

	// Current prices must not matter for a closed trade.
	stats := ComputeAlpha(nil, []*models.ClosedLot{closed}, history, map[string]float64{"MSFT": 999}, day(2024, 1, 5))

	// Benchmark: $1000 × 420/400 = $1050. Actual: 5 × $260 = $1300.
	assert.InDelta(t, 1300.0, stats.TotalActualValue, 1e-9)
	assert.InDelta(t, 1050.0, stats.TotalBenchmarkValue, 1e-9)
}

func TestComputeAlpha_SkipsTradesOutsideHistory(t *testing.T) {
	history := []models.Candle{{Datetime: day(2023, 6, 1), Close: 400}}
	open := []*models.Lot{
		mustLot(t, "OLD", 10, 100, day(2022, 1, 1), ""), // no start candle
		mustLot(t, "NEW", 10, 100, day(2023, 7, 1), ""),
	}
	prices := map[string]float64{"OLD": 500, "NEW": 120}

	stats := ComputeAlpha(open, nil, history, prices, day(2024, 1, 1))

	// Only NEW is eligible: benchmark 1000×400/400, actual 10×120.
	assert.InDelta(t, 1200.0, stats.TotalActualValue, 1e-9)
	assert.InDelta(t, 1000.0, stats.TotalBenchmarkValue, 1e-9)
}

func TestComputeAlpha_ZeroBenchmarkValue(t *testing.T) {
	stats := ComputeAlpha(nil, nil, nil, nil, day(2024, 1, 1))

	assert.Equal(t, 0.0, stats.TotalBenchmarkValue)
	assert.Equal(t, 0.0, stats.TotalAlphaPercent, "percent must be 0, not NaN/Inf, when benchmark sum is 0")
}

func TestComputeAlpha_MissingCurrentPrice(t *testing.T) {
	history := []models.Candle{
		{Datetime: day(2023, 1, 3), Close: 400},
		{Datetime: day(2024, 1, 2), Close: 480},
	}
	open := []*models.Lot{mustLot(t, "XYZ", 10, 100, day(2023, 1, 4), "")}

	// The trade stays eligible; its actual value marks to zero.
	stats := ComputeAlpha(open, nil, history, map[string]float64{}, day(2024, 1, 5))

	assert.Equal(t, 0.0, stats.TotalActualValue)
	assert.InDelta(t, 1200.0, stats.TotalBenchmarkValue, 1e-9)
	assert.InDelta(t, -1.0, stats.TotalAlphaPercent, 1e-12)
}
