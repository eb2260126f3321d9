package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omercanyy/investrack/internal/models"
)

func TestSummarize(t *testing.T) {
	positions := []models.AggregatedPosition{
		{CurrentValue: 300, TotalCostBasis: 150, GainLoss: 150},
		{CurrentValue: 100, TotalCostBasis: 120, GainLoss: -20},
	}
	cash := map[string]float64{"brokerage": 500, "ira": 100}

	stats := Summarize(positions, cash)

	assert.Equal(t, 1000.0, stats.TotalValue) // 400 equity + 600 cash
	assert.Equal(t, 270.0, stats.TotalCostBasis)
	assert.Equal(t, 130.0, stats.TotalGainLoss)
	assert.InDelta(t, 130.0/270.0, stats.TotalGainLossPercent, 1e-12)
}

func TestSummarize_ZeroCostBasis(t *testing.T) {
	stats := Summarize(nil, map[string]float64{"a": 100})
	assert.Equal(t, 100.0, stats.TotalValue)
	assert.Equal(t, 0.0, stats.TotalGainLossPercent)
}

func TestWeightedBeta(t *testing.T) {
	positions := []models.AggregatedPosition{
		{Ticker: "AAPL", CurrentValue: 600},
		{Ticker: "SHORTY", CurrentValue: 400},
	}
	betas := map[string]float64{"AAPL": 1.5, "SHORTY": -0.5}

	result := WeightedBeta(positions, betas, 1000)

	// 1.5*0.6 + (-0.5)*0.4 = 0.7; abs: 1.5*0.6 + 0.5*0.4 = 1.1
	assert.InDelta(t, 0.7, result.Weighted, 1e-12)
	assert.InDelta(t, 1.1, result.WeightedAbsolute, 1e-12)
	assert.Equal(t, models.BetaCategoryLow, result.Category)
	assert.Equal(t, models.BetaCategoryLow, result.AbsoluteCategory)
}

func TestWeightedBeta_UnknownDefaultsToMarketAverage(t *testing.T) {
	positions := []models.AggregatedPosition{
		{Ticker: "KNOWN", CurrentValue: 500},
		{Ticker: "MYSTERY", CurrentValue: 500},
	}
	betas := map[string]float64{"KNOWN": 2.0}

	result := WeightedBeta(positions, betas, 1000)

	// Unknown beta weighs in at 1.0, not 0 — zero would understate risk.
	assert.InDelta(t, 1.5, result.Weighted, 1e-12)
}

func TestWeightedBeta_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		positions  []models.AggregatedPosition
		betas      map[string]float64
		totalValue float64
	}{
		{"no positions", nil, map[string]float64{"A": 1}, 100},
		{"no beta data", []models.AggregatedPosition{{Ticker: "A", CurrentValue: 100}}, nil, 100},
		{"zero total value", []models.AggregatedPosition{{Ticker: "A"}}, map[string]float64{"A": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WeightedBeta(tt.positions, tt.betas, tt.totalValue)
			assert.Equal(t, 0.0, result.Weighted)
			assert.Equal(t, 0.0, result.WeightedAbsolute)
			assert.Equal(t, models.BetaCategoryNA, result.Category)
			assert.Equal(t, models.BetaCategoryNA, result.AbsoluteCategory)
		})
	}
}

func TestRealizedGain(t *testing.T) {
	closed := []*models.ClosedLot{
		{Ticker: "AAPL", Amount: 10, FillPrice: 100, ExitPrice: 150},
		{Ticker: "MSFT", Amount: 5, FillPrice: 200, ExitPrice: 180},
	}

	result := RealizedGain(closed)

	// (150-100)*10 + (180-200)*5 = 500 - 100 = 400
	assert.Equal(t, 400.0, result.Gain)
	// cost = 1000 + 1000
	assert.InDelta(t, 0.2, result.GainPercent, 1e-12)
}

func TestRealizedGain_ExactRoundTrip(t *testing.T) {
	lot, err := models.NewClosedLot("AAPL", 10, 100, day(2024, 1, 1), 150, day(2024, 6, 1), "")
	require.NoError(t, err)

	assert.Equal(t, 10*(150.0-100.0), lot.GainLoss())

	result := RealizedGain([]*models.ClosedLot{lot})
	assert.Equal(t, 500.0, result.Gain)
}

func TestRealizedGain_Empty(t *testing.T) {
	result := RealizedGain(nil)
	assert.Equal(t, 0.0, result.Gain)
	assert.Equal(t, 0.0, result.GainPercent)
}
