package analytics

import (
	"math"

	"github.com/omercanyy/investrack/internal/models"
)

// Summarize reduces aggregated positions into portfolio-wide totals.
// Available cash is counted in total value but not in cost basis, so the
// gain/loss percentage measures only what was actually invested.
func Summarize(positions []models.AggregatedPosition, cashByAccount map[string]float64) models.PortfolioStatistics {
	var stats models.PortfolioStatistics
	for _, pos := range positions {
		stats.TotalValue += pos.CurrentValue
		stats.TotalCostBasis += pos.TotalCostBasis
		stats.TotalGainLoss += pos.GainLoss
	}
	for _, cash := range cashByAccount {
		stats.TotalValue += cash
	}
	if stats.TotalCostBasis != 0 {
		stats.TotalGainLossPercent = stats.TotalGainLoss / stats.TotalCostBasis
	}
	return stats
}

// WeightedBeta computes the portfolio beta weighted by each position's share
// of total value, alongside the same weighting over absolute betas (so
// offsetting long/short exposure still registers as risk).
//
// A position without a known beta weighs in at 1.0 — market-average —
// rather than 0, which would understate risk. When there are no positions,
// no beta data at all, or total value is zero, both figures are 0 and the
// categories are the "N/A" sentinel.
func WeightedBeta(positions []models.AggregatedPosition, betas map[string]float64, totalValue float64) models.WeightedBetaResult {
	if len(positions) == 0 || len(betas) == 0 || totalValue == 0 {
		return models.WeightedBetaResult{
			Category:         models.BetaCategoryNA,
			AbsoluteCategory: models.BetaCategoryNA,
		}
	}

	var weighted, weightedAbs float64
	for _, pos := range positions {
		beta := 1.0
		if b, ok := betas[pos.Ticker]; ok && b != 0 {
			beta = b
		}
		weight := pos.CurrentValue / totalValue
		weighted += beta * weight
		weightedAbs += math.Abs(beta) * weight
	}

	return models.WeightedBetaResult{
		Weighted:         weighted,
		WeightedAbsolute: weightedAbs,
		Category:         ClassifyBeta(&weighted),
		AbsoluteCategory: ClassifyBeta(&weightedAbs),
	}
}

// RealizedGain sums profit and loss across all closed lots. The percentage
// is gain over the closed lots' original cost, 0 when nothing was closed.
func RealizedGain(closedLots []*models.ClosedLot) models.RealizedGainResult {
	var result models.RealizedGainResult
	var totalCost float64
	for _, lot := range closedLots {
		result.Gain += lot.GainLoss()
		totalCost += lot.CostBasis()
	}
	if totalCost != 0 {
		result.GainPercent = result.Gain / totalCost
	}
	return result
}
