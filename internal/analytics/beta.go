// Package analytics is the pure-computation layer of Investrack: it turns
// raw lot records plus a market-data snapshot into aggregated positions,
// portfolio statistics, weighted risk figures, money-weighted returns, and
// benchmark comparisons. Nothing in this package performs I/O except the
// orchestrating Service, and nothing here panics on missing market data —
// absent inputs degrade to documented neutral defaults.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/omercanyy/investrack/internal/models"
)

// ClassifyBeta maps a beta value to its discrete risk band:
//
//	   -1.2     0     1.2    2.5
//	| H  |  M  |  L  |  M  |  H  |
//
// The banding is deliberately asymmetric: strongly negative betas are as
// risky as strongly positive ones, and mildly negative betas are riskier
// than mildly positive ones. A nil beta classifies as UNKNOWN.
func ClassifyBeta(beta *float64) models.BetaCategory {
	if beta == nil {
		return models.BetaCategoryUnknown
	}
	b := *beta
	switch {
	case b <= -1.2 || b >= 2.5:
		return models.BetaCategoryHigh
	case b >= 1.2 || b < 0:
		return models.BetaCategoryMedium
	default: // 0 <= b < 1.2
		return models.BetaCategoryLow
	}
}

// dailyReturns converts a close series into simple day-over-day returns.
func dailyReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev)
	}
	return returns
}

// BetaFromReturns computes a security's beta against a market series as
// cov(asset, market) / var(market) over aligned daily returns. Used as a
// fallback when the market-data feed supplies no beta for a ticker.
// Returns 1.0 (market-average) when there is not enough data or the market
// variance is zero.
func BetaFromReturns(asset, market []models.Candle) float64 {
	assetReturns := dailyReturns(asset)
	marketReturns := dailyReturns(market)

	if len(assetReturns) < 2 || len(marketReturns) < 2 {
		return 1.0
	}

	// Align on the most recent n observations.
	n := len(assetReturns)
	if len(marketReturns) < n {
		n = len(marketReturns)
	}
	assetReturns = assetReturns[len(assetReturns)-n:]
	marketReturns = marketReturns[len(marketReturns)-n:]

	covariance := stat.Covariance(assetReturns, marketReturns, nil)
	variance := stat.Variance(marketReturns, nil)

	if variance == 0 || math.IsNaN(covariance) || math.IsNaN(variance) {
		return 1.0
	}

	return covariance / variance
}
