package analytics

import (
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// ComputeAlpha performs a public-market-equivalent comparison: every trade's
// cost basis is notionally invested in the benchmark over the same holding
// window, and the summed actual ending value is compared with the summed
// benchmark ending value.
//
// For an open lot the window runs from its entry date to now and the actual
// ending value is marked to the current price (0 when the price is
// missing); for a closed lot the window ends at its exit date and the
// actual ending value is the realized proceeds. A trade is skipped when
// either endpoint has no benchmark candle or the start price is zero —
// without both endpoints there is no multiplier to apply.
func ComputeAlpha(
	openLots []*models.Lot,
	closedLots []*models.ClosedLot,
	history []models.Candle,
	prices map[string]float64,
	now time.Time,
) models.AlphaStats {
	var stats models.AlphaStats

	type trade struct {
		ticker      string
		amount      float64
		costBasis   float64
		start, end  time.Time
		open        bool
		actualClose float64 // exit price for closed trades
	}

	trades := make([]trade, 0, len(openLots)+len(closedLots))
	for _, lot := range openLots {
		trades = append(trades, trade{
			ticker:    lot.Ticker,
			amount:    lot.Amount,
			costBasis: lot.CostBasis(),
			start:     lot.Date,
			end:       now,
			open:      true,
		})
	}
	for _, lot := range closedLots {
		trades = append(trades, trade{
			ticker:      lot.Ticker,
			amount:      lot.Amount,
			costBasis:   lot.CostBasis(),
			start:       lot.Date,
			end:         lot.ExitDate,
			actualClose: lot.ExitPrice,
		})
	}

	for _, tr := range trades {
		priceStart, okStart := PriceOnOrBefore(history, tr.start)
		priceEnd, okEnd := PriceOnOrBefore(history, tr.end)
		if !okStart || !okEnd || priceStart == 0 {
			continue
		}

		multiplier := priceEnd / priceStart
		benchmarkEndingValue := tr.costBasis * multiplier

		var actualValue float64
		if tr.open {
			actualValue = prices[tr.ticker] * tr.amount
		} else {
			actualValue = tr.actualClose * tr.amount
		}

		stats.TotalActualValue += actualValue
		stats.TotalBenchmarkValue += benchmarkEndingValue
	}

	stats.TotalAlphaDollars = stats.TotalActualValue - stats.TotalBenchmarkValue
	if stats.TotalBenchmarkValue != 0 {
		stats.TotalAlphaPercent = stats.TotalActualValue/stats.TotalBenchmarkValue - 1
	}

	return stats
}
