package analytics

import (
	"sort"

	"github.com/omercanyy/investrack/internal/models"
)

// AggregateLots groups open lots by ticker and derives per-position summary
// metrics. Input order is irrelevant; output is sorted by ticker ascending
// and each position's lots by date ascending, so identical inputs always
// produce identical output.
//
// Missing market data never fails the aggregation: an absent price values
// the position at zero, and an absent (or zero) beta classifies as UNKNOWN.
// A partial market-data outage must not blank out the whole portfolio view.
func AggregateLots(
	lots []*models.Lot,
	prices map[string]float64,
	betas map[string]float64,
	labels map[string]models.TickerLabel,
) []models.AggregatedPosition {
	groups := make(map[string]*models.AggregatedPosition)
	order := make([]string, 0)

	for _, lot := range lots {
		pos, ok := groups[lot.Ticker]
		if !ok {
			pos = &models.AggregatedPosition{
				Ticker:          lot.Ticker,
				OldestEntryDate: lot.Date,
			}
			if label, ok := labels[lot.Ticker]; ok {
				pos.Strategy = label.Strategy
				pos.Industry = label.Industry
			}
			groups[lot.Ticker] = pos
			order = append(order, lot.Ticker)
		}

		pos.Lots = append(pos.Lots, lot)
		pos.TotalAmount += lot.Amount
		pos.TotalCostBasis += lot.Amount * lot.FillPrice
		if lot.Date.Before(pos.OldestEntryDate) {
			pos.OldestEntryDate = lot.Date
		}
		if lot.Account != "" && !containsString(pos.Accounts, lot.Account) {
			pos.Accounts = append(pos.Accounts, lot.Account)
		}
	}

	positions := make([]models.AggregatedPosition, 0, len(groups))
	for _, ticker := range order {
		pos := groups[ticker]

		currentPrice := prices[ticker] // zero when absent
		pos.CurrentValue = pos.TotalAmount * currentPrice
		pos.GainLoss = pos.CurrentValue - pos.TotalCostBasis
		if pos.TotalCostBasis == 0 {
			pos.GainLossPercent = 0
		} else {
			pos.GainLossPercent = pos.GainLoss / pos.TotalCostBasis
		}
		if pos.TotalAmount == 0 {
			pos.WeightedAvgFillPrice = 0
		} else {
			pos.WeightedAvgFillPrice = pos.TotalCostBasis / pos.TotalAmount
		}

		// A zero beta from the feed means "no data", not "riskless".
		if b, ok := betas[ticker]; ok && b != 0 {
			beta := b
			pos.Beta = &beta
		}
		pos.BetaCategory = ClassifyBeta(pos.Beta)

		sort.Slice(pos.Lots, func(i, j int) bool {
			return pos.Lots[i].Date.Before(pos.Lots[j].Date)
		})

		positions = append(positions, *pos)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})

	return positions
}

// BetaDistribution buckets position value by risk band. Positions with an
// UNKNOWN beta are excluded. Buckets are returned in LOW, MEDIUM, HIGH order.
func BetaDistribution(positions []models.AggregatedPosition) []models.BetaBucket {
	buckets := map[models.BetaCategory]float64{}
	for _, pos := range positions {
		switch pos.BetaCategory {
		case models.BetaCategoryLow, models.BetaCategoryMedium, models.BetaCategoryHigh:
			buckets[pos.BetaCategory] += pos.CurrentValue
		}
	}
	return []models.BetaBucket{
		{Category: models.BetaCategoryLow, Value: buckets[models.BetaCategoryLow]},
		{Category: models.BetaCategoryMedium, Value: buckets[models.BetaCategoryMedium]},
		{Category: models.BetaCategoryHigh, Value: buckets[models.BetaCategoryHigh]},
	}
}

// unassignedBucket collects positions with no label for a dimension.
const unassignedBucket = "Unassigned"

// AllocationsByStrategy rolls up position value by strategy label. Cash is
// reported as its own bucket when non-zero.
func AllocationsByStrategy(positions []models.AggregatedPosition, totalCash float64) []models.Allocation {
	return allocationsByLabel(positions, totalCash, func(pos models.AggregatedPosition) string {
		return pos.Strategy
	})
}

// AllocationsByIndustry rolls up position value by industry label. Cash is
// reported as its own bucket when non-zero.
func AllocationsByIndustry(positions []models.AggregatedPosition, totalCash float64) []models.Allocation {
	return allocationsByLabel(positions, totalCash, func(pos models.AggregatedPosition) string {
		return pos.Industry
	})
}

func allocationsByLabel(positions []models.AggregatedPosition, totalCash float64, key func(models.AggregatedPosition) string) []models.Allocation {
	groups := make(map[string]*models.Allocation)
	names := make([]string, 0)

	add := func(name string) *models.Allocation {
		a, ok := groups[name]
		if !ok {
			a = &models.Allocation{Name: name}
			groups[name] = a
			names = append(names, name)
		}
		return a
	}

	total := totalCash
	for i := range positions {
		pos := &positions[i]
		name := key(*pos)
		if name == "" {
			name = unassignedBucket
		}
		a := add(name)
		a.Tickers = append(a.Tickers, pos.Ticker)
		a.CurrentValue += pos.CurrentValue
		a.TotalCostBasis += pos.TotalCostBasis
		a.GainLoss += pos.GainLoss
		total += pos.CurrentValue
	}

	if totalCash != 0 {
		groups["Cash"] = &models.Allocation{Name: "Cash", CurrentValue: totalCash}
		names = append(names, "Cash")
	}

	sort.Strings(names)
	allocations := make([]models.Allocation, 0, len(names))
	for _, name := range names {
		a := groups[name]
		if total != 0 {
			a.WeightPercent = a.CurrentValue / total * 100
		}
		allocations = append(allocations, *a)
	}
	return allocations
}

// AllocationsByAccount rolls up value by brokerage account. Unlike the
// label rollups this works at lot granularity, since a single ticker's lots
// can sit in different accounts. Each account's cash balance is added to
// its bucket; accounts holding only cash still appear.
func AllocationsByAccount(lots []*models.Lot, prices map[string]float64, cashByAccount map[string]float64) []models.Allocation {
	groups := make(map[string]*models.Allocation)
	names := make([]string, 0)

	add := func(name string) *models.Allocation {
		a, ok := groups[name]
		if !ok {
			a = &models.Allocation{Name: name}
			groups[name] = a
			names = append(names, name)
		}
		return a
	}

	for _, lot := range lots {
		name := lot.Account
		if name == "" {
			name = unassignedBucket
		}
		a := add(name)
		value := lot.Amount * prices[lot.Ticker]
		a.CurrentValue += value
		a.TotalCostBasis += lot.Amount * lot.FillPrice
		a.GainLoss += value - lot.Amount*lot.FillPrice
		if !containsString(a.Tickers, lot.Ticker) {
			a.Tickers = append(a.Tickers, lot.Ticker)
		}
	}

	for account, cash := range cashByAccount {
		add(account).CurrentValue += cash
	}

	total := 0.0
	for _, a := range groups {
		total += a.CurrentValue
	}

	sort.Strings(names)
	allocations := make([]models.Allocation, 0, len(names))
	for _, name := range names {
		a := groups[name]
		if total != 0 {
			a.WeightPercent = a.CurrentValue / total * 100
		}
		sort.Strings(a.Tickers)
		allocations = append(allocations, *a)
	}
	return allocations
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
