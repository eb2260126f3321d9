package analytics

import (
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// BuildPortfolioCashFlows converts the lot history into the signed, dated
// flow list the XIRR solver consumes:
//
//   - every open lot contributes one outflow (its cost) at its entry date;
//   - every closed lot contributes two flows — the original purchase outflow
//     at its entry date AND the proceeds inflow at its exit date;
//   - if any open value remains, one terminal inflow at now represents the
//     hypothetical liquidation of everything still held.
//
// The closed-lot convention is deliberate: omitting the purchase leg (as
// some earlier renditions of this calculation did) overstates return by
// pretending the sold shares were free.
//
// Flow order is deterministic for a given input: open lots first, then
// closed lots (purchase before proceeds), then the terminal flow. The
// solver does not depend on order.
func BuildPortfolioCashFlows(openLots []*models.Lot, closedLots []*models.ClosedLot, totalCurrentValue float64, now time.Time) []models.CashFlow {
	flows := make([]models.CashFlow, 0, len(openLots)+2*len(closedLots)+1)

	for _, lot := range openLots {
		flows = append(flows, models.CashFlow{Amount: -lot.CostBasis(), Date: lot.Date})
	}

	for _, lot := range closedLots {
		flows = append(flows, models.CashFlow{Amount: -lot.CostBasis(), Date: lot.Date})
		flows = append(flows, models.CashFlow{Amount: lot.Proceeds(), Date: lot.ExitDate})
	}

	if totalCurrentValue > 0 {
		flows = append(flows, models.CashFlow{Amount: totalCurrentValue, Date: now})
	}

	return flows
}

// SimulateBenchmark replays every purchase — open and closed lots alike — as
// if the same dollars had bought the benchmark on the same day, producing a
// flow list directly comparable to the real portfolio's.
//
// Purchases for which the benchmark has no candle on or before the purchase
// date are skipped entirely: they contribute neither shares nor a flow.
// Including the outflow without the shares would charge the simulation for
// money it never got to invest.
func SimulateBenchmark(openLots []*models.Lot, closedLots []*models.ClosedLot, history []models.Candle, benchmarkCurrentPrice float64, now time.Time) []models.CashFlow {
	type purchase struct {
		cost float64
		date time.Time
	}

	purchases := make([]purchase, 0, len(openLots)+len(closedLots))
	for _, lot := range openLots {
		purchases = append(purchases, purchase{cost: lot.CostBasis(), date: lot.Date})
	}
	for _, lot := range closedLots {
		purchases = append(purchases, purchase{cost: lot.CostBasis(), date: lot.Date})
	}

	var totalSharesOwned float64
	flows := make([]models.CashFlow, 0, len(purchases)+1)

	for _, p := range purchases {
		price, ok := PriceOnOrBefore(history, p.date)
		if !ok || price == 0 {
			continue
		}
		totalSharesOwned += p.cost / price
		flows = append(flows, models.CashFlow{Amount: -p.cost, Date: p.date})
	}

	if totalSharesOwned > 0 && benchmarkCurrentPrice > 0 {
		flows = append(flows, models.CashFlow{Amount: totalSharesOwned * benchmarkCurrentPrice, Date: now})
	}

	return flows
}
