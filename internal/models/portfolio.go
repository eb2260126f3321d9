package models

import "time"

// BetaCategory is the discrete risk band assigned to a beta value.
type BetaCategory string

const (
	BetaCategoryLow     BetaCategory = "LOW"
	BetaCategoryMedium  BetaCategory = "MEDIUM"
	BetaCategoryHigh    BetaCategory = "HIGH"
	BetaCategoryUnknown BetaCategory = "UNKNOWN"

	// BetaCategoryNA is the portfolio-level sentinel used when a weighted
	// beta cannot be computed at all (no positions, no beta data, or zero
	// total value). Distinct from UNKNOWN, which is a per-position band.
	BetaCategoryNA BetaCategory = "N/A"
)

// AggregatedPosition combines all open lots of one ticker into summary
// metrics. Recomputed from scratch on every read — never patched
// incrementally — so the invariants below hold by construction.
type AggregatedPosition struct {
	Ticker               string       `json:"ticker"`
	Lots                 []*Lot       `json:"lots"`
	TotalAmount          float64      `json:"total_amount"`
	TotalCostBasis       float64      `json:"total_cost_basis"`
	CurrentValue         float64      `json:"current_value"`
	GainLoss             float64      `json:"gain_loss"`
	GainLossPercent      float64      `json:"gain_loss_percent"`
	WeightedAvgFillPrice float64      `json:"weighted_avg_fill_price"`
	Beta                 *float64     `json:"beta"`
	BetaCategory         BetaCategory `json:"beta_category"`
	OldestEntryDate      time.Time    `json:"oldest_entry_date"`
	Accounts             []string     `json:"accounts"`
	Strategy             string       `json:"strategy,omitempty"`
	Industry             string       `json:"industry,omitempty"`
}

// PortfolioStatistics sums aggregated positions into portfolio-wide totals.
// TotalValue includes available cash; cost basis and gain/loss do not.
type PortfolioStatistics struct {
	TotalValue           float64 `json:"total_value"`
	TotalCostBasis       float64 `json:"total_cost_basis"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
}

// WeightedBetaResult holds portfolio-level beta figures weighted by each
// position's share of total value.
type WeightedBetaResult struct {
	Weighted         float64      `json:"weighted"`
	WeightedAbsolute float64      `json:"weighted_absolute"`
	Category         BetaCategory `json:"category"`
	AbsoluteCategory BetaCategory `json:"absolute_category"`
}

// CashFlow is a single signed, dated flow for the XIRR solver.
// Negative = money deployed, positive = money returned.
type CashFlow struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// XIRRValues is the annualized money-weighted return triple: the actual
// portfolio versus the two benchmark replays. Rates are decimals (0.2 = 20%).
type XIRRValues struct {
	Portfolio float64 `json:"portfolio"`
	SPY       float64 `json:"spy"`
	GLD       float64 `json:"gld"`
}

// AlphaStats compares the actual ending value of all matched trades against
// a benchmark-scaled ending value using identical cash-flow timing (PME).
type AlphaStats struct {
	TotalActualValue    float64 `json:"total_actual_value"`
	TotalBenchmarkValue float64 `json:"total_benchmark_value"`
	TotalAlphaDollars   float64 `json:"total_alpha_dollars"`
	TotalAlphaPercent   float64 `json:"total_alpha_percent"`
}

// RealizedGainResult sums realized profit across all closed lots.
type RealizedGainResult struct {
	Gain        float64 `json:"gain"`
	GainPercent float64 `json:"gain_percent"`
}

// Allocation is a one-dimensional rollup of aggregated positions by
// account, strategy, or industry.
type Allocation struct {
	Name           string   `json:"name"`
	Tickers        []string `json:"tickers"`
	CurrentValue   float64  `json:"current_value"`
	TotalCostBasis float64  `json:"total_cost_basis"`
	GainLoss       float64  `json:"gain_loss"`
	WeightPercent  float64  `json:"weight_percent"`
}

// BetaBucket holds the current value held in one risk band.
type BetaBucket struct {
	Category BetaCategory `json:"category"`
	Value    float64      `json:"value"`
}

// PortfolioSnapshot is the full derived view of the portfolio: every figure
// the dashboard needs, recomputed from lots plus a market-data snapshot.
// Pure projection — never persisted.
type PortfolioSnapshot struct {
	ComputedAt       time.Time            `json:"computed_at"`
	Positions        []AggregatedPosition `json:"positions"`
	Statistics       PortfolioStatistics  `json:"statistics"`
	WeightedBeta     WeightedBetaResult   `json:"weighted_beta"`
	BetaDistribution []BetaBucket         `json:"beta_distribution"`
	RealizedGain     RealizedGainResult   `json:"realized_gain"`
	XIRR             XIRRValues           `json:"xirr"`
	Alpha            AlphaStats           `json:"alpha"`
	AvailableCash    map[string]float64   `json:"available_cash"`
}
