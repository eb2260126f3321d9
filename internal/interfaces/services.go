package interfaces

import (
	"context"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// LotService manages the lot lifecycle: entry, edit, and close-out.
type LotService interface {
	AddLot(ctx context.Context, ticker string, amount, fillPrice float64, date time.Time, account string) (*models.Lot, error)
	UpdateLot(ctx context.Context, lot *models.Lot) error
	DeleteLot(ctx context.Context, id string) error
	ListLots(ctx context.Context) ([]*models.Lot, error)

	// CloseLot sells amount shares out of the lot at exitPrice on exitDate.
	// A full close deletes the lot; a partial close reduces its amount.
	// Either way a new ClosedLot is appended for the closed portion.
	CloseLot(ctx context.Context, id string, amount, exitPrice float64, exitDate time.Time) (*models.ClosedLot, error)

	UpdateClosedLot(ctx context.Context, lot *models.ClosedLot) error
	DeleteClosedLot(ctx context.Context, id string) error
	ListClosedLots(ctx context.Context) ([]*models.ClosedLot, error)

	SetTickerLabel(ctx context.Context, label *models.TickerLabel) error
	ListTickerLabels(ctx context.Context) ([]*models.TickerLabel, error)
	GetLabelDefinitions(ctx context.Context) (*models.LabelDefinitions, error)
	SaveLabelDefinitions(ctx context.Context, defs *models.LabelDefinitions) error
}

// AnalyticsService derives the full portfolio view from stored lots plus
// fetched market data. Every call recomputes from scratch; results are
// idempotent for identical inputs.
type AnalyticsService interface {
	// ComputeSnapshot fetches market data and derives the complete
	// portfolio snapshot: positions, statistics, weighted beta, realized
	// gain, the XIRR triple, and PME alpha.
	ComputeSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error)

	// ComputeAllocations rolls the portfolio up along one dimension:
	// "account", "strategy", or "industry".
	ComputeAllocations(ctx context.Context, dimension string) ([]models.Allocation, error)

	// RefreshMarketData re-fetches quotes, betas, and cash for all held
	// tickers plus the benchmarks.
	RefreshMarketData(ctx context.Context) error
}
