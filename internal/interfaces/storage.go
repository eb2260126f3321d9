// Package interfaces defines service, storage, and client contracts for Investrack
package interfaces

import (
	"context"

	"github.com/omercanyy/investrack/internal/models"
)

// LotStorage persists open lots, closed lots, and ticker labels.
// These are the only persisted entities; everything else is derived.
type LotStorage interface {
	GetLot(ctx context.Context, id string) (*models.Lot, error)
	SaveLot(ctx context.Context, lot *models.Lot) error
	DeleteLot(ctx context.Context, id string) error
	ListLots(ctx context.Context) ([]*models.Lot, error)

	GetClosedLot(ctx context.Context, id string) (*models.ClosedLot, error)
	SaveClosedLot(ctx context.Context, lot *models.ClosedLot) error
	DeleteClosedLot(ctx context.Context, id string) error
	ListClosedLots(ctx context.Context) ([]*models.ClosedLot, error)

	GetTickerLabel(ctx context.Context, ticker string) (*models.TickerLabel, error)
	SaveTickerLabel(ctx context.Context, label *models.TickerLabel) error
	ListTickerLabels(ctx context.Context) ([]*models.TickerLabel, error)

	GetLabelDefinitions(ctx context.Context) (*models.LabelDefinitions, error)
	SaveLabelDefinitions(ctx context.Context, defs *models.LabelDefinitions) error
}

// InternalStore holds settings and cached derived documents as a simple
// key-value document store.
type InternalStore interface {
	GetKV(ctx context.Context, key string) (string, error)
	SetKV(ctx context.Context, key, value string) error
	DeleteKV(ctx context.Context, key string) error
}

// StorageManager coordinates the storage areas.
type StorageManager interface {
	LotStorage() LotStorage
	InternalStore() InternalStore
	Close() error
}
