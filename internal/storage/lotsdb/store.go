// Package lotsdb implements LotStorage using BadgerHold.
// It persists open lots, closed lots, ticker labels, and the label
// definitions settings document.
package lotsdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/models"
)

// definitionsKey is the fixed key of the single LabelDefinitions document.
const definitionsKey = "definitions"

// Store implements interfaces.LotStorage using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new LotStorage backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lots db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open lots db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("LotsDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- Open lots ---

func (s *Store) GetLot(_ context.Context, id string) (*models.Lot, error) {
	var lot models.Lot
	if err := s.db.Get(id, &lot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("lot '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get lot '%s': %w", id, err)
	}
	return &lot, nil
}

func (s *Store) SaveLot(_ context.Context, lot *models.Lot) error {
	if lot.ID == "" {
		return fmt.Errorf("lot ID is required")
	}
	now := time.Now()
	var existing models.Lot
	if err := s.db.Get(lot.ID, &existing); err == nil {
		lot.CreatedAt = existing.CreatedAt
	} else if lot.CreatedAt.IsZero() {
		lot.CreatedAt = now
	}
	lot.UpdatedAt = now

	if err := s.db.Upsert(lot.ID, lot); err != nil {
		return fmt.Errorf("failed to save lot '%s': %w", lot.ID, err)
	}
	s.logger.Debug().Str("lot_id", lot.ID).Str("ticker", lot.Ticker).Msg("Lot saved")
	return nil
}

func (s *Store) DeleteLot(_ context.Context, id string) error {
	if err := s.db.Delete(id, models.Lot{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("lot '%s' not found", id)
		}
		return fmt.Errorf("failed to delete lot '%s': %w", id, err)
	}
	s.logger.Debug().Str("lot_id", id).Msg("Lot deleted")
	return nil
}

func (s *Store) ListLots(_ context.Context) ([]*models.Lot, error) {
	var lots []*models.Lot
	if err := s.db.Find(&lots, nil); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	sortByDate(lots, func(l *models.Lot) time.Time { return l.Date }, func(l *models.Lot) string { return l.ID })
	return lots, nil
}

// --- Closed lots ---

func (s *Store) GetClosedLot(_ context.Context, id string) (*models.ClosedLot, error) {
	var lot models.ClosedLot
	if err := s.db.Get(id, &lot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("closed lot '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get closed lot '%s': %w", id, err)
	}
	return &lot, nil
}

func (s *Store) SaveClosedLot(_ context.Context, lot *models.ClosedLot) error {
	if lot.ID == "" {
		return fmt.Errorf("closed lot ID is required")
	}
	now := time.Now()
	var existing models.ClosedLot
	if err := s.db.Get(lot.ID, &existing); err == nil {
		lot.CreatedAt = existing.CreatedAt
	} else if lot.CreatedAt.IsZero() {
		lot.CreatedAt = now
	}
	lot.UpdatedAt = now

	if err := s.db.Upsert(lot.ID, lot); err != nil {
		return fmt.Errorf("failed to save closed lot '%s': %w", lot.ID, err)
	}
	s.logger.Debug().Str("lot_id", lot.ID).Str("ticker", lot.Ticker).Msg("Closed lot saved")
	return nil
}

func (s *Store) DeleteClosedLot(_ context.Context, id string) error {
	if err := s.db.Delete(id, models.ClosedLot{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("closed lot '%s' not found", id)
		}
		return fmt.Errorf("failed to delete closed lot '%s': %w", id, err)
	}
	s.logger.Debug().Str("lot_id", id).Msg("Closed lot deleted")
	return nil
}

func (s *Store) ListClosedLots(_ context.Context) ([]*models.ClosedLot, error) {
	var lots []*models.ClosedLot
	if err := s.db.Find(&lots, nil); err != nil {
		return nil, fmt.Errorf("failed to list closed lots: %w", err)
	}
	sortByDate(lots, func(l *models.ClosedLot) time.Time { return l.ExitDate }, func(l *models.ClosedLot) string { return l.ID })
	return lots, nil
}

// --- Ticker labels ---

func (s *Store) GetTickerLabel(_ context.Context, ticker string) (*models.TickerLabel, error) {
	var label models.TickerLabel
	if err := s.db.Get(ticker, &label); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("label for '%s' not found", ticker)
		}
		return nil, fmt.Errorf("failed to get label for '%s': %w", ticker, err)
	}
	return &label, nil
}

func (s *Store) SaveTickerLabel(_ context.Context, label *models.TickerLabel) error {
	if label.Ticker == "" {
		return fmt.Errorf("label ticker is required")
	}
	if err := s.db.Upsert(label.Ticker, label); err != nil {
		return fmt.Errorf("failed to save label for '%s': %w", label.Ticker, err)
	}
	s.logger.Debug().Str("ticker", label.Ticker).Msg("Ticker label saved")
	return nil
}

func (s *Store) ListTickerLabels(_ context.Context) ([]*models.TickerLabel, error) {
	var labels []*models.TickerLabel
	if err := s.db.Find(&labels, nil); err != nil {
		return nil, fmt.Errorf("failed to list ticker labels: %w", err)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Ticker < labels[j].Ticker })
	return labels, nil
}

// --- Label definitions ---

func (s *Store) GetLabelDefinitions(_ context.Context) (*models.LabelDefinitions, error) {
	var defs models.LabelDefinitions
	if err := s.db.Get(definitionsKey, &defs); err != nil {
		if err == badgerhold.ErrNotFound {
			// No definitions saved yet: return an empty document rather
			// than forcing every caller to special-case first use.
			return &models.LabelDefinitions{ID: definitionsKey}, nil
		}
		return nil, fmt.Errorf("failed to get label definitions: %w", err)
	}
	return &defs, nil
}

func (s *Store) SaveLabelDefinitions(_ context.Context, defs *models.LabelDefinitions) error {
	defs.ID = definitionsKey
	if err := s.db.Upsert(definitionsKey, defs); err != nil {
		return fmt.Errorf("failed to save label definitions: %w", err)
	}
	s.logger.Debug().
		Int("strategies", len(defs.Strategies)).
		Int("industries", len(defs.Industries)).
		Msg("Label definitions saved")
	return nil
}

// Close closes the underlying BadgerHold store.
func (s *Store) Close() error {
	return s.db.Close()
}

// sortByDate orders records by their date ascending, breaking ties by ID so
// listings are deterministic across calls.
func sortByDate[T any](items []T, date func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		di, dj := date(items[i]), date(items[j])
		if di.Equal(dj) {
			return id(items[i]) < id(items[j])
		}
		return di.Before(dj)
	})
}
