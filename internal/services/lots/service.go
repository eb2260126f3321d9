// Package lots provides lot lifecycle management services
package lots

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/models"
)

// Compile-time interface check
var _ interfaces.LotService = (*Service)(nil)

// closeEpsilon absorbs float noise when deciding whether a close consumes
// the whole lot.
const closeEpsilon = 1e-9

// Service implements LotService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new lot service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// AddLot validates and records a new open lot.
func (s *Service) AddLot(ctx context.Context, ticker string, amount, fillPrice float64, date time.Time, account string) (*models.Lot, error) {
	lot, err := models.NewLot(strings.ToUpper(strings.TrimSpace(ticker)), amount, fillPrice, date, strings.TrimSpace(account))
	if err != nil {
		return nil, err
	}
	if err := s.storage.LotStorage().SaveLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}
	s.logger.Info().
		Str("ticker", lot.Ticker).
		Float64("amount", lot.Amount).
		Float64("fill_price", lot.FillPrice).
		Msg("Lot added")
	return lot, nil
}

// UpdateLot replaces an existing lot's fields. The lot must already exist;
// updates never create.
func (s *Service) UpdateLot(ctx context.Context, lot *models.Lot) error {
	if lot.ID == "" {
		return fmt.Errorf("lot ID is required")
	}
	if lot.Amount <= 0 || lot.FillPrice <= 0 {
		return fmt.Errorf("lot amount and fill price must be positive")
	}
	existing, err := s.storage.LotStorage().GetLot(ctx, lot.ID)
	if err != nil {
		return err
	}
	lot.Ticker = strings.ToUpper(strings.TrimSpace(lot.Ticker))
	if lot.Ticker == "" {
		lot.Ticker = existing.Ticker
	}
	lot.Date = lot.Date.Truncate(24 * time.Hour)
	lot.CreatedAt = existing.CreatedAt
	if err := s.storage.LotStorage().SaveLot(ctx, lot); err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	s.logger.Info().Str("lot_id", lot.ID).Str("ticker", lot.Ticker).Msg("Lot updated")
	return nil
}

func (s *Service) DeleteLot(ctx context.Context, id string) error {
	if err := s.storage.LotStorage().DeleteLot(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("lot_id", id).Msg("Lot deleted")
	return nil
}

func (s *Service) ListLots(ctx context.Context) ([]*models.Lot, error) {
	return s.storage.LotStorage().ListLots(ctx)
}

// CloseLot sells amount shares out of the lot at exitPrice on exitDate.
// A full close deletes the open lot; a partial close reduces its amount in
// place. Either way the closed portion is appended as a new ClosedLot
// carrying the original fill price and entry date.
func (s *Service) CloseLot(ctx context.Context, id string, amount, exitPrice float64, exitDate time.Time) (*models.ClosedLot, error) {
	lot, err := s.storage.LotStorage().GetLot(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("close amount must be positive, got %v", amount)
	}
	if amount > lot.Amount+closeEpsilon {
		return nil, fmt.Errorf("close amount %v exceeds lot amount %v", amount, lot.Amount)
	}
	if amount > lot.Amount {
		amount = lot.Amount
	}

	closed, err := models.NewClosedLot(lot.Ticker, amount, lot.FillPrice, lot.Date, exitPrice, exitDate, lot.Account)
	if err != nil {
		return nil, err
	}
	if err := s.storage.LotStorage().SaveClosedLot(ctx, closed); err != nil {
		return nil, fmt.Errorf("failed to save closed lot: %w", err)
	}

	remaining := lot.Amount - amount
	if math.Abs(remaining) < closeEpsilon {
		if err := s.storage.LotStorage().DeleteLot(ctx, lot.ID); err != nil {
			return nil, fmt.Errorf("failed to delete fully closed lot: %w", err)
		}
	} else {
		lot.Amount = remaining
		if err := s.storage.LotStorage().SaveLot(ctx, lot); err != nil {
			return nil, fmt.Errorf("failed to reduce partially closed lot: %w", err)
		}
	}

	s.logger.Info().
		Str("ticker", lot.Ticker).
		Float64("amount", amount).
		Float64("exit_price", exitPrice).
		Float64("remaining", remaining).
		Msg("Lot closed")
	return closed, nil
}

// UpdateClosedLot replaces an existing closed lot's fields.
func (s *Service) UpdateClosedLot(ctx context.Context, lot *models.ClosedLot) error {
	if lot.ID == "" {
		return fmt.Errorf("closed lot ID is required")
	}
	if lot.Amount <= 0 || lot.FillPrice <= 0 || lot.ExitPrice <= 0 {
		return fmt.Errorf("closed lot amounts and prices must be positive")
	}
	lot.Date = lot.Date.Truncate(24 * time.Hour)
	lot.ExitDate = lot.ExitDate.Truncate(24 * time.Hour)
	if lot.ExitDate.Before(lot.Date) {
		return fmt.Errorf("closed lot exit date %s precedes entry date %s",
			lot.ExitDate.Format(models.DateFormat), lot.Date.Format(models.DateFormat))
	}
	existing, err := s.storage.LotStorage().GetClosedLot(ctx, lot.ID)
	if err != nil {
		return err
	}
	lot.Ticker = strings.ToUpper(strings.TrimSpace(lot.Ticker))
	if lot.Ticker == "" {
		lot.Ticker = existing.Ticker
	}
	lot.CreatedAt = existing.CreatedAt
	if err := s.storage.LotStorage().SaveClosedLot(ctx, lot); err != nil {
		return fmt.Errorf("failed to update closed lot: %w", err)
	}
	s.logger.Info().Str("lot_id", lot.ID).Str("ticker", lot.Ticker).Msg("Closed lot updated")
	return nil
}

func (s *Service) DeleteClosedLot(ctx context.Context, id string) error {
	if err := s.storage.LotStorage().DeleteClosedLot(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("lot_id", id).Msg("Closed lot deleted")
	return nil
}

func (s *Service) ListClosedLots(ctx context.Context) ([]*models.ClosedLot, error) {
	return s.storage.LotStorage().ListClosedLots(ctx)
}

// SetTickerLabel assigns a strategy and industry to a ticker.
func (s *Service) SetTickerLabel(ctx context.Context, label *models.TickerLabel) error {
	if label == nil || strings.TrimSpace(label.Ticker) == "" {
		return fmt.Errorf("label ticker is required")
	}
	label.Ticker = strings.ToUpper(strings.TrimSpace(label.Ticker))
	if err := s.storage.LotStorage().SaveTickerLabel(ctx, label); err != nil {
		return err
	}
	s.logger.Info().
		Str("ticker", label.Ticker).
		Str("strategy", label.Strategy).
		Str("industry", label.Industry).
		Msg("Ticker label set")
	return nil
}

func (s *Service) ListTickerLabels(ctx context.Context) ([]*models.TickerLabel, error) {
	return s.storage.LotStorage().ListTickerLabels(ctx)
}

func (s *Service) GetLabelDefinitions(ctx context.Context) (*models.LabelDefinitions, error) {
	return s.storage.LotStorage().GetLabelDefinitions(ctx)
}

// SaveLabelDefinitions replaces the strategy and industry name lists,
// dropping blanks and duplicates while preserving order.
func (s *Service) SaveLabelDefinitions(ctx context.Context, defs *models.LabelDefinitions) error {
	if defs == nil {
		return fmt.Errorf("label definitions are required")
	}
	defs.Strategies = dedupeNames(defs.Strategies)
	defs.Industries = dedupeNames(defs.Industries)
	if err := s.storage.LotStorage().SaveLabelDefinitions(ctx, defs); err != nil {
		return err
	}
	s.logger.Info().
		Int("strategies", len(defs.Strategies)).
		Int("industries", len(defs.Industries)).
		Msg("Label definitions saved")
	return nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
