package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/models"
)

// marketDataKV is the internal-store key holding the last fetched market
// data snapshot.
const marketDataKV = "market_data"

// Service implements AnalyticsService. It owns no state beyond its
// collaborators; every snapshot is recomputed from scratch.
type Service struct {
	storage       interfaces.StorageManager
	market        interfaces.MarketDataClient
	historyCache  interfaces.HistoryCache
	betaOverrides map[string]float64
	primary       string
	secondary     string
	logger        *common.Logger
	now           func() time.Time
}

// ServiceOption configures the analytics service.
type ServiceOption func(*Service)

// WithClock overrides the service clock. Used by tests to pin "now".
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithBetaOverrides sets the injected beta override map, applied to tickers
// whose fetched beta is missing or zero.
func WithBetaOverrides(overrides map[string]float64) ServiceOption {
	return func(s *Service) {
		s.betaOverrides = overrides
	}
}

// WithBenchmarks sets the primary (PME + XIRR) and secondary (XIRR only)
// benchmark tickers. Defaults are SPY and GLD.
func WithBenchmarks(primary, secondary string) ServiceOption {
	return func(s *Service) {
		if primary != "" {
			s.primary = primary
		}
		if secondary != "" {
			s.secondary = secondary
		}
	}
}

// NewService creates a new analytics service.
func NewService(
	storage interfaces.StorageManager,
	market interfaces.MarketDataClient,
	historyCache interfaces.HistoryCache,
	logger *common.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		storage:       storage,
		market:        market,
		historyCache:  historyCache,
		betaOverrides: map[string]float64{},
		primary:       models.BenchmarkSPY,
		secondary:     models.BenchmarkGLD,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeSnapshot derives the complete portfolio view from stored lots and
// a market-data snapshot. Missing market data degrades per-figure, never
// fails the whole computation; only storage errors propagate.
func (s *Service) ComputeSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	start := s.now()

	lots, err := s.storage.LotStorage().ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	closedLots, err := s.storage.LotStorage().ListClosedLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed lots: %w", err)
	}
	labelList, err := s.storage.LotStorage().ListTickerLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticker labels: %w", err)
	}
	labels := make(map[string]models.TickerLabel, len(labelList))
	for _, l := range labelList {
		labels[l.Ticker] = *l
	}

	data := s.fetchMarketData(ctx, heldTickers(lots), false)
	s.applyBetaOverrides(data.Betas)

	positions := AggregateLots(lots, data.Prices, data.Betas, labels)
	stats := Summarize(positions, data.Cash)
	weightedBeta := WeightedBeta(positions, data.Betas, stats.TotalValue)
	distribution := BetaDistribution(positions)
	realized := RealizedGain(closedLots)

	now := s.now()
	earliest := earliestEntryDate(lots, closedLots, now)
	primaryHistory := s.benchmarkHistory(ctx, s.primary, earliest)
	secondaryHistory := s.benchmarkHistory(ctx, s.secondary, earliest)

	// XIRR works on invested value only — cash sitting in the account has
	// no entry date and would distort the money-weighted return.
	var totalCash float64
	for _, cash := range data.Cash {
		totalCash += cash
	}
	equityValue := stats.TotalValue - totalCash

	portfolioFlows := BuildPortfolioCashFlows(lots, closedLots, equityValue, now)
	primaryFlows := SimulateBenchmark(lots, closedLots, primaryHistory, data.Prices[s.primary], now)
	secondaryFlows := SimulateBenchmark(lots, closedLots, secondaryHistory, data.Prices[s.secondary], now)

	xirr := s.solveAll(portfolioFlows, primaryFlows, secondaryFlows)
	alpha := ComputeAlpha(lots, closedLots, primaryHistory, data.Prices, now)

	s.logger.Debug().
		Int("lots", len(lots)).
		Int("closed_lots", len(closedLots)).
		Int("positions", len(positions)).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio snapshot computed")

	return &models.PortfolioSnapshot{
		ComputedAt:       now,
		Positions:        positions,
		Statistics:       stats,
		WeightedBeta:     weightedBeta,
		BetaDistribution: distribution,
		RealizedGain:     realized,
		XIRR:             xirr,
		Alpha:            alpha,
		AvailableCash:    data.Cash,
	}, nil
}

// ComputeAllocations rolls the portfolio up along one dimension. Account
// allocations work at lot level (a ticker split across accounts lands in
// each); strategy and industry roll up whole positions by label.
func (s *Service) ComputeAllocations(ctx context.Context, dimension string) ([]models.Allocation, error) {
	lots, err := s.storage.LotStorage().ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	labelList, err := s.storage.LotStorage().ListTickerLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticker labels: %w", err)
	}
	labels := make(map[string]models.TickerLabel, len(labelList))
	for _, l := range labelList {
		labels[l.Ticker] = *l
	}

	data := s.fetchMarketData(ctx, heldTickers(lots), false)
	s.applyBetaOverrides(data.Betas)

	if dimension == "account" {
		return AllocationsByAccount(lots, data.Prices, data.Cash), nil
	}

	positions := AggregateLots(lots, data.Prices, data.Betas, labels)
	var totalCash float64
	for _, cash := range data.Cash {
		totalCash += cash
	}

	switch dimension {
	case "strategy":
		return AllocationsByStrategy(positions, totalCash), nil
	case "industry":
		return AllocationsByIndustry(positions, totalCash), nil
	default:
		return nil, fmt.Errorf("unknown allocation dimension '%s'", dimension)
	}
}

// RefreshMarketData force-fetches quotes, betas, and cash for all held
// tickers plus the benchmarks, replacing the stored snapshot.
func (s *Service) RefreshMarketData(ctx context.Context) error {
	lots, err := s.storage.LotStorage().ListLots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list lots: %w", err)
	}
	s.fetchMarketData(ctx, heldTickers(lots), true)
	return nil
}

// solveAll runs the three XIRR solves concurrently. They share no state, and
// a convergence failure in one degrades that single figure to 0 without
// touching the others.
func (s *Service) solveAll(portfolio, primary, secondary []models.CashFlow) models.XIRRValues {
	var values models.XIRRValues
	var wg sync.WaitGroup

	solve := func(name string, flows []models.CashFlow, out *float64) {
		defer wg.Done()
		rate, err := SolveXIRR(flows)
		if err != nil {
			// Degenerate flows are routine (empty portfolio, single lot
			// bought today); true non-convergence is worth a warning.
			if err == ErrNoConvergence {
				s.logger.Warn().Str("series", name).Int("flows", len(flows)).Msg("XIRR solver did not converge")
			} else {
				s.logger.Debug().Str("series", name).Int("flows", len(flows)).Msg("XIRR skipped: degenerate cash flows")
			}
			*out = 0
			return
		}
		*out = rate
	}

	wg.Add(3)
	go solve("portfolio", portfolio, &values.Portfolio)
	go solve(s.primary, primary, &values.SPY)
	go solve(s.secondary, secondary, &values.GLD)
	wg.Wait()

	return values
}

// fetchMarketData returns current prices, betas, and cash for the given
// tickers plus both benchmarks. A fresh-enough stored snapshot is reused
// unless force is set. Fetch failures degrade to empty maps: a market-data
// outage must not take down the portfolio view.
func (s *Service) fetchMarketData(ctx context.Context, tickers []string, force bool) *models.MarketData {
	if !force {
		if cached := s.loadStoredMarketData(ctx); cached != nil && common.IsFresh(cached.FetchedAt, common.FreshnessMarketData) {
			return cached
		}
	}

	all := append([]string{}, tickers...)
	if !containsString(all, s.primary) {
		all = append(all, s.primary)
	}
	if !containsString(all, s.secondary) {
		all = append(all, s.secondary)
	}

	data := &models.MarketData{
		Prices:    map[string]float64{},
		Betas:     map[string]float64{},
		Cash:      map[string]float64{},
		FetchedAt: s.now(),
	}

	if prices, err := s.market.GetQuotes(ctx, all); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch quotes")
	} else {
		data.Prices = prices
	}
	if betas, err := s.market.GetBetas(ctx, all); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch betas")
	} else {
		data.Betas = betas
	}
	if cash, err := s.market.GetAvailableCash(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch available cash")
	} else {
		data.Cash = cash
	}

	s.storeMarketData(ctx, data)
	return data
}

func (s *Service) loadStoredMarketData(ctx context.Context) *models.MarketData {
	raw, err := s.storage.InternalStore().GetKV(ctx, marketDataKV)
	if err != nil || raw == "" {
		return nil
	}
	var data models.MarketData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return &data
}

func (s *Service) storeMarketData(ctx context.Context, data *models.MarketData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.storage.InternalStore().SetKV(ctx, marketDataKV, string(raw)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to store market data snapshot")
	}
}

// benchmarkHistory returns the benchmark's daily candles from the cache,
// fetching on a miss. An empty series is returned on fetch failure — the
// downstream consumers already treat missing candles as skip conditions.
func (s *Service) benchmarkHistory(ctx context.Context, ticker string, from time.Time) []models.Candle {
	key := "history:" + ticker + ":" + from.Format(models.DateFormat)
	if candles, ok := s.historyCache.Get(key); ok {
		return candles
	}

	candles, err := s.market.GetPriceHistory(ctx, ticker, from)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch benchmark history")
		return nil
	}
	s.historyCache.Set(key, candles)
	return candles
}

// applyBetaOverrides fills in betas for tickers the feed has no (or a zero)
// beta for, from the injected override map.
func (s *Service) applyBetaOverrides(betas map[string]float64) {
	for ticker, beta := range s.betaOverrides {
		if betas[ticker] == 0 {
			betas[ticker] = beta
		}
	}
}

// heldTickers returns the distinct tickers across open lots, in first-seen
// order.
func heldTickers(lots []*models.Lot) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0)
	for _, lot := range lots {
		if !seen[lot.Ticker] {
			seen[lot.Ticker] = true
			tickers = append(tickers, lot.Ticker)
		}
	}
	return tickers
}

// earliestEntryDate returns the oldest entry date across all lots, used as
// the benchmark history fetch horizon. Falls back to one year ago when the
// portfolio is empty.
func earliestEntryDate(lots []*models.Lot, closedLots []*models.ClosedLot, now time.Time) time.Time {
	earliest := now.AddDate(-1, 0, 0)
	first := true
	for _, lot := range lots {
		if first || lot.Date.Before(earliest) {
			earliest = lot.Date
			first = false
		}
	}
	for _, lot := range closedLots {
		if first || lot.Date.Before(earliest) {
			earliest = lot.Date
			first = false
		}
	}
	return earliest
}
