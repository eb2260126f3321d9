package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/models"
)

// --- test doubles ---

type fakeLotStorage struct {
	lots   []*models.Lot
	closed []*models.ClosedLot
	labels []*models.TickerLabel
}

func (f *fakeLotStorage) GetLot(_ context.Context, id string) (*models.Lot, error) {
	for _, lot := range f.lots {
		if lot.ID == id {
			return lot, nil
		}
	}
	return nil, fmt.Errorf("lot '%s' not found", id)
}
func (f *fakeLotStorage) SaveLot(_ context.Context, lot *models.Lot) error {
	f.lots = append(f.lots, lot)
	return nil
}
func (f *fakeLotStorage) DeleteLot(_ context.Context, id string) error { return nil }
func (f *fakeLotStorage) ListLots(_ context.Context) ([]*models.Lot, error) {
	return f.lots, nil
}
func (f *fakeLotStorage) GetClosedLot(_ context.Context, id string) (*models.ClosedLot, error) {
	return nil, fmt.Errorf("closed lot '%s' not found", id)
}
func (f *fakeLotStorage) SaveClosedLot(_ context.Context, lot *models.ClosedLot) error {
	f.closed = append(f.closed, lot)
	return nil
}
func (f *fakeLotStorage) DeleteClosedLot(_ context.Context, id string) error { return nil }
func (f *fakeLotStorage) ListClosedLots(_ context.Context) ([]*models.ClosedLot, error) {
	return f.closed, nil
}
func (f *fakeLotStorage) GetTickerLabel(_ context.Context, ticker string) (*models.TickerLabel, error) {
	return nil, fmt.Errorf("label for '%s' not found", ticker)
}
func (f *fakeLotStorage) SaveTickerLabel(_ context.Context, label *models.TickerLabel) error {
	f.labels = append(f.labels, label)
	return nil
}
func (f *fakeLotStorage) ListTickerLabels(_ context.Context) ([]*models.TickerLabel, error) {
	return f.labels, nil
}
func (f *fakeLotStorage) GetLabelDefinitions(_ context.Context) (*models.LabelDefinitions, error) {
	return &models.LabelDefinitions{ID: "definitions"}, nil
}
func (f *fakeLotStorage) SaveLabelDefinitions(_ context.Context, defs *models.LabelDefinitions) error {
	return nil
}

type fakeInternalStore struct {
	kv map[string]string
}

func (f *fakeInternalStore) GetKV(_ context.Context, key string) (string, error) {
	v, ok := f.kv[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found", key)
	}
	return v, nil
}
func (f *fakeInternalStore) SetKV(_ context.Context, key, value string) error {
	f.kv[key] = value
	return nil
}
func (f *fakeInternalStore) DeleteKV(_ context.Context, key string) error {
	delete(f.kv, key)
	return nil
}

type fakeStorageManager struct {
	lots     *fakeLotStorage
	internal *fakeInternalStore
}

func (f *fakeStorageManager) LotStorage() interfaces.LotStorage       { return f.lots }
func (f *fakeStorageManager) InternalStore() interfaces.InternalStore { return f.internal }
func (f *fakeStorageManager) Close() error                            { return nil }

// fakeMarketClient serves canned data and counts calls.
type fakeMarketClient struct {
	prices     map[string]float64
	betas      map[string]float64
	cash       map[string]float64
	history    map[string][]models.Candle
	historyErr map[string]error

	quoteCalls   int
	historyCalls map[string]int
}

func (f *fakeMarketClient) GetQuotes(_ context.Context, tickers []string) (map[string]float64, error) {
	f.quoteCalls++
	out := make(map[string]float64)
	for _, t := range tickers {
		if p, ok := f.prices[t]; ok {
			out[t] = p
		}
	}
	return out, nil
}
func (f *fakeMarketClient) GetBetas(_ context.Context, tickers []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, t := range tickers {
		if b, ok := f.betas[t]; ok {
			out[t] = b
		}
	}
	return out, nil
}
func (f *fakeMarketClient) GetAvailableCash(_ context.Context) (map[string]float64, error) {
	return f.cash, nil
}
func (f *fakeMarketClient) GetPriceHistory(_ context.Context, ticker string, _ time.Time) ([]models.Candle, error) {
	if f.historyCalls == nil {
		f.historyCalls = make(map[string]int)
	}
	f.historyCalls[ticker]++
	if err, ok := f.historyErr[ticker]; ok {
		return nil, err
	}
	return f.history[ticker], nil
}

// mapHistoryCache is a plain map HistoryCache with no TTL.
type mapHistoryCache struct {
	entries map[string][]models.Candle
}

func newMapHistoryCache() *mapHistoryCache {
	return &mapHistoryCache{entries: make(map[string][]models.Candle)}
}
func (c *mapHistoryCache) Get(key string) ([]models.Candle, bool) {
	candles, ok := c.entries[key]
	return candles, ok
}
func (c *mapHistoryCache) Set(key string, candles []models.Candle) {
	c.entries[key] = candles
}

// --- fixtures ---

func snapDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateFormat, s)
	require.NoError(t, err)
	return d
}

func flatHistory(from, to time.Time, price float64) []models.Candle {
	var candles []models.Candle
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		candles = append(candles, models.Candle{Datetime: d, Close: price})
	}
	return candles
}

func newSnapshotFixture(t *testing.T) (*Service, *fakeStorageManager, *fakeMarketClient, time.Time) {
	t.Helper()
	now := snapDay(t, "2025-01-01")
	entry := snapDay(t, "2024-01-01")

	aapl, err := models.NewLot("AAPL", 10, 100, entry, "main")
	require.NoError(t, err)
	msft, err := models.NewLot("MSFT", 5, 200, entry, "main")
	require.NoError(t, err)

	sold, err := models.NewClosedLot("TSLA", 2, 100, entry, 150, snapDay(t, "2024-06-01"), "main")
	require.NoError(t, err)

	storage := &fakeStorageManager{
		lots: &fakeLotStorage{
			lots:   []*models.Lot{aapl, msft},
			closed: []*models.ClosedLot{sold},
			labels: []*models.TickerLabel{{Ticker: "AAPL", Strategy: "Core", Industry: "Tech"}},
		},
		internal: &fakeInternalStore{kv: make(map[string]string)},
	}

	// SPY and GLD flat at 500/200 so the benchmark XIRRs come out to 0.
	market := &fakeMarketClient{
		prices: map[string]float64{"AAPL": 120, "MSFT": 250, "SPY": 500, "GLD": 200},
		betas:  map[string]float64{"AAPL": 1.1, "MSFT": 0.9},
		cash:   map[string]float64{"main": 500},
		history: map[string][]models.Candle{
			"SPY": flatHistory(entry, now, 500),
			"GLD": flatHistory(entry, now, 200),
		},
	}

	svc := NewService(storage, market, newMapHistoryCache(), common.NewSilentLogger(),
		WithClock(func() time.Time { return now }))
	return svc, storage, market, now
}

// --- tests ---

func TestComputeSnapshot(t *testing.T) {
	svc, _, _, now := newSnapshotFixture(t)

	snap, err := svc.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.ComputedAt.Equal(now))

	// Positions sorted by ticker
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "AAPL", snap.Positions[0].Ticker)
	assert.Equal(t, "MSFT", snap.Positions[1].Ticker)
	assert.Equal(t, "Core", snap.Positions[0].Strategy)

	// Stats: value 10*120 + 5*250 + 500 cash, cost 10*100 + 5*200
	assert.InDelta(t, 1200+1250+500, snap.Statistics.TotalValue, 1e-9)
	assert.InDelta(t, 2000, snap.Statistics.TotalCostBasis, 1e-9)
	assert.InDelta(t, 450, snap.Statistics.TotalGainLoss, 1e-9)

	// Realized gain from the TSLA round trip
	assert.InDelta(t, 100, snap.RealizedGain.Gain, 1e-9)
	assert.InDelta(t, 0.5, snap.RealizedGain.GainPercent, 1e-9)

	// -2200 at entry, +300 at the TSLA exit, +2450 terminal equity one year
	// on solves to about 27%; flat benchmarks solve to 0
	assert.InDelta(t, 0.2697, snap.XIRR.Portfolio, 1e-3)
	assert.InDelta(t, 0, snap.XIRR.SPY, 1e-6)
	assert.InDelta(t, 0, snap.XIRR.GLD, 1e-6)

	// Alpha: actual open 2450 + closed 300; SPY flat so benchmark = invested
	// 2000 open + 200 closed = 2200 -> dollar alpha 550
	assert.InDelta(t, 550, snap.Alpha.TotalAlphaDollars, 1e-6)
	assert.InDelta(t, 0.25, snap.Alpha.TotalAlphaPercent, 1e-6)

	assert.Equal(t, map[string]float64{"main": 500}, snap.AvailableCash)
}

func TestComputeSnapshot_WeightedBetaAndDistribution(t *testing.T) {
	svc, _, _, _ := newSnapshotFixture(t)

	snap, err := svc.ComputeSnapshot(context.Background())
	require.NoError(t, err)

	// Both betas in [0, 1.2): all position value lands in the LOW bucket
	require.Len(t, snap.BetaDistribution, 3)
	assert.Equal(t, models.BetaCategoryLow, snap.BetaDistribution[0].Category)
	assert.InDelta(t, 2450, snap.BetaDistribution[0].Value, 1e-9)
	assert.Zero(t, snap.BetaDistribution[1].Value)
	assert.Zero(t, snap.BetaDistribution[2].Value)

	// Weights are over total value including cash: (1200*1.1 + 1250*0.9) / 2950
	assert.InDelta(t, (1200*1.1+1250*0.9)/2950, snap.WeightedBeta.Weighted, 1e-9)
	assert.Equal(t, models.BetaCategoryLow, snap.WeightedBeta.Category)
}

func TestComputeSnapshot_EmptyPortfolio(t *testing.T) {
	storage := &fakeStorageManager{
		lots:     &fakeLotStorage{},
		internal: &fakeInternalStore{kv: make(map[string]string)},
	}
	market := &fakeMarketClient{}
	svc := NewService(storage, market, newMapHistoryCache(), common.NewSilentLogger())

	snap, err := svc.ComputeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Positions)
	assert.Zero(t, snap.Statistics.TotalValue)
	assert.Zero(t, snap.XIRR.Portfolio)
	assert.Zero(t, snap.XIRR.SPY)
	assert.Zero(t, snap.Alpha.TotalAlphaDollars)
}

func TestComputeSnapshot_BenchmarkFailureDegradesOnlyItself(t *testing.T) {
	svc, _, market, _ := newSnapshotFixture(t)
	market.historyErr = map[string]error{"GLD": fmt.Errorf("upstream down")}

	snap, err := svc.ComputeSnapshot(context.Background())
	require.NoError(t, err, "a benchmark outage must not fail the snapshot")

	assert.InDelta(t, 0.2697, snap.XIRR.Portfolio, 1e-3, "portfolio XIRR unaffected")
	assert.InDelta(t, 0, snap.XIRR.SPY, 1e-6, "SPY unaffected")
	assert.Zero(t, snap.XIRR.GLD, "failed benchmark degrades to 0")
}

func TestComputeSnapshot_BetaOverrides(t *testing.T) {
	svc, storage, market, _ := newSnapshotFixture(t)
	delete(market.betas, "MSFT")
	svc.betaOverrides = map[string]float64{"MSFT": 0.95}

	snap, err := svc.ComputeSnapshot(context.Background())
	require.NoError(t, err)

	var msft *models.AggregatedPosition
	for i := range snap.Positions {
		if snap.Positions[i].Ticker == "MSFT" {
			msft = &snap.Positions[i]
		}
	}
	require.NotNil(t, msft)
	require.NotNil(t, msft.Beta, "override should supply the missing beta")
	assert.InDelta(t, 0.95, *msft.Beta, 1e-9)
	assert.Equal(t, models.BetaCategoryLow, msft.BetaCategory)

	_ = storage
}

func TestComputeSnapshot_ReusesFreshMarketData(t *testing.T) {
	svc, _, market, _ := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := svc.ComputeSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, market.quoteCalls)

	// Second snapshot within the freshness window reuses the stored data.
	_, err = svc.ComputeSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, market.quoteCalls, "fresh market data should be reused")
}

func TestComputeSnapshot_BenchmarkHistoryCached(t *testing.T) {
	svc, _, market, _ := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := svc.ComputeSnapshot(ctx)
	require.NoError(t, err)
	_, err = svc.ComputeSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, market.historyCalls["SPY"], "history should come from the cache on the second pass")
	assert.Equal(t, 1, market.historyCalls["GLD"])
}

func TestComputeAllocations(t *testing.T) {
	svc, _, _, _ := newSnapshotFixture(t)
	ctx := context.Background()

	byAccount, err := svc.ComputeAllocations(ctx, "account")
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, "main", byAccount[0].Name)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, byAccount[0].Tickers)
	assert.InDelta(t, 2950, byAccount[0].CurrentValue, 1e-9, "account bucket includes its cash")
	assert.InDelta(t, 100, byAccount[0].WeightPercent, 1e-9)

	byStrategy, err := svc.ComputeAllocations(ctx, "strategy")
	require.NoError(t, err)
	// Core (AAPL), Unassigned (MSFT), and a Cash bucket
	names := make([]string, 0, len(byStrategy))
	for _, a := range byStrategy {
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"Cash", "Core", unassignedBucket}, names)

	_, err = svc.ComputeAllocations(ctx, "color")
	assert.Error(t, err, "unknown dimension should be rejected")
}

func TestRefreshMarketData_ForcesFetch(t *testing.T) {
	svc, _, market, _ := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := svc.ComputeSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, market.quoteCalls)

	require.NoError(t, svc.RefreshMarketData(ctx))
	assert.Equal(t, 2, market.quoteCalls, "refresh bypasses the freshness window")
}
