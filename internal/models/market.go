package models

import "time"

// Benchmark tickers used for money-weighted return comparison and PME.
const (
	BenchmarkSPY = "SPY"
	BenchmarkGLD = "GLD"
)

// Candle is a single daily close from a historical price series.
// Series are always ordered ascending by datetime.
type Candle struct {
	Datetime time.Time `json:"datetime"`
	Close    float64   `json:"close"`
}

// MarketData is the externally fetched snapshot the analytics layer consumes:
// current prices, betas, and per-account cash. Missing entries degrade to
// documented defaults downstream; they are never an error here.
type MarketData struct {
	Prices    map[string]float64 `json:"prices"`
	Betas     map[string]float64 `json:"betas"`
	Cash      map[string]float64 `json:"cash"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// BenchmarkHistory bundles a benchmark's daily candles with its current price.
type BenchmarkHistory struct {
	Ticker       string   `json:"ticker"`
	Candles      []Candle `json:"candles"`
	CurrentPrice float64  `json:"current_price"`
}
