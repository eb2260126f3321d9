// Package models defines data structures for Investrack
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the day-granularity format used for all trade dates.
// Intraday timing is irrelevant to every calculation in the system.
const DateFormat = "2006-01-02"

// Lot represents a single open purchase of a security: the quantity bought,
// the fill price, and the calendar date of the purchase. Lots are immutable
// after creation except for the amount reduction performed by a partial close.
type Lot struct {
	ID        string    `json:"id" badgerhold:"key"`
	Ticker    string    `json:"ticker" badgerhold:"index"`
	Amount    float64   `json:"amount"`
	FillPrice float64   `json:"fill_price"`
	Date      time.Time `json:"date"`
	Account   string    `json:"account"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLot validates inputs and constructs a Lot with a fresh ID.
// Amount and fill price must be strictly positive; numeric sanity is
// enforced here so the analytics layer never sees a malformed record.
func NewLot(ticker string, amount, fillPrice float64, date time.Time, account string) (*Lot, error) {
	if ticker == "" {
		return nil, fmt.Errorf("lot ticker is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("lot amount must be positive, got %v", amount)
	}
	if fillPrice <= 0 {
		return nil, fmt.Errorf("lot fill price must be positive, got %v", fillPrice)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("lot date is required")
	}
	now := time.Now()
	return &Lot{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Amount:    amount,
		FillPrice: fillPrice,
		Date:      date.Truncate(24 * time.Hour),
		Account:   account,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CostBasis returns the capital originally deployed into this lot.
func (l *Lot) CostBasis() float64 {
	return l.Amount * l.FillPrice
}

// ClosedLot represents a sold (or partially sold) lot. A ClosedLot is always
// appended as a new record when a Lot is closed; the open Lot is never
// mutated into a closed one in place.
type ClosedLot struct {
	ID        string    `json:"id" badgerhold:"key"`
	Ticker    string    `json:"ticker" badgerhold:"index"`
	Amount    float64   `json:"amount"`
	FillPrice float64   `json:"fill_price"`
	Date      time.Time `json:"date"`
	ExitPrice float64   `json:"exit_price"`
	ExitDate  time.Time `json:"exit_date"`
	Account   string    `json:"account"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClosedLot validates inputs and constructs a ClosedLot with a fresh ID.
// The exit date may not precede the entry date.
func NewClosedLot(ticker string, amount, fillPrice float64, date time.Time, exitPrice float64, exitDate time.Time, account string) (*ClosedLot, error) {
	if ticker == "" {
		return nil, fmt.Errorf("closed lot ticker is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("closed lot amount must be positive, got %v", amount)
	}
	if fillPrice <= 0 {
		return nil, fmt.Errorf("closed lot fill price must be positive, got %v", fillPrice)
	}
	if exitPrice <= 0 {
		return nil, fmt.Errorf("closed lot exit price must be positive, got %v", exitPrice)
	}
	if date.IsZero() || exitDate.IsZero() {
		return nil, fmt.Errorf("closed lot entry and exit dates are required")
	}
	date = date.Truncate(24 * time.Hour)
	exitDate = exitDate.Truncate(24 * time.Hour)
	if exitDate.Before(date) {
		return nil, fmt.Errorf("closed lot exit date %s precedes entry date %s",
			exitDate.Format(DateFormat), date.Format(DateFormat))
	}
	now := time.Now()
	return &ClosedLot{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Amount:    amount,
		FillPrice: fillPrice,
		Date:      date,
		ExitPrice: exitPrice,
		ExitDate:  exitDate,
		Account:   account,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CostBasis returns the capital originally deployed into the closed portion.
func (c *ClosedLot) CostBasis() float64 {
	return c.Amount * c.FillPrice
}

// Proceeds returns the cash received when the lot was closed.
func (c *ClosedLot) Proceeds() float64 {
	return c.Amount * c.ExitPrice
}

// GainLoss returns the realized profit or loss on the closed portion.
func (c *ClosedLot) GainLoss() float64 {
	return c.Amount * (c.ExitPrice - c.FillPrice)
}

// TickerLabel assigns a strategy and industry to a ticker. Labels are
// user-maintained metadata; aggregation treats missing labels as empty.
type TickerLabel struct {
	Ticker   string `json:"ticker" badgerhold:"key"`
	Strategy string `json:"strategy,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// LabelDefinitions holds the user's defined strategy and industry names,
// stored as a single settings document.
type LabelDefinitions struct {
	ID         string   `json:"id" badgerhold:"key"` // always "definitions"
	Strategies []string `json:"strategies"`
	Industries []string `json:"industries"`
}
