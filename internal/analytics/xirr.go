package analytics

import (
	"errors"
	"math"
	"sort"

	"github.com/omercanyy/investrack/internal/models"
)

// Solver failure modes. Both are handled at the call site by degrading the
// single affected figure to 0 — never by surfacing an error to the caller
// of the snapshot — but they stay distinguishable from a legitimate 0%
// return for logging and tests.
var (
	// ErrDegenerateFlows means the flow list cannot define a rate: fewer
	// than two flows, flows all of one sign, or all flows on the same day
	// (no time axis to annualize over).
	ErrDegenerateFlows = errors.New("xirr: degenerate cash flows")

	// ErrNoConvergence means neither Newton-Raphson nor the bisection
	// fallback found a root within the iteration budget.
	ErrNoConvergence = errors.New("xirr: solver did not converge")
)

const (
	xirrNewtonIters = 100
	xirrBisectIters = 200
	xirrTolerance   = 1e-7
	xirrMinRate     = -0.999 // a rate below -99.9% is not meaningful
	xirrMaxRate     = 100.0  // 10000% annual cap to stop Newton oscillating
	daysPerYear     = 365.0
)

// SolveXIRR finds the annualized discount rate r such that
//
//	Σ amount_i / (1+r)^(days_i/365) = 0
//
// with days_i measured from the earliest flow date. The rate is returned as
// a decimal (0.2 = 20%). Newton-Raphson runs first, seeded from the simple
// return; bisection over [-0.99, 10] is the fallback when Newton stalls or
// diverges.
func SolveXIRR(flows []models.CashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrDegenerateFlows
	}

	sorted := make([]models.CashFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// A solvable flow list needs at least one sign change.
	hasNeg, hasPos := false, false
	for _, f := range sorted {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0, ErrDegenerateFlows
	}

	// Convert dates to year fractions from the earliest flow.
	base := sorted[0].Date
	years := make([]float64, len(sorted))
	allSameDay := true
	for i, f := range sorted {
		days := f.Date.Sub(base).Hours() / 24
		years[i] = days / daysPerYear
		if years[i] != 0 {
			allSameDay = false
		}
	}
	if allSameDay {
		return 0, ErrDegenerateFlows
	}

	if rate, ok := newtonXIRR(sorted, years); ok {
		return rate, nil
	}
	if rate, ok := bisectXIRR(sorted, years); ok {
		return rate, nil
	}
	return 0, ErrNoConvergence
}

func xirrNPV(flows []models.CashFlow, years []float64, rate float64) float64 {
	sum := 0.0
	for i, f := range flows {
		base := 1 + rate
		if base <= 0 {
			return math.NaN()
		}
		sum += f.Amount / math.Pow(base, years[i])
	}
	return sum
}

// newtonXIRR runs Newton-Raphson seeded from the simple return.
func newtonXIRR(flows []models.CashFlow, years []float64) (float64, bool) {
	// Initial guess from the undiscounted in/out ratio, clamped to a sane
	// range; 10% as a last resort.
	totalInvested, totalReceived := 0.0, 0.0
	for _, f := range flows {
		if f.Amount < 0 {
			totalInvested -= f.Amount
		} else {
			totalReceived += f.Amount
		}
	}
	rate := 0.1
	if totalInvested > 0 {
		simple := totalReceived/totalInvested - 1
		if simple > -0.9 && simple < 10 {
			rate = simple
		}
	}

	for iter := 0; iter < xirrNewtonIters; iter++ {
		npv := 0.0
		dnpv := 0.0

		for i, f := range flows {
			y := years[i]
			base := 1 + rate
			if base <= 0 {
				rate = xirrMinRate
				base = 1 + rate
			}
			discount := math.Pow(base, y)
			if discount == 0 {
				continue
			}
			npv += f.Amount / discount
			if y != 0 {
				dnpv -= y * f.Amount / (discount * base)
			}
		}

		if math.Abs(npv) < xirrTolerance {
			if math.IsNaN(rate) || math.IsInf(rate, 0) {
				return 0, false
			}
			return rate, true
		}

		if dnpv == 0 {
			return 0, false
		}

		next := rate - npv/dnpv
		if next < xirrMinRate {
			next = xirrMinRate
		}
		if next > xirrMaxRate {
			next = xirrMaxRate
		}
		rate = next
	}

	return 0, false
}

// bisectXIRR brackets the root in [-0.99, 10] and halves until the NPV is
// inside tolerance. Slower but immune to the oscillation that defeats
// Newton on flow lists dominated by a single large terminal value.
func bisectXIRR(flows []models.CashFlow, years []float64) (float64, bool) {
	lo, hi := -0.99, 10.0
	npvLo := xirrNPV(flows, years, lo)
	npvHi := xirrNPV(flows, years, hi)

	if math.IsNaN(npvLo) || math.IsNaN(npvHi) {
		return 0, false
	}
	if math.Abs(npvLo) < xirrTolerance {
		return lo, true
	}
	if math.Abs(npvHi) < xirrTolerance {
		return hi, true
	}
	if npvLo*npvHi > 0 {
		// Same sign at both ends — no root in the bracket.
		return 0, false
	}

	for iter := 0; iter < xirrBisectIters; iter++ {
		mid := (lo + hi) / 2
		npvMid := xirrNPV(flows, years, mid)
		if math.IsNaN(npvMid) {
			return 0, false
		}
		if math.Abs(npvMid) < xirrTolerance {
			return mid, true
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	return (lo + hi) / 2, true
}
