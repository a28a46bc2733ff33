package calc

import (
	"math"
)

// =============================================================================
// NPV / IRR
// =============================================================================

const (
	irrTolerance     = 1e-7
	irrMaxIterations = 1000
)

// NPV discounts a cash-flow vector at a per-period rate. flows[0] is the
// time-zero flow and is not discounted.
//
// FORMULA: NPV = Σ CF_t / (1+r)^t
func NPV(rate float64, flows []float64) float64 {
	npv := 0.0
	for t, cf := range flows {
		npv += cf / math.Pow(1.0+rate, float64(t))
	}
	return npv
}

// IRR solves NPV(r) = 0 for a per-period rate via Newton's method with a
// bisection fallback. The boolean is false when the vector has no sign change
// or the solver fails to converge within the iteration cap; callers must treat
// that as "no IRR" rather than zero. Negative rates are valid solutions.
func IRR(flows []float64) (float64, bool) {
	if !hasSignChange(flows) {
		return 0, false
	}

	// Newton's method from a conventional starting guess.
	rate := 0.1
	for i := 0; i < irrMaxIterations; i++ {
		npv, derivative := npvWithDerivative(rate, flows)
		if math.Abs(npv) < irrTolerance {
			return rate, true
		}
		if derivative == 0 || math.IsNaN(derivative) {
			break
		}
		next := rate - npv/derivative
		// Rates at or below -100% are meaningless; bail to bisection.
		if next <= -1.0 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < irrTolerance {
			return next, true
		}
		rate = next
	}

	return irrBisection(flows)
}

// irrBisection brackets the root in (-1, 10] and halves in. A single sign
// change guarantees at most one root in that interval.
func irrBisection(flows []float64) (float64, bool) {
	lo, hi := -0.9999, 10.0
	npvLo := NPV(lo, flows)
	npvHi := NPV(hi, flows)
	if npvLo*npvHi > 0 {
		return 0, false
	}

	for i := 0; i < irrMaxIterations; i++ {
		mid := (lo + hi) / 2.0
		npvMid := NPV(mid, flows)
		if math.Abs(npvMid) < irrTolerance || (hi-lo)/2.0 < irrTolerance {
			return mid, true
		}
		if npvLo*npvMid < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return 0, false
}

func npvWithDerivative(rate float64, flows []float64) (float64, float64) {
	npv := 0.0
	derivative := 0.0
	for t, cf := range flows {
		ft := float64(t)
		discount := math.Pow(1.0+rate, ft)
		npv += cf / discount
		if t > 0 {
			derivative -= ft * cf / math.Pow(1.0+rate, ft+1.0)
		}
	}
	return npv, derivative
}

func hasSignChange(flows []float64) bool {
	sawNegative := false
	sawPositive := false
	for _, cf := range flows {
		if cf < 0 {
			sawNegative = true
		}
		if cf > 0 {
			sawPositive = true
		}
	}
	return sawNegative && sawPositive
}

// AnnualizeMonthlyRate converts a monthly IRR to its effective annual rate.
func AnnualizeMonthlyRate(monthly float64) float64 {
	return math.Pow(1.0+monthly, 12.0) - 1.0
}

// MonthlyRateFromAnnual converts an effective annual discount rate to its
// monthly equivalent.
func MonthlyRateFromAnnual(annual float64) float64 {
	return math.Pow(1.0+annual, 1.0/12.0) - 1.0
}
