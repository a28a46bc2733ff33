// Cash-flow waterfall tie-out checks. Every projected period must satisfy
// the income statement identities; a failure means the projector and the
// metrics layer disagree about what a line item contains.
package validate

import (
	"fmt"
	"math"

	"landscape_underwriting/pkg/core/cashflow"
)

// DefaultTolerance is the rounding slack allowed on waterfall identities,
// in dollars.
const DefaultTolerance = 0.01

// WaterfallCheck holds the per-period identity differences.
type WaterfallCheck struct {
	Period            int     `json:"period"`
	EGIDifference     float64 `json:"egi_difference"`
	NOIDifference     float64 `json:"noi_difference"`
	CFBDDifference    float64 `json:"cfbd_difference"`
	LeveredDifference float64 `json:"levered_difference"`
	IsConsistent      bool    `json:"is_consistent"`
	Tolerance         float64 `json:"tolerance"`
}

// CheckWaterfall validates one period against the waterfall identities:
// EGI = GPR - vacancy - credit loss + recoveries (GPR already includes
// percentage rent; the PercentageRent field is a breakout), NOI = EGI -
// opex - management fee, CFBD = NOI - capital items, and levered = CFBD -
// debt service.
func CheckWaterfall(pf cashflow.PeriodCashFlow, tolerance float64) *WaterfallCheck {
	expectedEGI := pf.GrossPotentialRent - pf.VacancyLoss - pf.CreditLoss + pf.RecoveryIncome
	expectedNOI := pf.EffectiveGrossIncome - pf.OperatingExpenses - pf.ManagementFee
	expectedCFBD := pf.NetOperatingIncome - pf.CapitalItems
	expectedLevered := pf.CashFlowBeforeDebt - pf.DebtService

	check := &WaterfallCheck{
		Period:            pf.Period,
		EGIDifference:     pf.EffectiveGrossIncome - expectedEGI,
		NOIDifference:     pf.NetOperatingIncome - expectedNOI,
		CFBDDifference:    pf.CashFlowBeforeDebt - expectedCFBD,
		LeveredDifference: pf.LeveredCashFlow - expectedLevered,
		Tolerance:         tolerance,
	}
	check.IsConsistent = math.Abs(check.EGIDifference) <= tolerance &&
		math.Abs(check.NOIDifference) <= tolerance &&
		math.Abs(check.CFBDDifference) <= tolerance &&
		math.Abs(check.LeveredDifference) <= tolerance
	return check
}

// OutlierCheck identifies suspicious period-over-period swings.
type OutlierCheck struct {
	Item       string  `json:"item"`
	Period     int     `json:"period"`
	Value      float64 `json:"value"`
	PriorValue float64 `json:"prior_value"`
	ChangePct  float64 `json:"change_pct"`
	IsOutlier  bool    `json:"is_outlier"`
	Reason     string  `json:"reason,omitempty"`
	Threshold  float64 `json:"threshold"`
}

// PercentChange returns (current - prior) / prior * 100.
func PercentChange(current, prior float64) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (current - prior) / prior * 100
}

// CheckForOutlier flags a change that exceeds thresholdPct, or a drop to
// zero from a non-zero prior value.
func CheckForOutlier(item string, period int, current, prior, thresholdPct float64) *OutlierCheck {
	changePct := PercentChange(current, prior)

	check := &OutlierCheck{
		Item:       item,
		Period:     period,
		Value:      current,
		PriorValue: prior,
		ChangePct:  changePct,
		Threshold:  thresholdPct,
	}

	if current == 0 && prior > 0 {
		check.IsOutlier = true
		check.Reason = "value dropped to zero from a non-zero prior period"
		return check
	}
	if math.Abs(changePct) > thresholdPct {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("change of %.1f%% exceeds threshold of %.1f%%", changePct, thresholdPct)
	}
	return check
}

// ProjectionReport aggregates waterfall and outlier checks over a full
// projection.
type ProjectionReport struct {
	Periods       int             `json:"periods"`
	FailedPeriods []int           `json:"failed_periods,omitempty"`
	Outliers      []*OutlierCheck `json:"outliers,omitempty"`
	AllPassed     bool            `json:"all_passed"`
}

// CheckProjection runs the waterfall tie-out on every period and scans NOI
// for period-over-period outliers. outlierThresholdPct is a percent (e.g. 50
// flags any month whose NOI moved more than 50% against the prior month).
func CheckProjection(flows []cashflow.PeriodCashFlow, tolerance, outlierThresholdPct float64) *ProjectionReport {
	report := &ProjectionReport{
		Periods:   len(flows),
		AllPassed: true,
	}
	for i, pf := range flows {
		if check := CheckWaterfall(pf, tolerance); !check.IsConsistent {
			report.FailedPeriods = append(report.FailedPeriods, pf.Period)
			report.AllPassed = false
		}
		if i == 0 {
			continue
		}
		outlier := CheckForOutlier("net_operating_income", pf.Period,
			pf.NetOperatingIncome, flows[i-1].NetOperatingIncome, outlierThresholdPct)
		if outlier.IsOutlier {
			report.Outliers = append(report.Outliers, outlier)
		}
	}
	return report
}
