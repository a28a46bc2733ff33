// Package cashflow projects per-period (monthly) net cash flow for a leased
// commercial property. The projector is a pure function of its inputs: no
// I/O, no shared state, no rounding (cent precision is a presentation
// concern; intermediates keep full float precision across 120+ periods).
package cashflow

import (
	"math"
	"time"

	"landscape_underwriting/pkg/models"
)

// ProjectionInput bundles everything the projector needs for one run.
// Opex and capital schedules are supplied pre-built per period; indexes past
// the end of a schedule contribute zero.
type ProjectionInput struct {
	Property          *models.PropertyData
	StartDate         time.Time
	PeriodCount       int
	OpexSchedule      []models.OperatingExpenses
	CapitalSchedule   []models.CapitalItems
	AnnualDebtService float64
	VacancyPct        float64
	CreditLossPct     float64
	ManagementFeePct  float64
}

// PeriodCashFlow is one month of the projection waterfall.
type PeriodCashFlow struct {
	Period               int       `json:"period"`
	Date                 time.Time `json:"date"`
	GrossPotentialRent   float64   `json:"gross_potential_rent"`
	PercentageRent       float64   `json:"percentage_rent"`
	VacancyLoss          float64   `json:"vacancy_loss"`
	CreditLoss           float64   `json:"credit_loss"`
	RecoveryIncome       float64   `json:"recovery_income"`
	EffectiveGrossIncome float64   `json:"effective_gross_income"`
	OperatingExpenses    float64   `json:"operating_expenses"`
	ManagementFee        float64   `json:"management_fee"`
	NetOperatingIncome   float64   `json:"net_operating_income"`
	CapitalItems         float64   `json:"capital_items"`
	CashFlowBeforeDebt   float64   `json:"cash_flow_before_debt"`
	DebtService          float64   `json:"debt_service"`
	LeveredCashFlow      float64   `json:"levered_cash_flow"`
}

// Project runs the monthly waterfall over input.PeriodCount periods:
// base rent (escalated) + percentage rent → GPR, less vacancy and credit
// loss, plus recoveries → EGI, less opex and management fee → NOI, less
// capital items → cash flow before debt, less debt service → levered.
func Project(input ProjectionInput) []PeriodCashFlow {
	if input.Property == nil || input.PeriodCount <= 0 {
		return nil
	}

	leases := input.Property.ActiveLeases()
	monthlyDebt := input.AnnualDebtService / 12.0
	flows := make([]PeriodCashFlow, 0, input.PeriodCount)

	for p := 0; p < input.PeriodCount; p++ {
		periodDate := input.StartDate.AddDate(0, p, 0)

		var baseRent, overage float64
		for i := range leases {
			baseRent += leaseBaseRent(&leases[i], periodDate)
			overage += percentageRentFor(&leases[i], periodDate, p)
		}

		gpr := baseRent + overage
		vacancyLoss := gpr * input.VacancyPct
		creditLoss := gpr * input.CreditLossPct

		var opex models.OperatingExpenses
		if p < len(input.OpexSchedule) {
			opex = input.OpexSchedule[p]
		}

		var recoveries float64
		for i := range leases {
			recoveries += recoveryIncomeFor(&leases[i], input.Property.RentableSF, opex, periodDate)
		}

		egi := gpr - vacancyLoss - creditLoss + recoveries
		opexTotal := opex.Total()
		mgmtFee := egi * input.ManagementFeePct
		noi := egi - opexTotal - mgmtFee

		var capital float64
		if p < len(input.CapitalSchedule) {
			capital = input.CapitalSchedule[p].Total()
		}

		cfBeforeDebt := noi - capital
		levered := cfBeforeDebt - monthlyDebt

		flows = append(flows, PeriodCashFlow{
			Period:               p + 1,
			Date:                 periodDate,
			GrossPotentialRent:   gpr,
			PercentageRent:       overage,
			VacancyLoss:          vacancyLoss,
			CreditLoss:           creditLoss,
			RecoveryIncome:       recoveries,
			EffectiveGrossIncome: egi,
			OperatingExpenses:    opexTotal,
			ManagementFee:        mgmtFee,
			NetOperatingIncome:   noi,
			CapitalItems:         capital,
			CashFlowBeforeDebt:   cfBeforeDebt,
			DebtService:          monthlyDebt,
			LeveredCashFlow:      levered,
		})
	}
	return flows
}

// leaseBaseRent resolves the contractual monthly rent for one lease at one
// date: locate the covering BaseRentPeriod, then compound by the escalation
// rate once per completed escalation cycle since commencement. A lease with
// no covering period contributes zero; that is not an error.
func leaseBaseRent(lease *models.LeaseData, periodDate time.Time) float64 {
	var current *models.BaseRentPeriod
	for i := range lease.BaseRentPeriods {
		if lease.BaseRentPeriods[i].Contains(periodDate) {
			current = &lease.BaseRentPeriods[i]
			break
		}
	}
	if current == nil {
		return 0
	}

	rent := current.MonthlyAmount(lease.LeasedSF)
	if lease.Escalation == nil || lease.Escalation.Type == models.EscalationNone {
		return rent
	}

	freq := lease.Escalation.FrequencyMonths
	if freq <= 0 {
		freq = 12
	}
	cycles := monthsBetween(lease.CommencementDate, periodDate) / freq
	if cycles <= 0 {
		return rent
	}

	rate := lease.Escalation.AppliedRate()
	return rent * math.Pow(1.0+rate, float64(cycles))
}

// percentageRentFor computes the month's overage rent for a retail lease.
//
// Trailing-sales policy: prior-year sales seed a projected sales pace grown
// at SalesGrowthPct, and the trailing-12 figure ramps linearly from the seed
// to the projected pace over the first twelve periods. After that the
// projected pace stands alone.
func percentageRentFor(lease *models.LeaseData, periodDate time.Time, periodIndex int) float64 {
	pr := lease.PercentageRent
	if pr == nil || pr.RatePct <= 0 {
		return 0
	}

	yearsElapsed := float64(periodIndex+1) / 12.0
	projectedPace := pr.PriorYearSales * math.Pow(1.0+pr.SalesGrowthPct, yearsElapsed)

	weight := math.Min(1.0, float64(periodIndex+1)/12.0)
	trailing := pr.PriorYearSales*(1.0-weight) + projectedPace*weight

	annualOverage := math.Max(0, (trailing-pr.BreakpointSales)*pr.RatePct)
	return annualOverage / 12.0
}

// recoveryIncomeFor bills the lease its pro-rata share of each recoverable
// expense category, then applies the lease's expense cap PSF (escalated from
// commencement) when one is present. Zero rentable SF yields zero recovery
// rather than a divide.
func recoveryIncomeFor(lease *models.LeaseData, rentableSF float64, opex models.OperatingExpenses, periodDate time.Time) float64 {
	rec := lease.ExpenseRecovery
	if rec == nil || rec.Structure == models.RecoveryGross {
		return 0
	}
	if rentableSF <= 0 || lease.LeasedSF <= 0 {
		return 0
	}

	share := lease.LeasedSF / rentableSF
	billed := opex.PropertyTax*rec.PropertyTaxPct*share +
		opex.Insurance*rec.InsurancePct*share +
		opex.CAM*rec.CAMPct*share +
		opex.Utilities*rec.UtilitiesPct*share

	if rec.ExpenseCapPSF > 0 {
		years := monthsBetween(lease.CommencementDate, periodDate) / 12
		capFactor := math.Pow(1.0+rec.CapEscalationPct, float64(years))
		monthlyCap := rec.ExpenseCapPSF * capFactor * lease.LeasedSF / 12.0
		if billed > monthlyCap {
			billed = monthlyCap
		}
	}
	return billed
}

// monthsBetween counts whole calendar months from a to b, floored at zero.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
