package cashflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landscape_underwriting/pkg/models"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testProperty(leases ...models.LeaseData) *models.PropertyData {
	return &models.PropertyData{
		ID:               1,
		Name:             "Test Plaza",
		RentableSF:       10_000,
		AcquisitionPrice: 10_000_000,
		Leases:           leases,
	}
}

func flatLease(monthlyRent float64, months int) models.LeaseData {
	end := testStart.AddDate(0, months, 0)
	return models.LeaseData{
		ID:               1,
		TenantName:       "Acme",
		Status:           models.LeaseActive,
		CommencementDate: testStart,
		ExpirationDate:   end,
		LeasedSF:         5_000,
		BaseRentPeriods: []models.BaseRentPeriod{
			{StartDate: testStart, EndDate: end, MonthlyRent: monthlyRent},
		},
	}
}

func TestProject_FlatLeaseWaterfall(t *testing.T) {
	lease := flatLease(10_000, 24)
	flows := Project(ProjectionInput{
		Property:      testProperty(lease),
		StartDate:     testStart,
		PeriodCount:   12,
		VacancyPct:    0.05,
		CreditLossPct: 0.02,
	})
	require.Len(t, flows, 12)

	first := flows[0]
	assert.InDelta(t, 10_000, first.GrossPotentialRent, 1e-9)
	assert.InDelta(t, 500, first.VacancyLoss, 1e-9)
	assert.InDelta(t, 200, first.CreditLoss, 1e-9)
	assert.InDelta(t, 9_300, first.EffectiveGrossIncome, 1e-9)
	// No opex, no fee, no capital, no debt: everything flows through.
	assert.InDelta(t, 9_300, first.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 9_300, first.LeveredCashFlow, 1e-9)
}

func TestProject_EscalationMonotonicity(t *testing.T) {
	lease := flatLease(10_000, 72)
	lease.Escalation = &models.Escalation{
		Type:            models.EscalationFixed,
		RatePct:         0.03,
		FrequencyMonths: 12,
	}

	flows := Project(ProjectionInput{
		Property:    testProperty(lease),
		StartDate:   testStart,
		PeriodCount: 60,
	})
	require.Len(t, flows, 60)

	for i := 1; i < len(flows); i++ {
		assert.GreaterOrEqual(t, flows[i].GrossPotentialRent, flows[i-1].GrossPotentialRent,
			"rent must never step down under a positive fixed escalation (period %d)", i+1)
	}

	// Year 1 is unescalated; year 2 carries exactly one 3% step.
	assert.InDelta(t, 10_000, flows[0].GrossPotentialRent, 1e-9)
	assert.InDelta(t, 10_300, flows[12].GrossPotentialRent, 1e-9)
	assert.InDelta(t, 10_000*1.03*1.03, flows[24].GrossPotentialRent, 1e-9)
}

func TestProject_CPIClamping(t *testing.T) {
	lease := flatLease(10_000, 48)
	// Nominal CPI of 10% must be capped at 4%.
	lease.Escalation = &models.Escalation{
		Type:            models.EscalationCPI,
		RatePct:         0.10,
		FrequencyMonths: 12,
		FloorPct:        0.02,
		CapPct:          0.04,
	}

	flows := Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 26})
	assert.InDelta(t, 10_400, flows[12].GrossPotentialRent, 1e-9)
	assert.InDelta(t, 10_000*1.04*1.04, flows[24].GrossPotentialRent, 1e-9)

	// Nominal CPI below the floor gets lifted to the floor.
	lease.Escalation.RatePct = 0.005
	flows = Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 14})
	assert.InDelta(t, 10_200, flows[12].GrossPotentialRent, 1e-9)
}

func TestProject_PercentageRent(t *testing.T) {
	lease := flatLease(10_000, 24)
	lease.PercentageRent = &models.PercentageRent{
		BreakpointSales: 1_000_000,
		RatePct:         0.05,
		PriorYearSales:  1_200_000,
	}

	flows := Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 12})
	// Flat sales: (1.2M - 1.0M) * 5% / 12 per month.
	assert.InDelta(t, 200_000*0.05/12, flows[0].PercentageRent, 1e-6)
	assert.InDelta(t, 200_000*0.05/12, flows[11].PercentageRent, 1e-6)

	// Sales below the breakpoint produce no overage, never negative rent.
	lease.PercentageRent.PriorYearSales = 800_000
	flows = Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 12})
	assert.Zero(t, flows[0].PercentageRent)
}

func TestProject_RecoveryIncomeProRata(t *testing.T) {
	lease := flatLease(10_000, 24) // 5,000 SF of 10,000 SF: 50% share
	lease.ExpenseRecovery = &models.ExpenseRecovery{
		Structure:      models.RecoveryNNN,
		PropertyTaxPct: 1.0,
		InsurancePct:   1.0,
		CAMPct:         1.0,
		UtilitiesPct:   0,
	}

	opex := make([]models.OperatingExpenses, 12)
	for i := range opex {
		opex[i] = models.OperatingExpenses{PropertyTax: 1_000, Insurance: 400, CAM: 600, Utilities: 300}
	}

	flows := Project(ProjectionInput{
		Property:     testProperty(lease),
		StartDate:    testStart,
		PeriodCount:  12,
		OpexSchedule: opex,
	})
	// 50% of (1000 + 400 + 600); utilities not recoverable here.
	assert.InDelta(t, 1_000, flows[0].RecoveryIncome, 1e-9)
}

func TestProject_RecoveryCapEnforcement(t *testing.T) {
	lease := flatLease(10_000, 48)
	lease.ExpenseRecovery = &models.ExpenseRecovery{
		Structure:        models.RecoveryNNN,
		CAMPct:           1.0,
		ExpenseCapPSF:    1.20,
		CapEscalationPct: 0.03,
	}

	opex := make([]models.OperatingExpenses, 24)
	for i := range opex {
		opex[i] = models.OperatingExpenses{CAM: 10_000} // 50% share = 5,000, far above cap
	}

	flows := Project(ProjectionInput{
		Property:     testProperty(lease),
		StartDate:    testStart,
		PeriodCount:  24,
		OpexSchedule: opex,
	})

	// Year-1 cap: 1.20 PSF × 5,000 SF / 12.
	capMonthly := 1.20 * 5_000 / 12.0
	assert.InDelta(t, capMonthly, flows[0].RecoveryIncome, 1e-9)
	// Year-2 cap escalates at its own 3% rate.
	assert.InDelta(t, capMonthly*1.03, flows[12].RecoveryIncome, 1e-9)
}

func TestProject_GrossLeaseDefaultsToZeroRecovery(t *testing.T) {
	lease := flatLease(10_000, 24)
	lease.ExpenseRecovery = nil // absent structure means Gross

	opex := []models.OperatingExpenses{{CAM: 5_000}}
	flows := Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 1, OpexSchedule: opex})
	assert.Zero(t, flows[0].RecoveryIncome)
}

func TestProject_ZeroRentableSF(t *testing.T) {
	lease := flatLease(10_000, 24)
	lease.ExpenseRecovery = &models.ExpenseRecovery{Structure: models.RecoveryNNN, CAMPct: 1.0}

	prop := testProperty(lease)
	prop.RentableSF = 0

	opex := []models.OperatingExpenses{{CAM: 5_000}}
	flows := Project(ProjectionInput{Property: prop, StartDate: testStart, PeriodCount: 1, OpexSchedule: opex})
	// Must not divide by the zero denominator; recovery degrades to zero.
	assert.Zero(t, flows[0].RecoveryIncome)
}

func TestProject_LeaseOutsideRentPeriods(t *testing.T) {
	// A lease whose rent schedule ends mid-hold contributes zero afterward.
	lease := flatLease(10_000, 6)
	flows := Project(ProjectionInput{Property: testProperty(lease), StartDate: testStart, PeriodCount: 12})
	assert.InDelta(t, 10_000, flows[0].GrossPotentialRent, 1e-9)
	assert.Zero(t, flows[11].GrossPotentialRent)
}

func TestProject_InactiveLeasesExcluded(t *testing.T) {
	active := flatLease(10_000, 24)
	expired := flatLease(99_999, 24)
	expired.ID = 2
	expired.Status = models.LeaseExpired

	flows := Project(ProjectionInput{Property: testProperty(active, expired), StartDate: testStart, PeriodCount: 1})
	assert.InDelta(t, 10_000, flows[0].GrossPotentialRent, 1e-9)
}

func TestProject_ManagementFeeAndDebt(t *testing.T) {
	lease := flatLease(10_000, 24)
	capital := []models.CapitalItems{{Reserves: 300}}
	flows := Project(ProjectionInput{
		Property:          testProperty(lease),
		StartDate:         testStart,
		PeriodCount:       1,
		CapitalSchedule:   capital,
		AnnualDebtService: 60_000,
		ManagementFeePct:  0.03,
	})

	f := flows[0]
	assert.InDelta(t, 300, f.ManagementFee, 1e-9)          // 3% of 10,000 EGI
	assert.InDelta(t, 9_700, f.NetOperatingIncome, 1e-9)   // EGI less fee
	assert.InDelta(t, 9_400, f.CashFlowBeforeDebt, 1e-9)   // less reserves
	assert.InDelta(t, 5_000, f.DebtService, 1e-9)          // 60,000 / 12
	assert.InDelta(t, 4_400, f.LeveredCashFlow, 1e-9)
}
