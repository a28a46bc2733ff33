// Package models holds the shared value objects for the underwriting engine.
// Everything here is rebuilt fresh from database rows (or a request payload) on
// every call; nothing is cached or mutated across requests.
package models

import (
	"time"
)

// LeaseStatus gates participation in cash-flow projections.
type LeaseStatus string

const (
	LeaseActive   LeaseStatus = "Active"
	LeaseExpired  LeaseStatus = "Expired"
	LeasePending  LeaseStatus = "Pending"
	LeaseVacant   LeaseStatus = "Vacant"
	LeaseHoldover LeaseStatus = "Holdover"
)

// EscalationType selects the rent escalation rule.
type EscalationType string

const (
	EscalationFixed EscalationType = "Fixed Percentage"
	EscalationCPI   EscalationType = "CPI"
	EscalationNone  EscalationType = "None"
)

// RecoveryStructure tags how operating expenses pass through to the tenant.
type RecoveryStructure string

const (
	RecoveryGross    RecoveryStructure = "Gross"
	RecoveryNet      RecoveryStructure = "Net"
	RecoveryNNN      RecoveryStructure = "NNN"
	RecoveryModified RecoveryStructure = "Modified Gross"
	RecoveryBaseYear RecoveryStructure = "Base Year Stop"
)

// PropertyData identifies a commercial property and its rent roll.
type PropertyData struct {
	ID               int         `json:"id"`
	Name             string      `json:"name"`
	RentableSF       float64     `json:"rentable_sf"`
	AcquisitionPrice float64     `json:"acquisition_price"`
	Leases           []LeaseData `json:"leases"`
}

// ActiveLeases filters the rent roll to leases that participate in projections.
func (p *PropertyData) ActiveLeases() []LeaseData {
	active := make([]LeaseData, 0, len(p.Leases))
	for _, l := range p.Leases {
		if l.Status == LeaseActive {
			active = append(active, l)
		}
	}
	return active
}

// LeaseData is one tenant's lease. ExpenseRecovery == nil means Gross
// (landlord pays all opex, zero recovery).
type LeaseData struct {
	ID               int              `json:"id"`
	SpaceID          string           `json:"space_id"`
	TenantName       string           `json:"tenant_name"`
	LeaseType        string           `json:"lease_type"` // office, retail, industrial, ...
	Status           LeaseStatus      `json:"status"`
	CommencementDate time.Time        `json:"commencement_date"`
	ExpirationDate   time.Time        `json:"expiration_date"`
	LeasedSF         float64          `json:"leased_sf"`
	BaseRentPeriods  []BaseRentPeriod `json:"base_rent_periods"`
	Escalation       *Escalation      `json:"escalation,omitempty"`
	PercentageRent   *PercentageRent  `json:"percentage_rent,omitempty"`
	ExpenseRecovery  *ExpenseRecovery `json:"expense_recovery,omitempty"`
}

// BaseRentPeriod is a date range with its rent quoted three ways. Periods are
// assumed contiguous and non-overlapping; this is not validated.
type BaseRentPeriod struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	AnnualRent    float64   `json:"annual_rent"`
	MonthlyRent   float64   `json:"monthly_rent"`
	RentPSFAnnual float64   `json:"rent_psf_annual"`
}

// Contains reports whether d falls within the period's date range (inclusive).
func (b *BaseRentPeriod) Contains(d time.Time) bool {
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// MonthlyAmount resolves the period's rent to a monthly dollar figure,
// preferring the most specific quote available.
func (b *BaseRentPeriod) MonthlyAmount(leasedSF float64) float64 {
	if b.MonthlyRent > 0 {
		return b.MonthlyRent
	}
	if b.AnnualRent > 0 {
		return b.AnnualRent / 12.0
	}
	return b.RentPSFAnnual * leasedSF / 12.0
}

// Escalation is the rent escalation rule for a lease. For CPI escalations the
// applied rate is clamped to [FloorPct, CapPct] each cycle.
type Escalation struct {
	Type            EscalationType `json:"type"`
	RatePct         float64        `json:"rate_pct"`         // decimal, e.g. 0.03
	FrequencyMonths int            `json:"frequency_months"` // typically 12
	FloorPct        float64        `json:"floor_pct"`        // CPI only
	CapPct          float64        `json:"cap_pct"`          // CPI only
}

// AppliedRate returns the per-cycle escalation rate after CPI clamping.
func (e *Escalation) AppliedRate() float64 {
	if e == nil || e.Type == EscalationNone {
		return 0
	}
	rate := e.RatePct
	if e.Type == EscalationCPI {
		if e.CapPct > 0 && rate > e.CapPct {
			rate = e.CapPct
		}
		if rate < e.FloorPct {
			rate = e.FloorPct
		}
	}
	return rate
}

// PercentageRent models retail overage rent above a breakpoint.
// SalesGrowthPct drives the projected trailing-sales pace forward from the
// PriorYearSales seed.
type PercentageRent struct {
	BreakpointSales float64 `json:"breakpoint_sales"`
	RatePct         float64 `json:"rate_pct"`
	PriorYearSales  float64 `json:"prior_year_sales"`
	SalesGrowthPct  float64 `json:"sales_growth_pct"`
}

// ExpenseRecovery holds per-category recovery percentages plus an optional
// expense cap PSF with its own escalation rate. A cap of zero means uncapped.
type ExpenseRecovery struct {
	Structure        RecoveryStructure `json:"structure"`
	PropertyTaxPct   float64           `json:"property_tax_pct"`
	InsurancePct     float64           `json:"insurance_pct"`
	CAMPct           float64           `json:"cam_pct"`
	UtilitiesPct     float64           `json:"utilities_pct"`
	ExpenseCapPSF    float64           `json:"expense_cap_psf"`
	CapEscalationPct float64           `json:"cap_escalation_pct"`
}

// OperatingExpenses are one period's (monthly) expense line items. The
// management fee is a percentage of EGI and is computed by the projector,
// not carried here.
type OperatingExpenses struct {
	PropertyTax        float64 `json:"property_tax"`
	Insurance          float64 `json:"insurance"`
	CAM                float64 `json:"cam"`
	Utilities          float64 `json:"utilities"`
	RepairsMaintenance float64 `json:"repairs_maintenance"`
	Other              float64 `json:"other"`
}

// Total sums all expense categories for the period.
func (o OperatingExpenses) Total() float64 {
	return o.PropertyTax + o.Insurance + o.CAM + o.Utilities + o.RepairsMaintenance + o.Other
}

// CapitalItems are one period's below-NOI items. They reduce levered cash
// flow but never NOI.
type CapitalItems struct {
	Reserves           float64 `json:"reserves"`
	TenantImprovements float64 `json:"tenant_improvements"`
	LeasingCommissions float64 `json:"leasing_commissions"`
}

// Total sums the period's capital items.
func (c CapitalItems) Total() float64 {
	return c.Reserves + c.TenantImprovements + c.LeasingCommissions
}

// DebtAssumptions describes the acquisition loan. AnnualDebtService is derived
// by the debt service calculator and carried alongside the raw terms.
type DebtAssumptions struct {
	LoanAmount         float64 `json:"loan_amount"`
	InterestRatePct    float64 `json:"interest_rate_pct"` // decimal, e.g. 0.055
	AmortizationYears  int     `json:"amortization_years"`
	InterestOnlyMonths int     `json:"interest_only_months"`
	AnnualDebtService  float64 `json:"annual_debt_service"`
}
