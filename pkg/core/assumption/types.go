// Package assumption defines the flat record of tunable underwriting drivers
// and the machinery around it: named defaults, typo-proof override merging,
// and the per-driver accessor table the sensitivity engine perturbs.
package assumption

// Default values applied when a caller leaves a knob unset.
const (
	DefaultHoldPeriodYears      = 10
	DefaultExitCapRate          = 0.065
	DefaultDiscountRate         = 0.10
	DefaultVacancyPct           = 0.05
	DefaultCreditLossPct        = 0.02
	DefaultManagementFeePct     = 0.03
	DefaultEscalationPct        = 0.03
	DefaultCapitalReservePSF    = 0.25
	DefaultLeasingCommissionPct = 0.04
)

// BaselineAssumptions is the flat perturbation surface for the sensitivity
// engine: every tunable driver spanning revenue, expenses, and capital, with
// explicit fields so a mistyped driver name cannot silently no-op.
// Dollar fields are annual amounts in the base currency; percentage fields
// are decimals.
type BaselineAssumptions struct {
	// Revenue
	RentPSFAnnual float64 `json:"rent_psf_annual"`
	EscalationPct float64 `json:"escalation_pct"`
	VacancyPct    float64 `json:"vacancy_pct"`
	CreditLossPct float64 `json:"credit_loss_pct"`

	// Operating expenses (annual dollars)
	PropertyTaxAnnual        float64 `json:"property_tax_annual"`
	InsuranceAnnual          float64 `json:"insurance_annual"`
	CAMAnnual                float64 `json:"cam_annual"`
	UtilitiesAnnual          float64 `json:"utilities_annual"`
	RepairsMaintenanceAnnual float64 `json:"repairs_maintenance_annual"`
	ManagementFeePct         float64 `json:"management_fee_pct"`

	// Capital
	CapitalReservePSF    float64 `json:"capital_reserve_psf"`
	TIAllowancePSF       float64 `json:"ti_allowance_psf"`
	LeasingCommissionPct float64 `json:"leasing_commission_pct"`

	// Exit / hold
	ExitCapRate     float64 `json:"exit_cap_rate"`
	HoldPeriodYears float64 `json:"hold_period_years"`
	DiscountRate    float64 `json:"discount_rate"`
}

// Defaults returns the baseline with every knob at its default constant.
// Expense dollars and rent PSF default to zero; they are property-specific.
func Defaults() BaselineAssumptions {
	return BaselineAssumptions{
		EscalationPct:        DefaultEscalationPct,
		VacancyPct:           DefaultVacancyPct,
		CreditLossPct:        DefaultCreditLossPct,
		ManagementFeePct:     DefaultManagementFeePct,
		CapitalReservePSF:    DefaultCapitalReservePSF,
		LeasingCommissionPct: DefaultLeasingCommissionPct,
		ExitCapRate:          DefaultExitCapRate,
		HoldPeriodYears:      DefaultHoldPeriodYears,
		DiscountRate:         DefaultDiscountRate,
	}
}

// Overrides is the partial form of BaselineAssumptions used by API callers.
// Only non-nil fields replace the baseline value, and the field set is
// checked at compile time rather than merged through loose maps.
type Overrides struct {
	RentPSFAnnual            *float64 `json:"rent_psf_annual,omitempty"`
	EscalationPct            *float64 `json:"escalation_pct,omitempty"`
	VacancyPct               *float64 `json:"vacancy_pct,omitempty"`
	CreditLossPct            *float64 `json:"credit_loss_pct,omitempty"`
	PropertyTaxAnnual        *float64 `json:"property_tax_annual,omitempty"`
	InsuranceAnnual          *float64 `json:"insurance_annual,omitempty"`
	CAMAnnual                *float64 `json:"cam_annual,omitempty"`
	UtilitiesAnnual          *float64 `json:"utilities_annual,omitempty"`
	RepairsMaintenanceAnnual *float64 `json:"repairs_maintenance_annual,omitempty"`
	ManagementFeePct         *float64 `json:"management_fee_pct,omitempty"`
	CapitalReservePSF        *float64 `json:"capital_reserve_psf,omitempty"`
	TIAllowancePSF           *float64 `json:"ti_allowance_psf,omitempty"`
	LeasingCommissionPct     *float64 `json:"leasing_commission_pct,omitempty"`
	ExitCapRate              *float64 `json:"exit_cap_rate,omitempty"`
	HoldPeriodYears          *float64 `json:"hold_period_years,omitempty"`
	DiscountRate             *float64 `json:"discount_rate,omitempty"`
}

// Merge applies the non-nil override fields onto a copy of the baseline.
func Merge(base BaselineAssumptions, o *Overrides) BaselineAssumptions {
	if o == nil {
		return base
	}
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&base.RentPSFAnnual, o.RentPSFAnnual)
	apply(&base.EscalationPct, o.EscalationPct)
	apply(&base.VacancyPct, o.VacancyPct)
	apply(&base.CreditLossPct, o.CreditLossPct)
	apply(&base.PropertyTaxAnnual, o.PropertyTaxAnnual)
	apply(&base.InsuranceAnnual, o.InsuranceAnnual)
	apply(&base.CAMAnnual, o.CAMAnnual)
	apply(&base.UtilitiesAnnual, o.UtilitiesAnnual)
	apply(&base.RepairsMaintenanceAnnual, o.RepairsMaintenanceAnnual)
	apply(&base.ManagementFeePct, o.ManagementFeePct)
	apply(&base.CapitalReservePSF, o.CapitalReservePSF)
	apply(&base.TIAllowancePSF, o.TIAllowancePSF)
	apply(&base.LeasingCommissionPct, o.LeasingCommissionPct)
	apply(&base.ExitCapRate, o.ExitCapRate)
	apply(&base.HoldPeriodYears, o.HoldPeriodYears)
	apply(&base.DiscountRate, o.DiscountRate)
	return base
}

// PeriodCount converts the hold period to whole monthly periods.
func (a BaselineAssumptions) PeriodCount() int {
	months := int(a.HoldPeriodYears*12.0 + 0.5)
	if months <= 0 {
		months = DefaultHoldPeriodYears * 12
	}
	return months
}
