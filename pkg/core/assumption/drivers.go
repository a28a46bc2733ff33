package assumption

// Category groups drivers for reporting.
type Category string

const (
	CategoryRevenue Category = "revenue"
	CategoryExpense Category = "expense"
	CategoryCapital Category = "capital"
	CategoryExit    Category = "exit"
)

// Driver exposes one tunable field of BaselineAssumptions through typed
// accessors. Because Get and Set touch struct fields directly, adding or
// renaming a driver is caught by the compiler instead of failing silently
// the way string-keyed maps would.
type Driver struct {
	Name        string
	Label       string
	Category    Category
	Description string
	Get         func(*BaselineAssumptions) float64
	Set         func(*BaselineAssumptions, float64)
}

// Drivers returns the full perturbation surface in a stable order. The
// discount rate is deliberately absent: it prices the cash flows but does
// not change them, so perturbing it tells the underwriter nothing about
// the deal itself.
func Drivers() []Driver {
	return []Driver{
		{
			Name: "rent_psf", Label: "Base Rent PSF", Category: CategoryRevenue,
			Description: "Annual base rent per rentable square foot",
			Get:         func(a *BaselineAssumptions) float64 { return a.RentPSFAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.RentPSFAnnual = v },
		},
		{
			Name: "escalation_pct", Label: "Rent Escalation", Category: CategoryRevenue,
			Description: "Annual fixed rent escalation rate",
			Get:         func(a *BaselineAssumptions) float64 { return a.EscalationPct },
			Set:         func(a *BaselineAssumptions, v float64) { a.EscalationPct = v },
		},
		{
			Name: "vacancy_pct", Label: "Vacancy", Category: CategoryRevenue,
			Description: "Vacancy loss as a share of gross potential rent",
			Get:         func(a *BaselineAssumptions) float64 { return a.VacancyPct },
			Set:         func(a *BaselineAssumptions, v float64) { a.VacancyPct = v },
		},
		{
			Name: "credit_loss_pct", Label: "Credit Loss", Category: CategoryRevenue,
			Description: "Collection loss as a share of gross potential rent",
			Get:         func(a *BaselineAssumptions) float64 { return a.CreditLossPct },
			Set:         func(a *BaselineAssumptions, v float64) { a.CreditLossPct = v },
		},
		{
			Name: "property_tax", Label: "Property Tax", Category: CategoryExpense,
			Description: "Annual real estate taxes",
			Get:         func(a *BaselineAssumptions) float64 { return a.PropertyTaxAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.PropertyTaxAnnual = v },
		},
		{
			Name: "insurance", Label: "Insurance", Category: CategoryExpense,
			Description: "Annual property insurance premium",
			Get:         func(a *BaselineAssumptions) float64 { return a.InsuranceAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.InsuranceAnnual = v },
		},
		{
			Name: "cam", Label: "CAM", Category: CategoryExpense,
			Description: "Annual common area maintenance",
			Get:         func(a *BaselineAssumptions) float64 { return a.CAMAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.CAMAnnual = v },
		},
		{
			Name: "utilities", Label: "Utilities", Category: CategoryExpense,
			Description: "Annual utilities expense",
			Get:         func(a *BaselineAssumptions) float64 { return a.UtilitiesAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.UtilitiesAnnual = v },
		},
		{
			Name: "repairs_maintenance", Label: "Repairs & Maintenance", Category: CategoryExpense,
			Description: "Annual repairs and maintenance",
			Get:         func(a *BaselineAssumptions) float64 { return a.RepairsMaintenanceAnnual },
			Set:         func(a *BaselineAssumptions, v float64) { a.RepairsMaintenanceAnnual = v },
		},
		{
			Name: "management_fee_pct", Label: "Management Fee", Category: CategoryExpense,
			Description: "Management fee as a share of effective gross income",
			Get:         func(a *BaselineAssumptions) float64 { return a.ManagementFeePct },
			Set:         func(a *BaselineAssumptions, v float64) { a.ManagementFeePct = v },
		},
		{
			Name: "capital_reserve_psf", Label: "Capital Reserves", Category: CategoryCapital,
			Description: "Annual replacement reserves per square foot",
			Get:         func(a *BaselineAssumptions) float64 { return a.CapitalReservePSF },
			Set:         func(a *BaselineAssumptions, v float64) { a.CapitalReservePSF = v },
		},
		{
			Name: "ti_allowance_psf", Label: "TI Allowance", Category: CategoryCapital,
			Description: "Tenant improvement allowance per square foot",
			Get:         func(a *BaselineAssumptions) float64 { return a.TIAllowancePSF },
			Set:         func(a *BaselineAssumptions, v float64) { a.TIAllowancePSF = v },
		},
		{
			Name: "leasing_commission_pct", Label: "Leasing Commissions", Category: CategoryCapital,
			Description: "Leasing commissions as a share of base rent",
			Get:         func(a *BaselineAssumptions) float64 { return a.LeasingCommissionPct },
			Set:         func(a *BaselineAssumptions, v float64) { a.LeasingCommissionPct = v },
		},
		{
			Name: "exit_cap_rate", Label: "Exit Cap Rate", Category: CategoryExit,
			Description: "Capitalization rate applied to terminal NOI",
			Get:         func(a *BaselineAssumptions) float64 { return a.ExitCapRate },
			Set:         func(a *BaselineAssumptions, v float64) { a.ExitCapRate = v },
		},
		{
			Name: "hold_period_years", Label: "Hold Period", Category: CategoryExit,
			Description: "Investment hold period in years",
			Get:         func(a *BaselineAssumptions) float64 { return a.HoldPeriodYears },
			Set:         func(a *BaselineAssumptions, v float64) { a.HoldPeriodYears = v },
		},
	}
}
