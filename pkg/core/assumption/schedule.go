package assumption

import (
	"time"

	"landscape_underwriting/pkg/core/cashflow"
	"landscape_underwriting/pkg/models"
)

// Schedules expands the annual expense and capital drivers into the
// per-period schedules the projector consumes. Amounts are level across the
// hold; TI allowance is spread evenly over the whole term rather than lumped
// at rollover.
func Schedules(a BaselineAssumptions, rentableSF float64, periods int) ([]models.OperatingExpenses, []models.CapitalItems) {
	opexMonth := models.OperatingExpenses{
		PropertyTax:        a.PropertyTaxAnnual / 12.0,
		Insurance:          a.InsuranceAnnual / 12.0,
		CAM:                a.CAMAnnual / 12.0,
		Utilities:          a.UtilitiesAnnual / 12.0,
		RepairsMaintenance: a.RepairsMaintenanceAnnual / 12.0,
	}

	annualRent := a.RentPSFAnnual * rentableSF
	capMonth := models.CapitalItems{
		Reserves:           a.CapitalReservePSF * rentableSF / 12.0,
		LeasingCommissions: annualRent * a.LeasingCommissionPct / 12.0,
	}
	if periods > 0 {
		capMonth.TenantImprovements = a.TIAllowancePSF * rentableSF / float64(periods)
	}

	opex := make([]models.OperatingExpenses, periods)
	capital := make([]models.CapitalItems, periods)
	for i := 0; i < periods; i++ {
		opex[i] = opexMonth
		capital[i] = capMonth
	}
	return opex, capital
}

// ProFormaLease synthesizes a single full-building lease from the rent and
// escalation drivers. The sensitivity engine projects on this lease so that
// perturbing rent_psf or escalation_pct actually moves the cash flows.
func ProFormaLease(a BaselineAssumptions, rentableSF float64, startDate time.Time) models.LeaseData {
	periods := a.PeriodCount()
	end := startDate.AddDate(0, periods, 0)
	return models.LeaseData{
		ID:               0,
		SpaceID:          "PRO-FORMA",
		TenantName:       "Pro Forma Tenant",
		LeaseType:        "office",
		Status:           models.LeaseActive,
		CommencementDate: startDate,
		ExpirationDate:   end,
		LeasedSF:         rentableSF,
		BaseRentPeriods: []models.BaseRentPeriod{
			{
				StartDate:     startDate,
				EndDate:       end,
				AnnualRent:    a.RentPSFAnnual * rentableSF,
				RentPSFAnnual: a.RentPSFAnnual,
			},
		},
		Escalation: &models.Escalation{
			Type:            models.EscalationFixed,
			RatePct:         a.EscalationPct,
			FrequencyMonths: 12,
		},
	}
}

// BuildProjectionInput assembles a projector input from the property's
// actual rent roll plus the assumption knobs. Properties with no active
// leases fall back to the pro-forma lease when a rent PSF driver is set;
// otherwise they project as vacant, which is a valid (if uninteresting)
// underwriting state.
func BuildProjectionInput(property *models.PropertyData, a BaselineAssumptions, annualDebtService float64, startDate time.Time) cashflow.ProjectionInput {
	periods := a.PeriodCount()
	opex, capital := Schedules(a, property.RentableSF, periods)

	prop := property
	if len(property.ActiveLeases()) == 0 && a.RentPSFAnnual > 0 {
		clone := *property
		clone.Leases = []models.LeaseData{ProFormaLease(a, property.RentableSF, startDate)}
		prop = &clone
	}

	return cashflow.ProjectionInput{
		Property:          prop,
		StartDate:         startDate,
		PeriodCount:       periods,
		OpexSchedule:      opex,
		CapitalSchedule:   capital,
		AnnualDebtService: annualDebtService,
		VacancyPct:        a.VacancyPct,
		CreditLossPct:     a.CreditLossPct,
		ManagementFeePct:  a.ManagementFeePct,
	}
}

// BuildProFormaInput assembles a projector input entirely from the
// assumption record, using the property only for its square footage. This
// is the pipeline the sensitivity engine re-runs per scenario.
func BuildProFormaInput(property *models.PropertyData, a BaselineAssumptions, annualDebtService float64, startDate time.Time) cashflow.ProjectionInput {
	periods := a.PeriodCount()
	opex, capital := Schedules(a, property.RentableSF, periods)

	clone := *property
	clone.Leases = []models.LeaseData{ProFormaLease(a, property.RentableSF, startDate)}

	return cashflow.ProjectionInput{
		Property:          &clone,
		StartDate:         startDate,
		PeriodCount:       periods,
		OpexSchedule:      opex,
		CapitalSchedule:   capital,
		AnnualDebtService: annualDebtService,
		VacancyPct:        a.VacancyPct,
		CreditLossPct:     a.CreditLossPct,
		ManagementFeePct:  a.ManagementFeePct,
	}
}
