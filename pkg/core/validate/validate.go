// Package validate provides reusable underwriting validation utilities.
// These functions can be called from tests, API handlers, or CLI code
// to verify input integrity before a projection runs.
package validate

import (
	"fmt"

	"landscape_underwriting/pkg/models"
)

// Issue describes one validation failure on an input payload.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PropertyReport contains all input validation results for a property.
type PropertyReport struct {
	PropertyID int     `json:"property_id"`
	Issues     []Issue `json:"issues,omitempty"`
	Valid      bool    `json:"valid"`
}

func (r *PropertyReport) add(field, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	r.Valid = false
}

// ValidateProperty checks a property and its rent roll for values that would
// produce a meaningless projection.
func ValidateProperty(p *models.PropertyData) *PropertyReport {
	report := &PropertyReport{Valid: true}
	if p == nil {
		report.add("property", "property is nil")
		return report
	}
	report.PropertyID = p.ID

	if p.RentableSF <= 0 {
		report.add("rentable_sf", "rentable SF must be positive, got %.0f", p.RentableSF)
	}
	if p.AcquisitionPrice < 0 {
		report.add("acquisition_price", "acquisition price cannot be negative, got %.2f", p.AcquisitionPrice)
	}

	var activeSF float64
	for i, lease := range p.Leases {
		field := fmt.Sprintf("leases[%d]", i)

		if lease.ExpirationDate.Before(lease.CommencementDate) {
			report.add(field, "expiration %s precedes commencement %s",
				lease.ExpirationDate.Format("2006-01-02"), lease.CommencementDate.Format("2006-01-02"))
		}
		if lease.Status != models.LeaseActive {
			continue
		}
		activeSF += lease.LeasedSF

		if lease.LeasedSF <= 0 {
			report.add(field, "active lease has non-positive leased SF %.0f", lease.LeasedSF)
		}
		if p.RentableSF > 0 && lease.LeasedSF > p.RentableSF {
			report.add(field, "leased SF %.0f exceeds rentable SF %.0f", lease.LeasedSF, p.RentableSF)
		}
		if len(lease.BaseRentPeriods) == 0 {
			report.add(field, "active lease has no base rent periods")
		}
		if esc := lease.Escalation; esc != nil {
			if esc.RatePct < 0 {
				report.add(field, "escalation rate cannot be negative, got %.4f", esc.RatePct)
			}
			if esc.RatePct >= 1 {
				report.add(field, "escalation rate %.2f looks like a percent; expected a decimal", esc.RatePct)
			}
			if esc.Type == models.EscalationCPI && esc.CapPct > 0 && esc.CapPct < esc.FloorPct {
				report.add(field, "CPI cap %.4f below floor %.4f", esc.CapPct, esc.FloorPct)
			}
		}
		if pr := lease.PercentageRent; pr != nil {
			if pr.RatePct < 0 || pr.RatePct >= 1 {
				report.add(field, "percentage rent rate %.4f outside (0, 1)", pr.RatePct)
			}
			if pr.BreakpointSales < 0 {
				report.add(field, "breakpoint sales cannot be negative, got %.2f", pr.BreakpointSales)
			}
		}
		if rec := lease.ExpenseRecovery; rec != nil {
			for _, pct := range []struct {
				name  string
				value float64
			}{
				{"property_tax_pct", rec.PropertyTaxPct},
				{"insurance_pct", rec.InsurancePct},
				{"cam_pct", rec.CAMPct},
				{"utilities_pct", rec.UtilitiesPct},
			} {
				if pct.value < 0 || pct.value > 1 {
					report.add(field, "recovery %s %.4f outside [0, 1]", pct.name, pct.value)
				}
			}
		}
	}

	if p.RentableSF > 0 && activeSF > p.RentableSF {
		report.add("leases", "active leased SF %.0f exceeds rentable SF %.0f", activeSF, p.RentableSF)
	}

	return report
}

// DebtReport contains validation results for loan terms.
type DebtReport struct {
	Issues []Issue `json:"issues,omitempty"`
	Valid  bool    `json:"valid"`
}

func (r *DebtReport) add(field, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	r.Valid = false
}

// ValidateDebt checks loan terms against the acquisition price. A nil debt
// block is valid (all-equity deal).
func ValidateDebt(d *models.DebtAssumptions, acquisitionPrice float64) *DebtReport {
	report := &DebtReport{Valid: true}
	if d == nil {
		return report
	}

	if d.LoanAmount < 0 {
		report.add("loan_amount", "loan amount cannot be negative, got %.2f", d.LoanAmount)
	}
	if d.InterestRatePct < 0 {
		report.add("interest_rate_pct", "interest rate cannot be negative, got %.4f", d.InterestRatePct)
	}
	if d.InterestRatePct >= 1 {
		report.add("interest_rate_pct", "interest rate %.2f looks like a percent; expected a decimal", d.InterestRatePct)
	}
	if d.LoanAmount > 0 && d.AmortizationYears <= 0 {
		report.add("amortization_years", "amortization term must be positive for a non-zero loan")
	}
	if d.InterestOnlyMonths < 0 {
		report.add("interest_only_months", "interest-only period cannot be negative, got %d", d.InterestOnlyMonths)
	}
	if d.AmortizationYears > 0 && d.InterestOnlyMonths > d.AmortizationYears*12 {
		report.add("interest_only_months", "interest-only period %d months exceeds loan term %d months",
			d.InterestOnlyMonths, d.AmortizationYears*12)
	}
	if acquisitionPrice > 0 && d.LoanAmount > acquisitionPrice {
		report.add("loan_amount", "loan %.2f exceeds acquisition price %.2f", d.LoanAmount, acquisitionPrice)
	}

	return report
}
