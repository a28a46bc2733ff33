// Package calc provides deterministic financial primitives for the
// underwriting model: debt service, amortization, and IRR/NPV root-finding.
package calc

import (
	"math"
	"time"
)

// =============================================================================
// DEBT SERVICE
// =============================================================================

// DebtService holds the derived payment figures for a loan.
type DebtService struct {
	MonthlyPayment    float64 `json:"monthly_payment"`
	AnnualDebtService float64 `json:"annual_debt_service"`
}

// ComputeDebtService derives the level payment for a loan.
//
// FORMULA: P = L × r × (1+r)^n / ((1+r)^n − 1)
//
// Where:
//   - L = loan amount
//   - r = monthly rate (annualRate / 12)
//   - n = amortization term in months
//
// When interestOnlyMonths > 0 the loan is in its interest-only window and the
// payment is L × r. A zero rate degenerates to straight-line L / n.
func ComputeDebtService(loanAmount, annualRate float64, amortizationYears, interestOnlyMonths int) DebtService {
	if loanAmount <= 0 || amortizationYears <= 0 {
		return DebtService{}
	}

	monthlyRate := annualRate / 12.0
	n := float64(amortizationYears * 12)

	var payment float64
	switch {
	case interestOnlyMonths > 0:
		payment = loanAmount * monthlyRate
	case monthlyRate == 0:
		payment = loanAmount / n
	default:
		compound := math.Pow(1.0+monthlyRate, n)
		payment = loanAmount * monthlyRate * compound / (compound - 1.0)
	}

	return DebtService{
		MonthlyPayment:    payment,
		AnnualDebtService: payment * 12.0,
	}
}

// =============================================================================
// AMORTIZATION
// =============================================================================

// AmortizationEntry is one month of an amortization schedule.
type AmortizationEntry struct {
	Period           int       `json:"period"`
	DueDate          time.Time `json:"due_date"`
	Payment          float64   `json:"payment"`
	Interest         float64   `json:"interest"`
	Principal        float64   `json:"principal"`
	RemainingBalance float64   `json:"remaining_balance"`
}

// AmortizationSchedule builds the full monthly schedule for a level-payment
// loan, clamping the final payment so the balance lands on exactly zero.
func AmortizationSchedule(loanAmount, annualRate float64, amortizationYears int, startDate time.Time) []AmortizationEntry {
	if loanAmount <= 0 || amortizationYears <= 0 {
		return nil
	}

	ds := ComputeDebtService(loanAmount, annualRate, amortizationYears, 0)
	monthlyRate := annualRate / 12.0
	n := amortizationYears * 12

	schedule := make([]AmortizationEntry, 0, n)
	balance := loanAmount
	for p := 1; p <= n; p++ {
		interest := balance * monthlyRate
		principal := ds.MonthlyPayment - interest
		if principal > balance {
			principal = balance
		}
		balance -= principal
		if p == n {
			// Absorb residual float drift into the last payment.
			principal += balance
			balance = 0
		}
		schedule = append(schedule, AmortizationEntry{
			Period:           p,
			DueDate:          startDate.AddDate(0, p, 0),
			Payment:          interest + principal,
			Interest:         interest,
			Principal:        principal,
			RemainingBalance: balance,
		})
	}
	return schedule
}

// LoanBalanceAt returns the outstanding balance after monthsElapsed payments.
// Months inside the interest-only window pay no principal.
func LoanBalanceAt(loanAmount, annualRate float64, amortizationYears, interestOnlyMonths, monthsElapsed int) float64 {
	if loanAmount <= 0 || monthsElapsed <= 0 || amortizationYears <= 0 {
		return loanAmount
	}

	amortizingMonths := monthsElapsed - interestOnlyMonths
	if amortizingMonths <= 0 {
		return loanAmount
	}

	monthlyRate := annualRate / 12.0
	n := float64(amortizationYears * 12)
	if monthlyRate == 0 {
		balance := loanAmount - loanAmount/n*float64(amortizingMonths)
		if balance < 0 {
			balance = 0
		}
		return balance
	}

	// Closed-form remaining balance: B_k = L × ((1+r)^n − (1+r)^k) / ((1+r)^n − 1)
	compoundN := math.Pow(1.0+monthlyRate, n)
	compoundK := math.Pow(1.0+monthlyRate, float64(amortizingMonths))
	balance := loanAmount * (compoundN - compoundK) / (compoundN - 1.0)
	if balance < 0 {
		balance = 0
	}
	return balance
}
