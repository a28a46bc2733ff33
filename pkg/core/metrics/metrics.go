// Package metrics derives investment return metrics from a projected
// cash-flow stream: levered/unlevered IRR, NPV, equity multiple,
// cash-on-cash, and average DSCR. Metrics that cannot be computed for a
// given input (no sign change, zero exit cap, unlevered deal) come back as
// nil pointers, never as ±Inf or NaN.
package metrics

import (
	"fmt"

	"landscape_underwriting/pkg/core/calc"
	"landscape_underwriting/pkg/core/cashflow"
	"landscape_underwriting/pkg/models"
)

// MetricsInput bundles the cash-flow stream and exit/financing assumptions.
type MetricsInput struct {
	CashFlows          []cashflow.PeriodCashFlow
	AcquisitionPrice   float64
	ExitCapRate        float64
	DiscountRate       float64 // effective annual
	Debt               *models.DebtAssumptions
	DispositionCostPct float64 // of gross exit value
}

// InvestmentMetrics is the full metrics bundle. Percentage metrics carry a
// parallel pre-formatted string for display.
type InvestmentMetrics struct {
	AcquisitionPrice     float64  `json:"acquisition_price"`
	TotalEquityInvested  float64  `json:"total_equity_invested"`
	DebtAmount           float64  `json:"debt_amount"`
	ExitCapRate          float64  `json:"exit_cap_rate"`
	TerminalNOI          *float64 `json:"terminal_noi"`
	ExitValue            *float64 `json:"exit_value"`
	NetReversion         *float64 `json:"net_reversion"`
	LeveredIRR           *float64 `json:"levered_irr"`
	LeveredIRRPct        string   `json:"levered_irr_pct"`
	UnleveredIRR         *float64 `json:"unlevered_irr"`
	UnleveredIRRPct      string   `json:"unlevered_irr_pct"`
	NPV                  float64  `json:"npv"`
	EquityMultiple       *float64 `json:"equity_multiple"`
	CashOnCashYear1      *float64 `json:"cash_on_cash_year_1"`
	AverageDSCR          *float64 `json:"average_dscr"`
	TotalCashDistributed float64  `json:"total_cash_distributed"`
	TotalNOI             float64  `json:"total_noi"`
}

func floatPtr(f float64) *float64 { return &f }

func formatPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v*100.0)
}

// Calculate builds the equity cash-flow vectors and derives the full metrics
// bundle. A nil result means there were no cash flows to work with.
func Calculate(input MetricsInput) *InvestmentMetrics {
	n := len(input.CashFlows)
	if n == 0 {
		return nil
	}

	var loanAmount float64
	if input.Debt != nil {
		loanAmount = input.Debt.LoanAmount
	}
	equity := input.AcquisitionPrice - loanAmount

	m := &InvestmentMetrics{
		AcquisitionPrice:    input.AcquisitionPrice,
		TotalEquityInvested: equity,
		DebtAmount:          loanAmount,
		ExitCapRate:         input.ExitCapRate,
	}

	// 1. Terminal value: annualized NOI of the final stabilized year.
	terminalNOI := 0.0
	start := n - 12
	if start < 0 {
		start = 0
	}
	for _, cf := range input.CashFlows[start:n] {
		terminalNOI += cf.NetOperatingIncome
	}
	if n-start < 12 && n-start > 0 {
		terminalNOI = terminalNOI / float64(n-start) * 12.0
	}

	var exitValue, netReversion, grossReversion float64
	haveExit := input.ExitCapRate > 0
	if haveExit {
		exitValue = terminalNOI / input.ExitCapRate
		grossReversion = exitValue * (1.0 - input.DispositionCostPct)
		balance := 0.0
		if input.Debt != nil {
			balance = calc.LoanBalanceAt(
				input.Debt.LoanAmount,
				input.Debt.InterestRatePct,
				input.Debt.AmortizationYears,
				input.Debt.InterestOnlyMonths,
				n,
			)
		}
		netReversion = grossReversion - balance
		m.TerminalNOI = floatPtr(terminalNOI)
		m.ExitValue = floatPtr(exitValue)
		m.NetReversion = floatPtr(netReversion)
	}

	// 2. Equity (levered) and unlevered cash-flow vectors, monthly.
	levered := make([]float64, n+1)
	unlevered := make([]float64, n+1)
	levered[0] = -equity
	unlevered[0] = -input.AcquisitionPrice
	for i, cf := range input.CashFlows {
		levered[i+1] = cf.LeveredCashFlow
		unlevered[i+1] = cf.CashFlowBeforeDebt
		m.TotalNOI += cf.NetOperatingIncome
	}
	if haveExit {
		levered[n] += netReversion
		unlevered[n] += grossReversion
	}

	// 3. IRR (solved monthly, reported as effective annual).
	if monthly, ok := calc.IRR(levered); ok {
		m.LeveredIRR = floatPtr(calc.AnnualizeMonthlyRate(monthly))
	}
	if monthly, ok := calc.IRR(unlevered); ok {
		m.UnleveredIRR = floatPtr(calc.AnnualizeMonthlyRate(monthly))
	}
	m.LeveredIRRPct = formatPct(m.LeveredIRR)
	m.UnleveredIRRPct = formatPct(m.UnleveredIRR)

	// 4. NPV of the equity vector at the discount rate.
	m.NPV = calc.NPV(calc.MonthlyRateFromAnnual(input.DiscountRate), levered)

	// 5. Equity multiple: total distributions over equity invested.
	var distributed float64
	for _, cf := range levered[1:] {
		if cf > 0 {
			distributed += cf
		}
	}
	m.TotalCashDistributed = distributed
	if equity > 0 {
		m.EquityMultiple = floatPtr(distributed / equity)
	}

	// 6. Cash-on-cash year 1.
	if equity > 0 {
		year1 := 0.0
		limit := 12
		if limit > n {
			limit = n
		}
		for _, cf := range input.CashFlows[:limit] {
			year1 += cf.LeveredCashFlow
		}
		m.CashOnCashYear1 = floatPtr(year1 / equity)
	}

	// 7. Average DSCR over periods with debt service. Nil when unlevered.
	var dscrSum float64
	var dscrCount int
	for _, cf := range input.CashFlows {
		if cf.DebtService > 0 {
			dscrSum += cf.NetOperatingIncome / cf.DebtService
			dscrCount++
		}
	}
	if dscrCount > 0 {
		m.AverageDSCR = floatPtr(dscrSum / float64(dscrCount))
	}

	return m
}
