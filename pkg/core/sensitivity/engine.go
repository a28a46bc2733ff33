// Package sensitivity perturbs each underwriting driver around its baseline
// and ranks drivers by their impact on levered IRR. Every scenario re-runs
// the full cash-flow + metrics pipeline; because that pipeline is pure, the
// scenario grid fans out across goroutines bounded by core count.
package sensitivity

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/core/calc"
	"landscape_underwriting/pkg/core/cashflow"
	"landscape_underwriting/pkg/core/metrics"
	"landscape_underwriting/pkg/models"
)

// Perturbation levels applied multiplicatively to each driver's own baseline
// value. Percentage-point drivers (vacancy, fees) scale the same way; they
// are never shifted additively.
var perturbations = []float64{-0.20, -0.10, 0.10, 0.20}

// Criticality thresholds on max absolute IRR impact, in basis points.
const (
	criticalThresholdBps = 500.0
	highThresholdBps     = 200.0
	mediumThresholdBps   = 50.0
)

// Criticality tiers, most consequential first.
const (
	TierCritical = "critical"
	TierHigh     = "high"
	TierMedium   = "medium"
	TierLow      = "low"
)

// ScenarioOutcome is one perturbed pipeline run.
type ScenarioOutcome struct {
	AdjustmentPct float64  `json:"adjustment_pct"`
	AdjustedValue float64  `json:"adjusted_value"`
	IRR           *float64 `json:"irr"`
	ImpactBps     float64  `json:"impact_bps"`
}

// Result aggregates the four scenarios for one driver.
type Result struct {
	Assumption    string              `json:"assumption"`
	Label         string              `json:"label"`
	Category      assumption.Category `json:"category"`
	Description   string              `json:"description"`
	BaselineValue float64             `json:"baseline_value"`
	Scenarios     []ScenarioOutcome   `json:"scenarios"`
	AvgImpactBps  float64             `json:"avg_impact_bps"`
	MaxImpactBps  float64             `json:"max_impact_bps"`
	Criticality   string              `json:"criticality"`
}

// Milestone is a cumulative driver subset keyed to an underwriting depth.
type Milestone struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Assumptions []string `json:"assumptions"`
}

// VarianceSummary answers how much of total IRR sensitivity the top-N
// drivers explain.
type VarianceSummary struct {
	TopN               int      `json:"top_n"`
	Assumptions        []string `json:"assumptions"`
	PctOfVariance      float64  `json:"percentage_of_variance_explained"`
	TotalImpactBps     float64  `json:"total_impact_bps"`
	ExplainedImpactBps float64  `json:"explained_impact_bps"`
}

// AnalysisReport is the full sensitivity output, results sorted descending
// by max impact.
type AnalysisReport struct {
	BaselineIRR    *float64        `json:"baseline_irr"`
	BaselineIRRPct string          `json:"baseline_irr_pct"`
	Results        []Result        `json:"results"`
	Milestones     []Milestone     `json:"milestones"`
	Variance       VarianceSummary `json:"variance_explained"`
}

// Engine runs sensitivity analyses. Safe for concurrent use; it holds no
// per-run state.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger is replaced with a no-op.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// RunFullAnalysis computes the baseline IRR once, then re-runs the pipeline
// for every driver at each perturbation level. A scenario whose IRR fails
// to converge contributes zero impact and drops out of the aggregates; it
// never aborts the analysis for the remaining drivers.
func (e *Engine) RunFullAnalysis(
	property *models.PropertyData,
	baseline assumption.BaselineAssumptions,
	acquisitionPrice float64,
	debt *models.DebtAssumptions,
	startDate time.Time,
) *AnalysisReport {
	baselineIRR := e.runScenario(property, baseline, acquisitionPrice, debt, startDate)

	report := &AnalysisReport{
		BaselineIRR:    baselineIRR,
		BaselineIRRPct: formatPct(baselineIRR),
	}

	drivers := assumption.Drivers()
	results := make([]Result, len(drivers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for i, d := range drivers {
		baseVal := d.Get(&baseline)
		results[i] = Result{
			Assumption:    d.Name,
			Label:         d.Label,
			Category:      d.Category,
			Description:   d.Description,
			BaselineValue: baseVal,
			Scenarios:     make([]ScenarioOutcome, len(perturbations)),
		}

		for j, adj := range perturbations {
			wg.Add(1)
			sem <- struct{}{}
			go func(i, j int, d assumption.Driver, baseVal, adj float64) {
				defer wg.Done()
				defer func() { <-sem }()

				scenario := baseline
				adjusted := baseVal * (1.0 + adj)
				d.Set(&scenario, adjusted)

				irr := e.runScenario(property, scenario, acquisitionPrice, debt, startDate)

				outcome := ScenarioOutcome{
					AdjustmentPct: adj,
					AdjustedValue: adjusted,
					IRR:           irr,
				}
				if irr != nil && baselineIRR != nil {
					outcome.ImpactBps = (*irr - *baselineIRR) * 10000.0
				} else if irr == nil {
					e.logger.Warn("sensitivity scenario did not converge",
						zap.String("assumption", d.Name),
						zap.Float64("adjustment_pct", adj))
				}

				mu.Lock()
				results[i].Scenarios[j] = outcome
				mu.Unlock()
			}(i, j, d, baseVal, adj)
		}
	}
	wg.Wait()

	for i := range results {
		aggregate(&results[i])
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].MaxImpactBps > results[b].MaxImpactBps
	})

	report.Results = results
	report.Milestones = buildMilestones(results)
	report.Variance = varianceExplained(results, 5)
	return report
}

// runScenario executes the full pro-forma pipeline for one assumption set
// and returns the levered IRR, or nil when the solver has nothing to chew on.
func (e *Engine) runScenario(
	property *models.PropertyData,
	a assumption.BaselineAssumptions,
	acquisitionPrice float64,
	debt *models.DebtAssumptions,
	startDate time.Time,
) *float64 {
	var annualDebtService float64
	if debt != nil {
		ds := calc.ComputeDebtService(debt.LoanAmount, debt.InterestRatePct, debt.AmortizationYears, debt.InterestOnlyMonths)
		annualDebtService = ds.AnnualDebtService
	}

	input := assumption.BuildProFormaInput(property, a, annualDebtService, startDate)
	flows := cashflow.Project(input)

	result := metrics.Calculate(metrics.MetricsInput{
		CashFlows:        flows,
		AcquisitionPrice: acquisitionPrice,
		ExitCapRate:      a.ExitCapRate,
		DiscountRate:     a.DiscountRate,
		Debt:             debt,
	})
	if result == nil {
		return nil
	}
	return result.LeveredIRR
}

// aggregate fills avg/max absolute impact and the criticality tier.
// Non-converged scenarios are excluded from the mean.
func aggregate(r *Result) {
	var sum, max float64
	var count int
	for _, s := range r.Scenarios {
		if s.IRR == nil {
			continue
		}
		abs := math.Abs(s.ImpactBps)
		sum += abs
		if abs > max {
			max = abs
		}
		count++
	}
	if count > 0 {
		r.AvgImpactBps = sum / float64(count)
	}
	r.MaxImpactBps = max

	switch {
	case max > criticalThresholdBps:
		r.Criticality = TierCritical
	case max > highThresholdBps:
		r.Criticality = TierHigh
	case max > mediumThresholdBps:
		r.Criticality = TierMedium
	default:
		r.Criticality = TierLow
	}
}

// buildMilestones derives the four cumulative underwriting-depth subsets
// purely from tier membership.
func buildMilestones(results []Result) []Milestone {
	inTiers := func(tiers ...string) []string {
		names := make([]string, 0)
		for _, r := range results {
			for _, tier := range tiers {
				if r.Criticality == tier {
					names = append(names, r.Assumption)
					break
				}
			}
		}
		return names
	}

	return []Milestone{
		{
			Name:        "napkin",
			Description: "Back-of-napkin screen: nail down only the critical drivers.",
			Assumptions: inTiers(TierCritical),
		},
		{
			Name:        "envelope",
			Description: "Back-of-envelope underwriting: critical plus high-impact drivers.",
			Assumptions: inTiers(TierCritical, TierHigh),
		},
		{
			Name:        "memo",
			Description: "Investment memo depth: everything above low impact.",
			Assumptions: inTiers(TierCritical, TierHigh, TierMedium),
		},
		{
			Name:        "kitchen_sink",
			Description: "Full underwriting: every modeled driver.",
			Assumptions: inTiers(TierCritical, TierHigh, TierMedium, TierLow),
		},
	}
}

// varianceExplained reports the share of total IRR sensitivity carried by
// the top-N drivers. Results must already be sorted by max impact.
func varianceExplained(results []Result, topN int) VarianceSummary {
	if topN > len(results) {
		topN = len(results)
	}

	var total, explained float64
	names := make([]string, 0, topN)
	for i, r := range results {
		total += r.MaxImpactBps
		if i < topN {
			explained += r.MaxImpactBps
			names = append(names, r.Assumption)
		}
	}

	summary := VarianceSummary{
		TopN:               topN,
		Assumptions:        names,
		TotalImpactBps:     total,
		ExplainedImpactBps: explained,
	}
	if total > 0 {
		summary.PctOfVariance = explained / total * 100.0
	}
	return summary
}

func formatPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v*100.0)
}
