package sensitivity

import (
	"math"
	"testing"
	"time"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/models"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testProperty() *models.PropertyData {
	return &models.PropertyData{
		ID:               7,
		Name:             "Sensitivity Test Center",
		RentableSF:       10_000,
		AcquisitionPrice: 2_000_000,
	}
}

func testBaseline() assumption.BaselineAssumptions {
	a := assumption.Defaults()
	a.RentPSFAnnual = 30
	a.PropertyTaxAnnual = 25_000
	a.InsuranceAnnual = 8_000
	a.CAMAnnual = 20_000
	a.UtilitiesAnnual = 12_000
	a.RepairsMaintenanceAnnual = 10_000
	a.TIAllowancePSF = 5
	return a
}

func runAnalysis(t *testing.T) *AnalysisReport {
	t.Helper()
	report := NewEngine(nil).RunFullAnalysis(testProperty(), testBaseline(), 2_000_000, nil, testStart)
	if report == nil {
		t.Fatal("expected a report")
	}
	if report.BaselineIRR == nil {
		t.Fatal("baseline IRR must converge for a healthy deal")
	}
	return report
}

func TestRunFullAnalysis_CoversAllDrivers(t *testing.T) {
	report := runAnalysis(t)
	if len(report.Results) != 15 {
		t.Fatalf("Expected 15 driver results, got %d", len(report.Results))
	}
	for _, r := range report.Results {
		if len(r.Scenarios) != 4 {
			t.Errorf("driver %q: expected 4 scenarios, got %d", r.Assumption, len(r.Scenarios))
		}
		for _, s := range r.Scenarios {
			if s.IRR == nil {
				t.Errorf("driver %q at %+.0f%%: scenario did not converge", r.Assumption, s.AdjustmentPct*100)
			}
		}
	}
}

func TestRunFullAnalysis_SortedByImpact(t *testing.T) {
	report := runAnalysis(t)
	for i := 1; i < len(report.Results); i++ {
		if report.Results[i].MaxImpactBps > report.Results[i-1].MaxImpactBps {
			t.Fatalf("results not sorted descending at index %d", i)
		}
	}
}

func TestRunFullAnalysis_CriticalityTierConsistency(t *testing.T) {
	report := runAnalysis(t)
	for _, r := range report.Results {
		switch r.Criticality {
		case TierCritical:
			if r.MaxImpactBps <= 500 {
				t.Errorf("%q marked critical with max impact %f bps", r.Assumption, r.MaxImpactBps)
			}
		case TierHigh:
			if r.MaxImpactBps <= 200 || r.MaxImpactBps > 500 {
				t.Errorf("%q marked high with max impact %f bps", r.Assumption, r.MaxImpactBps)
			}
		case TierMedium:
			if r.MaxImpactBps <= 50 || r.MaxImpactBps > 200 {
				t.Errorf("%q marked medium with max impact %f bps", r.Assumption, r.MaxImpactBps)
			}
		case TierLow:
			if r.MaxImpactBps > 50 {
				t.Errorf("%q marked low with max impact %f bps", r.Assumption, r.MaxImpactBps)
			}
		default:
			t.Errorf("%q has unknown tier %q", r.Assumption, r.Criticality)
		}
	}
}

func TestRunFullAnalysis_ExitCapSymmetry(t *testing.T) {
	report := runAnalysis(t)

	var exitCap *Result
	for i := range report.Results {
		if report.Results[i].Assumption == "exit_cap_rate" {
			exitCap = &report.Results[i]
			break
		}
	}
	if exitCap == nil {
		t.Fatal("exit_cap_rate missing from results")
	}

	var down, up *ScenarioOutcome
	for i := range exitCap.Scenarios {
		s := &exitCap.Scenarios[i]
		if s.AdjustmentPct == -0.10 {
			down = s
		}
		if s.AdjustmentPct == 0.10 {
			up = s
		}
	}
	if down == nil || up == nil {
		t.Fatal("missing ±10% scenarios")
	}

	// A lower exit cap raises exit value and IRR; a higher cap does the
	// opposite. Same-sign impacts in both directions signal a bug.
	if down.ImpactBps <= 0 {
		t.Errorf("−10%% exit cap should raise IRR, impact %f bps", down.ImpactBps)
	}
	if up.ImpactBps >= 0 {
		t.Errorf("+10%% exit cap should lower IRR, impact %f bps", up.ImpactBps)
	}
	ratio := math.Abs(down.ImpactBps) / math.Abs(up.ImpactBps)
	if ratio < 0.3 || ratio > 3.0 {
		t.Errorf("±10%% impacts wildly asymmetric: %f vs %f bps", down.ImpactBps, up.ImpactBps)
	}
}

func TestRunFullAnalysis_MilestonesAreCumulative(t *testing.T) {
	report := runAnalysis(t)
	if len(report.Milestones) != 4 {
		t.Fatalf("Expected 4 milestones, got %d", len(report.Milestones))
	}

	byName := make(map[string][]string)
	for _, m := range report.Milestones {
		byName[m.Name] = m.Assumptions
	}

	order := []string{"napkin", "envelope", "memo", "kitchen_sink"}
	for i := 1; i < len(order); i++ {
		prev := byName[order[i-1]]
		curr := toSet(byName[order[i]])
		for _, name := range prev {
			if !curr[name] {
				t.Errorf("%s must contain everything in %s, missing %q", order[i], order[i-1], name)
			}
		}
	}

	if len(byName["kitchen_sink"]) != len(report.Results) {
		t.Errorf("kitchen_sink must include every driver, got %d of %d",
			len(byName["kitchen_sink"]), len(report.Results))
	}
}

func TestRunFullAnalysis_VarianceExplained(t *testing.T) {
	report := runAnalysis(t)
	v := report.Variance
	if v.TopN != 5 || len(v.Assumptions) != 5 {
		t.Fatalf("Expected top-5 variance summary, got N=%d", v.TopN)
	}
	if v.PctOfVariance <= 0 || v.PctOfVariance > 100 {
		t.Errorf("variance explained out of range: %f", v.PctOfVariance)
	}
	// The top 5 of 15 sorted drivers must explain at least a uniform share.
	if v.PctOfVariance < 100.0/3.0 {
		t.Errorf("top 5 drivers should explain at least a third of variance, got %f", v.PctOfVariance)
	}
	// The named drivers are the first five results.
	for i, name := range v.Assumptions {
		if report.Results[i].Assumption != name {
			t.Errorf("variance summary order mismatch at %d: %q vs %q", i, name, report.Results[i].Assumption)
		}
	}
}

func TestRunFullAnalysis_WithDebt(t *testing.T) {
	debt := &models.DebtAssumptions{
		LoanAmount:        1_200_000,
		InterestRatePct:   0.055,
		AmortizationYears: 30,
	}
	report := NewEngine(nil).RunFullAnalysis(testProperty(), testBaseline(), 2_000_000, debt, testStart)
	if report.BaselineIRR == nil {
		t.Fatal("levered baseline IRR must converge")
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
