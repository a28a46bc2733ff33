// Package engine selects the computation backend for the metrics pipeline.
// The in-process implementation is always available and is the guaranteed
// fallback; the external backend shells out to the calc-engine binary and
// falls back on any failure.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/core/calc"
	"landscape_underwriting/pkg/core/cashflow"
	"landscape_underwriting/pkg/core/metrics"
	"landscape_underwriting/pkg/models"
)

// Backend names accepted in Config.Backend.
const (
	BackendInProcess = "inprocess"
	BackendExternal  = "external"
)

// Config selects and parameterizes the backend.
type Config struct {
	Backend        string `yaml:"backend"`         // "inprocess" (default) or "external"
	CalcEngineBin  string `yaml:"calc_engine_bin"` // path to the calc-engine binary
	TimeoutSeconds int    `yaml:"timeout_seconds"` // external call timeout
}

// MetricsRequest is the full pipeline input. It serializes cleanly so the
// same payload drives both the in-process path and the external binary.
type MetricsRequest struct {
	Property    *models.PropertyData           `json:"property"`
	Assumptions assumption.BaselineAssumptions `json:"assumptions"`
	Debt        *models.DebtAssumptions        `json:"debt,omitempty"`
	StartDate   time.Time                      `json:"start_date"`
}

// Provider is one computation backend.
type Provider interface {
	Name() string
	ComputeMetrics(ctx context.Context, req *MetricsRequest) (*metrics.InvestmentMetrics, error)
}

// Select builds the configured provider. Unknown backends resolve to the
// in-process engine.
func Select(cfg Config, logger *zap.Logger) Provider {
	inproc := NewInProcess()
	if cfg.Backend != BackendExternal || cfg.CalcEngineBin == "" {
		return inproc
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewExternal(cfg.CalcEngineBin, timeout, inproc, logger)
}

// =============================================================================
// IN-PROCESS BACKEND
// =============================================================================

// InProcess runs the projection and metrics pipeline in this process.
type InProcess struct{}

// NewInProcess creates the in-process backend.
func NewInProcess() *InProcess {
	return &InProcess{}
}

func (p *InProcess) Name() string { return BackendInProcess }

// ComputeMetrics derives debt service, projects the cash flows, and computes
// the metrics bundle.
func (p *InProcess) ComputeMetrics(_ context.Context, req *MetricsRequest) (*metrics.InvestmentMetrics, error) {
	if req == nil || req.Property == nil {
		return nil, fmt.Errorf("metrics request missing property")
	}

	var annualDebtService float64
	debt := req.Debt
	if debt != nil {
		ds := calc.ComputeDebtService(debt.LoanAmount, debt.InterestRatePct, debt.AmortizationYears, debt.InterestOnlyMonths)
		annualDebtService = ds.AnnualDebtService
		debtCopy := *debt
		debtCopy.AnnualDebtService = annualDebtService
		debt = &debtCopy
	}

	input := assumption.BuildProjectionInput(req.Property, req.Assumptions, annualDebtService, req.StartDate)
	flows := cashflow.Project(input)

	result := metrics.Calculate(metrics.MetricsInput{
		CashFlows:        flows,
		AcquisitionPrice: req.Property.AcquisitionPrice,
		ExitCapRate:      req.Assumptions.ExitCapRate,
		DiscountRate:     req.Assumptions.DiscountRate,
		Debt:             debt,
	})
	if result == nil {
		return nil, fmt.Errorf("projection produced no cash flows")
	}
	return result, nil
}

// =============================================================================
// EXTERNAL BACKEND
// =============================================================================

// External delegates to the calc-engine binary and falls back to the
// in-process engine when the process fails, times out, or returns garbage.
type External struct {
	binPath  string
	timeout  time.Duration
	fallback *InProcess
	logger   *zap.Logger
}

// NewExternal creates the external backend. A nil logger is replaced with a
// no-op.
func NewExternal(binPath string, timeout time.Duration, fallback *InProcess, logger *zap.Logger) *External {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &External{binPath: binPath, timeout: timeout, fallback: fallback, logger: logger}
}

func (p *External) Name() string { return BackendExternal }

// ComputeMetrics invokes the calc-engine binary with the JSON payload on
// stdin and parses the metrics bundle from stdout.
func (p *External) ComputeMetrics(ctx context.Context, req *MetricsRequest) (*metrics.InvestmentMetrics, error) {
	result, err := p.invoke(ctx, req)
	if err != nil {
		p.logger.Warn("external calc engine failed, falling back in-process",
			zap.String("bin", p.binPath),
			zap.Error(err))
		return p.fallback.ComputeMetrics(ctx, req)
	}
	return result, nil
}

func (p *External) invoke(ctx context.Context, req *MetricsRequest) (*metrics.InvestmentMetrics, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, p.binPath, "-mode", "metrics")
	cmd.Stdin = bytes.NewReader(payload)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("calc-engine exec: %w", err)
	}

	var result metrics.InvestmentMetrics
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("calc-engine output: %w", err)
	}
	return &result, nil
}
