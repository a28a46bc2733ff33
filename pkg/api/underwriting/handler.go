// Package underwriting exposes the metrics and sensitivity endpoints. The
// handlers stay thin: validate input, fetch rows, hand off to the engine,
// serialize. Unexpected panics inside the pipeline surface as a generic
// computation failure rather than leaking internals.
package underwriting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/core/engine"
	"landscape_underwriting/pkg/core/sensitivity"
	"landscape_underwriting/pkg/core/store"
	"landscape_underwriting/pkg/models"
)

// PropertyLoader abstracts the property fetch so tests can stub the database.
type PropertyLoader interface {
	Load(ctx context.Context, propertyID int) (*models.PropertyData, error)
}

// ResultSaver persists computed results. Persistence is best effort; a save
// failure is logged and never fails the request.
type ResultSaver interface {
	Save(ctx context.Context, propertyID int, kind string, payload interface{}) (string, error)
}

// Handler serves the underwriting endpoints.
type Handler struct {
	provider   engine.Provider
	sens       *sensitivity.Engine
	properties PropertyLoader
	results    ResultSaver
	logger     *zap.Logger
}

// NewHandler wires the endpoint dependencies. results may be nil to disable
// persistence (CLI and test use).
func NewHandler(provider engine.Provider, sens *sensitivity.Engine, properties PropertyLoader, results ResultSaver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		provider:   provider,
		sens:       sens,
		properties: properties,
		results:    results,
		logger:     logger,
	}
}

// MetricsRequest is the POST body for both endpoints.
type MetricsRequest struct {
	PropertyID  int                     `json:"property_id"`
	Assumptions *assumption.Overrides   `json:"assumptions,omitempty"`
	Debt        *models.DebtAssumptions `json:"debt,omitempty"`
	StartDate   *time.Time              `json:"start_date,omitempty"`
}

// HandleMetrics runs the baseline pipeline and returns the metrics bundle.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	property, ok := h.loadProperty(w, r.Context(), req.PropertyID)
	if !ok {
		return
	}

	merged := assumption.Merge(assumption.Defaults(), req.Assumptions)
	result, err := h.provider.ComputeMetrics(r.Context(), &engine.MetricsRequest{
		Property:    property,
		Assumptions: merged,
		Debt:        req.Debt,
		StartDate:   startDate(req),
	})
	if err != nil {
		h.logger.Error("metrics computation failed",
			zap.Int("property_id", req.PropertyID),
			zap.Error(err))
		http.Error(w, "computation failed", http.StatusInternalServerError)
		return
	}

	runID := h.persist(r.Context(), req.PropertyID, store.KindMetrics, result)
	writeJSON(w, map[string]interface{}{
		"run_id":  runID,
		"backend": h.provider.Name(),
		"metrics": result,
	})
}

// HandleSensitivity runs the full perturbation grid and returns the ranked
// report.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	property, ok := h.loadProperty(w, r.Context(), req.PropertyID)
	if !ok {
		return
	}

	merged := assumption.Merge(assumption.Defaults(), req.Assumptions)
	report := h.sens.RunFullAnalysis(property, merged, property.AcquisitionPrice, req.Debt, startDate(req))

	runID := h.persist(r.Context(), req.PropertyID, store.KindSensitivity, report)
	writeJSON(w, map[string]interface{}{
		"run_id":      runID,
		"sensitivity": report,
	})
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*MetricsRequest, bool) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return nil, false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return nil, false
	}
	if req.PropertyID <= 0 {
		http.Error(w, "property_id must be a positive integer", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (h *Handler) loadProperty(w http.ResponseWriter, ctx context.Context, propertyID int) (*models.PropertyData, bool) {
	property, err := h.properties.Load(ctx, propertyID)
	if err != nil {
		if err == store.ErrPropertyNotFound {
			http.Error(w, fmt.Sprintf("property %d not found", propertyID), http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("property fetch failed", zap.Int("property_id", propertyID), zap.Error(err))
		http.Error(w, "failed to load property", http.StatusInternalServerError)
		return nil, false
	}
	return property, true
}

func (h *Handler) persist(ctx context.Context, propertyID int, kind string, payload interface{}) string {
	if h.results == nil {
		return ""
	}
	runID, err := h.results.Save(ctx, propertyID, kind, payload)
	if err != nil {
		h.logger.Warn("failed to persist result",
			zap.Int("property_id", propertyID),
			zap.String("kind", kind),
			zap.Error(err))
		return ""
	}
	return runID
}

func startDate(req *MetricsRequest) time.Time {
	if req.StartDate != nil {
		return *req.StartDate
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
