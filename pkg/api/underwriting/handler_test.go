package underwriting

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"landscape_underwriting/pkg/core/engine"
	"landscape_underwriting/pkg/core/sensitivity"
	"landscape_underwriting/pkg/core/store"
	"landscape_underwriting/pkg/models"
)

type stubLoader struct {
	properties map[int]*models.PropertyData
}

func (s *stubLoader) Load(_ context.Context, id int) (*models.PropertyData, error) {
	if p, ok := s.properties[id]; ok {
		return p, nil
	}
	return nil, store.ErrPropertyNotFound
}

type recordingSaver struct {
	kinds []string
}

func (s *recordingSaver) Save(_ context.Context, _ int, kind string, _ interface{}) (string, error) {
	s.kinds = append(s.kinds, kind)
	return "run-1234", nil
}

func testHandler(saver ResultSaver) *Handler {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 120, 0)
	property := &models.PropertyData{
		ID:               42,
		Name:             "Handler Test Tower",
		RentableSF:       10_000,
		AcquisitionPrice: 3_000_000,
		Leases: []models.LeaseData{
			{
				ID:               1,
				Status:           models.LeaseActive,
				CommencementDate: start,
				ExpirationDate:   end,
				LeasedSF:         10_000,
				BaseRentPeriods: []models.BaseRentPeriod{
					{StartDate: start, EndDate: end, AnnualRent: 300_000},
				},
			},
		},
	}

	loader := &stubLoader{properties: map[int]*models.PropertyData{42: property}}
	return NewHandler(engine.NewInProcess(), sensitivity.NewEngine(nil), loader, saver, nil)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestHandleMetrics_OK(t *testing.T) {
	saver := &recordingSaver{}
	h := testHandler(saver)

	w := postJSON(t, h.HandleMetrics, map[string]interface{}{"property_id": 42})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		RunID   string          `json:"run_id"`
		Backend string          `json:"backend"`
		Metrics json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.RunID != "run-1234" {
		t.Errorf("Expected persisted run id, got %q", resp.RunID)
	}
	if resp.Backend != "inprocess" {
		t.Errorf("Expected inprocess backend, got %q", resp.Backend)
	}
	if len(resp.Metrics) == 0 {
		t.Error("expected a metrics payload")
	}
	if len(saver.kinds) != 1 || saver.kinds[0] != store.KindMetrics {
		t.Errorf("expected one metrics save, got %v", saver.kinds)
	}
}

func TestHandleMetrics_InputErrors(t *testing.T) {
	h := testHandler(nil)

	w := postJSON(t, h.HandleMetrics, map[string]interface{}{"property_id": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing property_id, got %d", w.Code)
	}

	w = postJSON(t, h.HandleMetrics, map[string]interface{}{"property_id": 9999})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown property, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.HandleMetrics(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}

	get := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.HandleMetrics(rec, get)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}
}

func TestHandleMetrics_AssumptionOverrides(t *testing.T) {
	h := testHandler(nil)

	// Heavy vacancy depresses income; the request must still succeed with a
	// degraded bundle rather than erroring.
	w := postJSON(t, h.HandleMetrics, map[string]interface{}{
		"property_id": 42,
		"assumptions": map[string]interface{}{"vacancy_pct": 0.5},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleSensitivity_OK(t *testing.T) {
	saver := &recordingSaver{}
	h := testHandler(saver)

	rentPSF := 30.0
	w := postJSON(t, h.HandleSensitivity, map[string]interface{}{
		"property_id": 42,
		"assumptions": map[string]interface{}{"rent_psf_annual": rentPSF},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		RunID       string `json:"run_id"`
		Sensitivity struct {
			BaselineIRR *float64 `json:"baseline_irr"`
			Results     []struct {
				Assumption   string  `json:"assumption"`
				MaxImpactBps float64 `json:"max_impact_bps"`
			} `json:"results"`
			Milestones []struct {
				Name string `json:"name"`
			} `json:"milestones"`
		} `json:"sensitivity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Sensitivity.BaselineIRR == nil {
		t.Error("expected a converged baseline IRR")
	}
	if len(resp.Sensitivity.Results) != 15 {
		t.Errorf("Expected 15 driver rows, got %d", len(resp.Sensitivity.Results))
	}
	if len(resp.Sensitivity.Milestones) != 4 {
		t.Errorf("Expected 4 milestones, got %d", len(resp.Sensitivity.Milestones))
	}
	if len(saver.kinds) != 1 || saver.kinds[0] != store.KindSensitivity {
		t.Errorf("expected one sensitivity save, got %v", saver.kinds)
	}
}

func TestHandleMetrics_CORSPreflight(t *testing.T) {
	h := testHandler(nil)
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	h.HandleMetrics(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
