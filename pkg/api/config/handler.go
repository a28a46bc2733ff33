// Package config exposes read-only endpoints describing the engine
// configuration: the active computation backend, the baseline assumption
// defaults, and the sensitivity driver catalog a front end needs to build
// an assumptions form.
package config

import (
	"encoding/json"
	"net/http"

	"landscape_underwriting/pkg/core/assumption"
	"landscape_underwriting/pkg/core/engine"
)

// Response is the GET /api/config payload.
type Response struct {
	ActiveBackend string                         `json:"active_backend"`
	Available     []string                       `json:"available"`
	Defaults      assumption.BaselineAssumptions `json:"defaults"`
}

// DriverInfo is one row of the driver catalog. Default carries the baseline
// value the perturbations move around.
type DriverInfo struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Category    assumption.Category `json:"category"`
	Description string              `json:"description"`
	Default     float64             `json:"default"`
}

// Handler holds dependencies for config endpoints.
type Handler struct {
	Provider engine.Provider
}

// NewHandler creates a new config handler.
func NewHandler(provider engine.Provider) *Handler {
	return &Handler{Provider: provider}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	resp := Response{
		ActiveBackend: h.Provider.Name(),
		Available:     []string{engine.BackendInProcess, engine.BackendExternal},
		Defaults:      assumption.Defaults(),
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) HandleDrivers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	base := assumption.Defaults()
	drivers := assumption.Drivers()
	catalog := make([]DriverInfo, 0, len(drivers))
	for _, d := range drivers {
		catalog = append(catalog, DriverInfo{
			Name:        d.Name,
			Label:       d.Label,
			Category:    d.Category,
			Description: d.Description,
			Default:     d.Get(&base),
		})
	}
	json.NewEncoder(w).Encode(catalog)
}
