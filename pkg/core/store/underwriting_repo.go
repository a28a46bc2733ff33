package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Result kinds persisted by the underwriting endpoints.
const (
	KindMetrics     = "metrics"
	KindSensitivity = "sensitivity"
)

// UnderwritingRepo persists computed results. The latest run per property
// and kind wins; older runs are overwritten, matching the stateless
// rebuild-on-every-call model of the engine.
//
// Schema assumption:
//
//	CREATE TABLE underwriting_results (
//	  property_id INT NOT NULL,
//	  kind TEXT NOT NULL,
//	  run_id UUID NOT NULL,
//	  result_json JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL,
//	  PRIMARY KEY (property_id, kind)
//	);
type UnderwritingRepo struct{}

// NewUnderwritingRepo creates a new repository instance.
func NewUnderwritingRepo() *UnderwritingRepo {
	return &UnderwritingRepo{}
}

// Save upserts a result payload and returns the run id assigned to it.
func (r *UnderwritingRepo) Save(ctx context.Context, propertyID int, kind string, payload interface{}) (string, error) {
	pool := GetPool()
	if pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s result: %w", kind, err)
	}

	runID := uuid.New().String()
	query := `
		INSERT INTO underwriting_results (property_id, kind, run_id, result_json, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (property_id, kind)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, propertyID, kind, runID, jsonData, time.Now()); err != nil {
		return "", fmt.Errorf("failed to save %s result: %w", kind, err)
	}
	return runID, nil
}

// Load retrieves the latest persisted result of a kind for a property,
// unmarshalling into out.
func (r *UnderwritingRepo) Load(ctx context.Context, propertyID int, kind string, out interface{}) (string, error) {
	pool := GetPool()
	if pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}

	var runID string
	var jsonData []byte
	err := pool.QueryRow(ctx,
		`SELECT run_id, result_json FROM underwriting_results WHERE property_id = $1 AND kind = $2`,
		propertyID, kind,
	).Scan(&runID, &jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("no %s result found for property %d", kind, propertyID)
		}
		return "", fmt.Errorf("failed to load %s result: %w", kind, err)
	}

	if err := json.Unmarshal(jsonData, out); err != nil {
		return "", fmt.Errorf("failed to unmarshal %s result: %w", kind, err)
	}
	return runID, nil
}
