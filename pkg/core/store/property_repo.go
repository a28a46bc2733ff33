package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"landscape_underwriting/pkg/models"
)

// PropertyRepo loads PropertyData and its rent roll from Postgres.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE properties (
//	  id SERIAL PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  rentable_sf DOUBLE PRECISION NOT NULL DEFAULT 0,
//	  acquisition_price DOUBLE PRECISION NOT NULL DEFAULT 0
//	);
//	CREATE TABLE leases (
//	  id SERIAL PRIMARY KEY,
//	  property_id INT REFERENCES properties(id),
//	  space_id TEXT, tenant_name TEXT, lease_type TEXT, status TEXT,
//	  commencement_date DATE, expiration_date DATE,
//	  leased_sf DOUBLE PRECISION,
//	  escalation JSONB, percentage_rent JSONB, expense_recovery JSONB
//	);
//	CREATE TABLE base_rent_periods (
//	  id SERIAL PRIMARY KEY,
//	  lease_id INT REFERENCES leases(id),
//	  start_date DATE, end_date DATE,
//	  annual_rent DOUBLE PRECISION, monthly_rent DOUBLE PRECISION,
//	  rent_psf_annual DOUBLE PRECISION
//	);
type PropertyRepo struct{}

// NewPropertyRepo creates a new repository instance.
func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{}
}

// ErrPropertyNotFound distinguishes a missing row from a query failure.
var ErrPropertyNotFound = fmt.Errorf("property not found")

// Load fetches the property, its leases, and each lease's rent schedule.
func (r *PropertyRepo) Load(ctx context.Context, propertyID int) (*models.PropertyData, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	property := &models.PropertyData{}
	err := pool.QueryRow(ctx,
		`SELECT id, name, rentable_sf, acquisition_price FROM properties WHERE id = $1`,
		propertyID,
	).Scan(&property.ID, &property.Name, &property.RentableSF, &property.AcquisitionPrice)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	leases, err := r.loadLeases(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	property.Leases = leases
	return property, nil
}

func (r *PropertyRepo) loadLeases(ctx context.Context, propertyID int) ([]models.LeaseData, error) {
	pool := GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, space_id, tenant_name, lease_type, status,
		       commencement_date, expiration_date, leased_sf,
		       escalation, percentage_rent, expense_recovery
		FROM leases WHERE property_id = $1 ORDER BY id`,
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leases: %w", err)
	}
	defer rows.Close()

	var leases []models.LeaseData
	for rows.Next() {
		var l models.LeaseData
		var escJSON, prJSON, recJSON []byte
		if err := rows.Scan(
			&l.ID, &l.SpaceID, &l.TenantName, &l.LeaseType, &l.Status,
			&l.CommencementDate, &l.ExpirationDate, &l.LeasedSF,
			&escJSON, &prJSON, &recJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}

		if len(escJSON) > 0 {
			var esc models.Escalation
			if err := json.Unmarshal(escJSON, &esc); err == nil {
				l.Escalation = &esc
			}
		}
		if len(prJSON) > 0 {
			var pr models.PercentageRent
			if err := json.Unmarshal(prJSON, &pr); err == nil {
				l.PercentageRent = &pr
			}
		}
		if len(recJSON) > 0 {
			var rec models.ExpenseRecovery
			if err := json.Unmarshal(recJSON, &rec); err == nil {
				l.ExpenseRecovery = &rec
			}
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lease rows: %w", err)
	}

	if err := r.loadRentPeriods(ctx, propertyID, leases); err != nil {
		return nil, err
	}
	return leases, nil
}

func (r *PropertyRepo) loadRentPeriods(ctx context.Context, propertyID int, leases []models.LeaseData) error {
	pool := GetPool()

	rows, err := pool.Query(ctx, `
		SELECT brp.lease_id, brp.start_date, brp.end_date,
		       brp.annual_rent, brp.monthly_rent, brp.rent_psf_annual
		FROM base_rent_periods brp
		JOIN leases l ON l.id = brp.lease_id
		WHERE l.property_id = $1
		ORDER BY brp.lease_id, brp.start_date`,
		propertyID)
	if err != nil {
		return fmt.Errorf("failed to load rent periods: %w", err)
	}
	defer rows.Close()

	byLease := make(map[int][]models.BaseRentPeriod)
	for rows.Next() {
		var leaseID int
		var p models.BaseRentPeriod
		if err := rows.Scan(&leaseID, &p.StartDate, &p.EndDate, &p.AnnualRent, &p.MonthlyRent, &p.RentPSFAnnual); err != nil {
			return fmt.Errorf("failed to scan rent period: %w", err)
		}
		byLease[leaseID] = append(byLease[leaseID], p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rent period rows: %w", err)
	}

	for i := range leases {
		leases[i].BaseRentPeriods = byLease[leases[i].ID]
	}
	return nil
}
