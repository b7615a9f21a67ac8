package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the service catalog from Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a catalog repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("catalog: db required")
	}
	return &Repository{db: db}
}

const serviceColumns = `id, org_id, branch_id, name, description, price_cents,
       duration_minutes, buffer_minutes, tax_code, active, staff_ids`

// Service loads one service scoped to the org, nil when absent.
func (r *Repository) Service(ctx context.Context, orgID string, id uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services WHERE org_id = $1 AND id = $2`, orgID, id)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load service: %w", err)
	}
	return svc, nil
}

// ListByBranch returns the active services offered at a branch.
func (r *Repository) ListByBranch(ctx context.Context, orgID string, branchID uuid.UUID) ([]Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE org_id = $1 AND branch_id = $2 AND active
		ORDER BY name`, orgID, branchID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	out := []Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, *svc)
	}
	return out, rows.Err()
}

// Upsert creates or updates a service.
func (r *Repository) Upsert(ctx context.Context, svc *Service) error {
	if svc.DurationMinutes <= 0 {
		return fmt.Errorf("catalog: non-positive duration")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO services (id, org_id, branch_id, name, description, price_cents,
		    duration_minutes, buffer_minutes, tax_code, active, staff_ids)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
		    name=EXCLUDED.name, description=EXCLUDED.description,
		    price_cents=EXCLUDED.price_cents, duration_minutes=EXCLUDED.duration_minutes,
		    buffer_minutes=EXCLUDED.buffer_minutes, tax_code=EXCLUDED.tax_code,
		    active=EXCLUDED.active, staff_ids=EXCLUDED.staff_ids`,
		svc.ID, svc.OrgID, svc.BranchID, svc.Name, svc.Description, svc.PriceCents,
		svc.DurationMinutes, svc.BufferMinutes, svc.TaxCode, svc.Active, svc.StaffIDs)
	if err != nil {
		return fmt.Errorf("catalog: upsert service: %w", err)
	}
	return nil
}

func scanService(row pgx.Row) (*Service, error) {
	var svc Service
	err := row.Scan(&svc.ID, &svc.OrgID, &svc.BranchID, &svc.Name, &svc.Description,
		&svc.PriceCents, &svc.DurationMinutes, &svc.BufferMinutes, &svc.TaxCode,
		&svc.Active, &svc.StaffIDs)
	if err != nil {
		return nil, err
	}
	if svc.StaffIDs == nil {
		svc.StaffIDs = []string{}
	}
	return &svc, nil
}
