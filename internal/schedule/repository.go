package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists per-staff weekly opening hours as JSONB documents.
type Repository struct {
	db DB
}

// NewRepository creates a schedule repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("schedule: db required")
	}
	return &Repository{db: db}
}

// Weekly loads a staff member's opening hours at a branch. An unconfigured
// staff member resolves to an empty schedule, never nil.
func (r *Repository) Weekly(ctx context.Context, orgID string, branchID, staffID uuid.UUID) (*WeeklySchedule, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `
		SELECT hours FROM staff_schedules
		WHERE org_id = $1 AND branch_id = $2 AND staff_id = $3`,
		orgID, branchID, staffID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &WeeklySchedule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: load weekly hours: %w", err)
	}

	var ws WeeklySchedule
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("schedule: unmarshal weekly hours: %w", err)
	}
	return &ws, nil
}

// SaveWeekly upserts a staff member's opening hours.
func (r *Repository) SaveWeekly(ctx context.Context, orgID string, branchID, staffID uuid.UUID, ws *WeeklySchedule) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("schedule: marshal weekly hours: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO staff_schedules (org_id, branch_id, staff_id, hours, updated_at)
		VALUES ($1,$2,$3,$4, now())
		ON CONFLICT (org_id, branch_id, staff_id) DO UPDATE SET
		    hours = EXCLUDED.hours, updated_at = now()`,
		orgID, branchID, staffID, raw)
	if err != nil {
		return fmt.Errorf("schedule: save weekly hours: %w", err)
	}
	return nil
}
