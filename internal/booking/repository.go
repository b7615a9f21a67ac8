package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on pending appointments. It is what closes the check-then-insert
// race: of two concurrent inserts for the same slot, one gets this code.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointments in Postgres. Price and policy snapshots
// are JSONB documents; the slot key columns stay relational so the partial
// unique index can guard them.
type Repository struct {
	db DB
}

// NewRepository creates an appointment repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("booking: db required")
	}
	return &Repository{db: db}
}

const appointmentColumns = `id, org_id, branch_id, staff_id, service_id, owner_id,
	date, booked_from, booked_to, buffered_from, buffered_to,
	price, policy, status, created_at`

// Insert persists a new pending appointment. A concurrent booking that
// already holds the slot surfaces as ErrSlotConflict.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	price, err := json.Marshal(a.Price)
	if err != nil {
		return fmt.Errorf("booking: marshal price: %w", err)
	}
	policy, err := json.Marshal(a.Policy)
	if err != nil {
		return fmt.Errorf("booking: marshal policy: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.OrgID, a.BranchID, a.StaffID, a.ServiceID, a.OwnerID,
		a.Date, a.BookedTime.From, a.BookedTime.To,
		a.BookedTimeWithBuffer.From, a.BookedTimeWithBuffer.To,
		price, policy, a.Status, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotConflict
		}
		return fmt.Errorf("booking: insert appointment: %w", err)
	}
	return nil
}

// Get loads one appointment, nil when absent.
func (r *Repository) Get(ctx context.Context, orgID string, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE org_id = $1 AND id = $2`, orgID, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load appointment: %w", err)
	}
	return a, nil
}

// ListForStaffOnDates returns a staff member's pending appointments on the
// given dates. Cancelled and no-show appointments free their slots, so only
// pending rows count for conflict detection.
func (r *Repository) ListForStaffOnDates(ctx context.Context, orgID string, staffID uuid.UUID, dates []string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE org_id = $1 AND staff_id = $2 AND date = ANY($3) AND status = $4
		ORDER BY date, booked_from`,
		orgID, staffID, dates, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("booking: list staff appointments: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListForOwner returns a customer's appointments, newest first.
func (r *Repository) ListForOwner(ctx context.Context, orgID string, ownerID uuid.UUID) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE org_id = $1 AND owner_id = $2
		ORDER BY date DESC, booked_from DESC`,
		orgID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("booking: list owner appointments: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// UpdateStatus moves a pending appointment to a terminal status. A row that
// is missing or already terminal surfaces as ErrNotFound, keeping the
// pending -> terminal transition the only one possible.
func (r *Repository) UpdateStatus(ctx context.Context, orgID string, id uuid.UUID, status Status) error {
	if !status.validTerminal() {
		return fmt.Errorf("%w: status %q is not a terminal state", ErrInvalidInput, status)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments SET status = $3
		WHERE org_id = $1 AND id = $2 AND status = $4`,
		orgID, id, status, StatusPending)
	if err != nil {
		return fmt.Errorf("booking: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no pending appointment %s", ErrNotFound, id)
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var price, policy []byte
	err := row.Scan(
		&a.ID, &a.OrgID, &a.BranchID, &a.StaffID, &a.ServiceID, &a.OwnerID,
		&a.Date, &a.BookedTime.From, &a.BookedTime.To,
		&a.BookedTimeWithBuffer.From, &a.BookedTimeWithBuffer.To,
		&price, &policy, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(price, &a.Price); err != nil {
		return nil, fmt.Errorf("booking: unmarshal price: %w", err)
	}
	if err := json.Unmarshal(policy, &a.Policy); err != nil {
		return nil, fmt.Errorf("booking: unmarshal policy: %w", err)
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan appointment: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate appointments: %w", err)
	}
	return out, nil
}
