// Package customer stores the customer profiles the booking flow consults:
// stored payment methods for fee policies and the running appointment counter.
package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Profile is a customer's billing-relevant record.
type Profile struct {
	CustomerID            uuid.UUID `json:"customer_id"`
	OrgID                 string    `json:"org_id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	StripeCustomerID      string    `json:"stripe_customer_id,omitempty"`
	StripePaymentMethodID string    `json:"stripe_payment_method_id,omitempty"`
	TotalAppointments     int       `json:"total_appointments"`
}

// HasStoredPaymentMethod reports whether fee charges can be collected.
func (p *Profile) HasStoredPaymentMethod() bool {
	return p != nil && p.StripeCustomerID != "" && p.StripePaymentMethodID != ""
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists customer profiles in Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a customer repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("customer: db required")
	}
	return &Repository{db: db}
}

// Profile loads a customer profile, nil when absent.
func (r *Repository) Profile(ctx context.Context, orgID string, customerID uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT customer_id, org_id, email, name, stripe_customer_id,
		       stripe_payment_method_id, total_appointments
		FROM customer_profiles WHERE org_id = $1 AND customer_id = $2`,
		orgID, customerID).Scan(
		&p.CustomerID, &p.OrgID, &p.Email, &p.Name, &p.StripeCustomerID,
		&p.StripePaymentMethodID, &p.TotalAppointments)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("customer: load profile: %w", err)
	}
	return &p, nil
}

// IncrementAppointments bumps the running appointment counter. Callers treat
// failures as non-fatal.
func (r *Repository) IncrementAppointments(ctx context.Context, orgID string, customerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE customer_profiles
		SET total_appointments = total_appointments + 1
		WHERE org_id = $1 AND customer_id = $2`, orgID, customerID)
	if err != nil {
		return fmt.Errorf("customer: increment appointments: %w", err)
	}
	return nil
}

// Upsert creates or updates a profile.
func (r *Repository) Upsert(ctx context.Context, p *Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customer_profiles (customer_id, org_id, email, name,
		    stripe_customer_id, stripe_payment_method_id, total_appointments)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (customer_id) DO UPDATE SET
		    email=EXCLUDED.email, name=EXCLUDED.name,
		    stripe_customer_id=EXCLUDED.stripe_customer_id,
		    stripe_payment_method_id=EXCLUDED.stripe_payment_method_id`,
		p.CustomerID, p.OrgID, p.Email, p.Name, p.StripeCustomerID,
		p.StripePaymentMethodID, p.TotalAppointments)
	if err != nil {
		return fmt.Errorf("customer: upsert profile: %w", err)
	}
	return nil
}
