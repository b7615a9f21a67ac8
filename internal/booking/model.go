// Package booking implements appointment admission, availability and
// cancellation for staff at a branch.
package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairloft/salon-platform/internal/schedule"
)

// Status is an appointment's lifecycle state. The only mutation an
// appointment permits after creation is the pending -> terminal transition.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no show"
)

// terminal statuses an appointment may transition to from pending.
func (s Status) validTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// Price is the admission-time price breakdown, amounts in cents.
type Price struct {
	ServiceFeeCents int64 `json:"service_fee_cents"`
	TaxCents        int64 `json:"tax_cents"`
	// TaxRate is the effective percentage applied, kept for display.
	TaxRate    float64 `json:"tax_rate"`
	TotalCents int64   `json:"total_cents"`
}

// FeeSnapshot is one fee rule resolved against the service price at booking
// time. FeeCents is already computed; the original fixed/percent shape is not
// retained.
type FeeSnapshot struct {
	Collect  bool  `json:"collect"`
	FeeCents int64 `json:"fee_cents"`
	// NoticeHours is the free-cancellation window; zero on the no-show rule.
	NoticeHours int `json:"notice_hours,omitempty"`
}

// PolicySnapshot is the fee policy captured at admission. It is embedded in
// the appointment and never re-read from live branch settings, so later
// settings edits cannot change the terms a customer booked under.
type PolicySnapshot struct {
	CancelFee FeeSnapshot `json:"cancel_fee"`
	NoShowFee FeeSnapshot `json:"no_show_fee"`
}

// Appointment is a booked slot. Identity and all fields except Status are
// immutable once created.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	OrgID     string    `json:"org_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	StaffID   uuid.UUID `json:"staff_id"`
	ServiceID uuid.UUID `json:"service_id"`
	// OwnerID is the booking customer.
	OwnerID uuid.UUID `json:"owner_id"`
	// Date is the branch-local calendar date, "2006-01-02".
	Date string `json:"date"`
	// BookedTime is the customer-visible interval, service duration only.
	BookedTime schedule.TimeRange `json:"booked_time"`
	// BookedTimeWithBuffer extends BookedTime by the service buffer and is
	// what conflict detection runs against.
	BookedTimeWithBuffer schedule.TimeRange `json:"booked_time_with_buffer"`
	Price                Price              `json:"price"`
	Policy               PolicySnapshot     `json:"policy"`
	Status               Status             `json:"status"`
	CreatedAt            time.Time          `json:"created_at"`
}

// StartsAt resolves the appointment's branch-local start instant.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	start, err := schedule.At(a.Date, a.BookedTime.From, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("booking: appointment %s start: %w", a.ID, err)
	}
	return start, nil
}

// BufferedInterval resolves the conflict-detection interval for this
// appointment's date in the branch timezone.
func (a *Appointment) BufferedInterval(loc *time.Location) (schedule.Interval, error) {
	return schedule.NewInterval(a.Date, a.BookedTimeWithBuffer, loc)
}
