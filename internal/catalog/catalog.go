// Package catalog provides read access to the services a branch offers.
// Duration, buffer and price drive slot generation and admission pricing.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable service offered at a branch.
type Service struct {
	ID          uuid.UUID `json:"id"`
	OrgID       string    `json:"org_id"`
	BranchID    uuid.UUID `json:"branch_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	// PriceCents is the customer-facing service fee before tax.
	PriceCents int64 `json:"price_cents"`
	// DurationMinutes is the customer-visible appointment length.
	DurationMinutes int `json:"duration_minutes"`
	// BufferMinutes pads the booked interval for conflict detection only.
	BufferMinutes int `json:"buffer_minutes"`
	// TaxCode is the processor's product tax code for this service category.
	TaxCode string `json:"tax_code,omitempty"`
	Active  bool   `json:"active"`
	// StaffIDs lists the staff members who perform this service.
	StaffIDs []string `json:"staff_ids"`
}

// Duration returns the service length as a duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Buffer returns the conflict-detection padding as a duration.
func (s *Service) Buffer() time.Duration {
	return time.Duration(s.BufferMinutes) * time.Minute
}
