// Package branch holds the branch directory and per-branch booking settings.
// Branches and settings are small documents owned by the org's admins, stored
// in redis and read on every availability and booking request.
package branch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Address is the branch street address handed to the tax processor.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Branch is a physical business location with its own timezone, schedule and
// policies.
type Branch struct {
	ID       uuid.UUID `json:"id"`
	OrgID    string    `json:"org_id"`
	Name     string    `json:"name"`
	Timezone string    `json:"timezone"`
	Address  Address   `json:"address"`
	Opened   bool      `json:"opened"`
}

// Validate checks the timezone resolves to a real location.
func (b *Branch) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("branch: name required")
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return fmt.Errorf("branch: invalid timezone %q: %w", b.Timezone, err)
	}
	return nil
}

// Location resolves the branch timezone.
func (b *Branch) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("branch: load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// FeeType selects how a fee value is interpreted.
type FeeType string

const (
	// FeeFixed means FeeValue is an absolute amount in cents.
	FeeFixed FeeType = "fixed"
	// FeePercent means FeeValue is a percentage of the service price.
	FeePercent FeeType = "percent"
)

// FeeRule configures one fee: whether it is collected and how it is computed.
// FeeValue is cents when FeeType is fixed, percent points when percent.
type FeeRule struct {
	Collect  bool    `json:"collect"`
	FeeType  FeeType `json:"fee_type,omitempty"`
	FeeValue float64 `json:"fee_value,omitempty"`
	// NoticeHours is the free-cancellation window; only meaningful on the
	// cancel-fee rule.
	NoticeHours int `json:"notice_hours,omitempty"`
}

// Policy pairs the independent cancel-fee and no-show-fee rules.
type Policy struct {
	CancelFee FeeRule `json:"cancel_fee"`
	NoShowFee FeeRule `json:"no_show_fee"`
}

// RequiresStoredPaymentMethod reports whether any fee collection is enabled,
// which obliges the customer to have a payment method on file before booking.
func (p Policy) RequiresStoredPaymentMethod() bool {
	return p.CancelFee.Collect || p.NoShowFee.Collect
}

// Settings is the per-branch booking configuration.
type Settings struct {
	BranchID uuid.UUID `json:"branch_id"`
	OrgID    string    `json:"org_id"`
	// LeadTimeHours is the minimum advance notice before the earliest
	// bookable slot.
	LeadTimeHours int `json:"lead_time_hours"`
	// BookingWindowDays is how many days past the lead-time floor slots may
	// be booked.
	BookingWindowDays int `json:"booking_window_days"`
	// SlotIncrementMinutes is the availability discretization step.
	SlotIncrementMinutes int    `json:"slot_increment_minutes,omitempty"`
	Policy               Policy `json:"policy"`
}

// Validate rejects negative windows and malformed fee rules.
func (s *Settings) Validate() error {
	if s.LeadTimeHours < 0 {
		return fmt.Errorf("branch: negative lead time")
	}
	if s.BookingWindowDays < 0 {
		return fmt.Errorf("branch: negative booking window")
	}
	if s.SlotIncrementMinutes < 0 {
		return fmt.Errorf("branch: negative slot increment")
	}
	for _, rule := range []FeeRule{s.Policy.CancelFee, s.Policy.NoShowFee} {
		if !rule.Collect {
			continue
		}
		if rule.FeeType != FeeFixed && rule.FeeType != FeePercent {
			return fmt.Errorf("branch: fee type %q is not fixed or percent", rule.FeeType)
		}
		if rule.FeeValue < 0 {
			return fmt.Errorf("branch: negative fee value")
		}
	}
	return nil
}
