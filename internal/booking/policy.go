package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/hairloft/salon-platform/internal/branch"
)

// SnapshotPolicy resolves a branch fee policy against the service price at
// admission time. Percent fees are rounded to the nearest cent.
func SnapshotPolicy(p branch.Policy, servicePriceCents int64) PolicySnapshot {
	return PolicySnapshot{
		CancelFee: FeeSnapshot{
			Collect:     p.CancelFee.Collect,
			FeeCents:    feeCents(p.CancelFee, servicePriceCents),
			NoticeHours: p.CancelFee.NoticeHours,
		},
		NoShowFee: FeeSnapshot{
			Collect:  p.NoShowFee.Collect,
			FeeCents: feeCents(p.NoShowFee, servicePriceCents),
		},
	}
}

func feeCents(rule branch.FeeRule, servicePriceCents int64) int64 {
	if !rule.Collect {
		return 0
	}
	if rule.FeeType == branch.FeePercent {
		return int64(math.Round(rule.FeeValue / 100 * float64(servicePriceCents)))
	}
	return int64(rule.FeeValue)
}

// CancelAssessment is the outcome of checking a cancellation attempt against
// the appointment's snapshotted policy.
type CancelAssessment struct {
	// Late means the free-cancellation window has elapsed.
	Late bool `json:"late"`
	// FeeCents is the snapshotted cancel fee, regardless of whether it will
	// be collected.
	FeeCents int64 `json:"fee_cents"`
	// Charge means a fee is actually due: collection enabled, late, and a
	// non-zero fee.
	Charge bool `json:"charge"`
}

// AssessCancellation decides late vs. free for a cancellation attempted at
// now. The threshold is the appointment start minus the snapshotted notice
// window; strictly after the threshold is late. Callers must pass a live
// clock reading on every attempt.
func AssessCancellation(appt *Appointment, loc *time.Location, now time.Time) (CancelAssessment, error) {
	start, err := appt.StartsAt(loc)
	if err != nil {
		return CancelAssessment{}, err
	}
	rule := appt.Policy.CancelFee
	threshold := start.Add(-time.Duration(rule.NoticeHours) * time.Hour)
	late := now.After(threshold)
	return CancelAssessment{
		Late:     late,
		FeeCents: rule.FeeCents,
		Charge:   rule.Collect && late && rule.FeeCents > 0,
	}, nil
}

// NoShowFeeDue returns the fee to collect when an appointment is marked a
// no-show, zero when collection is disabled.
func NoShowFeeDue(appt *Appointment) int64 {
	if !appt.Policy.NoShowFee.Collect {
		return 0
	}
	return appt.Policy.NoShowFee.FeeCents
}

// chargeDescription labels fee charges on the customer's statement.
func chargeDescription(kind string, appt *Appointment) string {
	return fmt.Sprintf("%s fee for appointment on %s at %s", kind, appt.Date, appt.BookedTime.From)
}
