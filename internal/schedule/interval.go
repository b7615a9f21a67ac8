// Package schedule implements the appointment slot engine: wall-clock time
// ranges, timezone-aware intervals, opening-hours resolution, slot generation,
// conflict filtering and the booking-window planner.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate reports a date, clock value or timezone that cannot be
// resolved to an instant.
var ErrInvalidDate = errors.New("schedule: invalid date")

const (
	// DateLayout is the branch-local calendar date format used everywhere
	// appointments are keyed ("2024-06-10").
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock format for opening hours and booked
	// times ("14:30").
	ClockLayout = "15:04"
)

// TimeRange is a wall-clock range within a single day, half-open: From is
// included, To is not. Values are branch-local "HH:mm" strings.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate checks both endpoints parse and From precedes To.
func (r TimeRange) Validate() error {
	from, err := parseClock(r.From)
	if err != nil {
		return err
	}
	to, err := parseClock(r.To)
	if err != nil {
		return err
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: range %q-%q is not ascending", ErrInvalidDate, r.From, r.To)
	}
	return nil
}

// Interval is a half-open instant range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two half-open intervals intersect. Touching
// endpoints do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// At resolves a calendar date plus wall-clock value to an instant in loc.
// Wall-clock parsing keeps DST transitions correct: "09:00" on a
// spring-forward day is still local 09:00.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		return time.Time{}, fmt.Errorf("%w: nil location", ErrInvalidDate)
	}
	t, err := time.ParseInLocation(DateLayout+"T"+ClockLayout, date+"T"+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q: %v", ErrInvalidDate, date, clock, err)
	}
	return t, nil
}

// NewInterval resolves a wall-clock range on a date to an instant interval.
func NewInterval(date string, r TimeRange, loc *time.Location) (Interval, error) {
	start, err := At(date, r.From, loc)
	if err != nil {
		return Interval{}, err
	}
	end, err := At(date, r.To, loc)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: clock %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}
