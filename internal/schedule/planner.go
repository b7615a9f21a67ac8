package schedule

import (
	"fmt"
	"time"
)

// Clock supplies "now". Injected so the planner and policy checks are
// deterministic under test.
type Clock func() time.Time

// DayAvailability lists the bookable start times for one calendar date.
// Slots is empty, never nil, for closed or fully booked days.
type DayAvailability struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// PlanRequest carries everything the planner needs for one availability
// computation.
type PlanRequest struct {
	Schedule *WeeklySchedule
	Location *time.Location
	// LeadTime is the minimum notice before the earliest bookable slot.
	LeadTime time.Duration
	// WindowDays is the number of days the booking window spans past the
	// lead-time floor. The window's last calendar date is included.
	WindowDays int
	Duration   time.Duration
	// Buffer extends each proposed slot's conflict interval past the
	// service duration, matching the buffered intervals bookings hold.
	// It does not affect how slots fit within opening hours.
	Buffer time.Duration
	Step   time.Duration
	// Busy maps calendar date to that day's already-booked intervals
	// (buffered times) for the staff member.
	Busy map[string][]Interval
}

// Planner computes multi-day availability calendars. It holds no state across
// calls; the window is re-anchored to Now on every Plan invocation.
type Planner struct {
	Now Clock
}

// Plan walks each calendar date from the lead-time floor through the end of
// the booking window (last date inclusive), resolving opening hours,
// generating candidate slots and filtering conflicts. Every date in the
// window appears in the result, closed or fully booked days with an empty
// slot list. On the first, partial day candidates before the lead-time floor
// are dropped.
func (p Planner) Plan(req PlanRequest) ([]DayAvailability, error) {
	if req.Location == nil {
		return nil, fmt.Errorf("%w: nil location", ErrInvalidDate)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("schedule: non-positive duration %s", req.Duration)
	}
	step := req.Step
	if step <= 0 {
		step = DefaultStep
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	windowStart := now().In(req.Location).Add(req.LeadTime)
	windowEnd := windowStart.AddDate(0, 0, req.WindowDays)

	var days []DayAvailability
	lastDay := startOfDay(windowEnd)
	for day := startOfDay(windowStart); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		starts, err := SlotStarts(date, req.Location, req.Schedule.RangesOn(day.Weekday()), req.Duration, step)
		if err != nil {
			return nil, err
		}
		starts = dropBefore(starts, windowStart)
		starts = FilterConflicts(starts, req.Duration+req.Buffer, req.Busy[date])

		slots := make([]string, 0, len(starts))
		for _, s := range starts {
			slots = append(slots, s.Format(ClockLayout))
		}
		days = append(days, DayAvailability{Date: date, Slots: slots})
	}
	return days, nil
}

// WindowBounds returns the current lead-time floor and window end, both in
// loc. Exposed so callers can scope their busy-interval queries to the same
// window the planner will walk.
func (p Planner) WindowBounds(loc *time.Location, leadTime time.Duration, windowDays int) (time.Time, time.Time) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	start := now().In(loc).Add(leadTime)
	return start, start.AddDate(0, 0, windowDays)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dropBefore(starts []time.Time, floor time.Time) []time.Time {
	kept := starts[:0]
	for _, s := range starts {
		if !s.Before(floor) {
			kept = append(kept, s)
		}
	}
	return kept
}
