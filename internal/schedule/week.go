package schedule

import (
	"fmt"
	"time"
)

// WeeklySchedule holds a staff member's recurring opening hours, one ordered
// list of ranges per weekday. A missing or empty list means closed that day.
// Ranges are stored as given; consumers treat overlapping input defensively.
type WeeklySchedule struct {
	Monday    []TimeRange `json:"monday"`
	Tuesday   []TimeRange `json:"tuesday"`
	Wednesday []TimeRange `json:"wednesday"`
	Thursday  []TimeRange `json:"thursday"`
	Friday    []TimeRange `json:"friday"`
	Saturday  []TimeRange `json:"saturday"`
	Sunday    []TimeRange `json:"sunday"`
}

// RangesOn returns the opening ranges configured for a weekday. The result is
// never nil.
func (ws *WeeklySchedule) RangesOn(day time.Weekday) []TimeRange {
	if ws == nil {
		return []TimeRange{}
	}
	var ranges []TimeRange
	switch day {
	case time.Monday:
		ranges = ws.Monday
	case time.Tuesday:
		ranges = ws.Tuesday
	case time.Wednesday:
		ranges = ws.Wednesday
	case time.Thursday:
		ranges = ws.Thursday
	case time.Friday:
		ranges = ws.Friday
	case time.Saturday:
		ranges = ws.Saturday
	case time.Sunday:
		ranges = ws.Sunday
	}
	if ranges == nil {
		return []TimeRange{}
	}
	return ranges
}

// RangesOnDate resolves a calendar date to its weekday in loc and returns the
// configured ranges for that day.
func (ws *WeeklySchedule) RangesOnDate(date string, loc *time.Location) ([]TimeRange, error) {
	if loc == nil {
		return nil, fmt.Errorf("%w: nil location", ErrInvalidDate)
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDate, date, err)
	}
	return ws.RangesOn(day.Weekday()), nil
}

// Validate checks every configured range.
func (ws *WeeklySchedule) Validate() error {
	for day := time.Sunday; day <= time.Saturday; day++ {
		for _, r := range ws.RangesOn(day) {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
		}
	}
	return nil
}
