package schedule

import "time"

// DefaultStep is the slot discretization increment when the branch settings do
// not specify one.
const DefaultStep = 15 * time.Minute

// SlotStarts generates candidate start instants for a service of the given
// duration within the open ranges of one calendar date. Within each range a
// candidate is emitted while start+duration still fits before the range end,
// advancing by step. Ranges are processed independently in input order; a
// range shorter than the duration yields nothing. Overlapping input ranges are
// not deduplicated — opening hours are expected to be disjoint.
func SlotStarts(date string, loc *time.Location, ranges []TimeRange, duration, step time.Duration) ([]time.Time, error) {
	if duration <= 0 || step <= 0 {
		return nil, nil
	}
	var starts []time.Time
	for _, r := range ranges {
		iv, err := NewInterval(date, r, loc)
		if err != nil {
			return nil, err
		}
		for t := iv.Start; !t.Add(duration).After(iv.End); t = t.Add(step) {
			starts = append(starts, t)
		}
	}
	return starts, nil
}

// FilterConflicts drops every candidate whose half-open held interval
// [start, start+span) overlaps any busy interval. Span is the full time the
// slot would hold on the calendar — service duration plus any buffer — so the
// filter agrees with the buffered intervals admission checks against.
// Touching endpoints do not conflict: a slot ending exactly when a booking
// begins is kept. Order is preserved; the function is pure.
func FilterConflicts(candidates []time.Time, span time.Duration, busy []Interval) []time.Time {
	kept := make([]time.Time, 0, len(candidates))
	for _, start := range candidates {
		proposed := Interval{Start: start, End: start.Add(span)}
		if !overlapsAny(proposed, busy) {
			kept = append(kept, start)
		}
	}
	return kept
}

func overlapsAny(iv Interval, busy []Interval) bool {
	for _, b := range busy {
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}
