package schedule

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestSlotStartsFullDay(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	ranges := []TimeRange{{From: "09:00", To: "17:00"}}

	starts, err := SlotStarts("2024-06-10", loc, ranges, 30*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("SlotStarts returned error: %v", err)
	}

	if len(starts) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(starts))
	}
	if got := starts[0].Format(ClockLayout); got != "09:00" {
		t.Errorf("first slot = %s, want 09:00", got)
	}
	if got := starts[len(starts)-1].Format(ClockLayout); got != "16:30" {
		t.Errorf("last slot = %s, want 16:30", got)
	}
	for _, s := range starts {
		if s.Format(ClockLayout) == "17:00" {
			t.Errorf("slot at closing time 17:00 must not be emitted")
		}
	}
}

func TestSlotStartsNeverExceedsRangeEnd(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	ranges := []TimeRange{{From: "09:00", To: "12:10"}}
	duration := 45 * time.Minute

	starts, err := SlotStarts("2024-06-10", loc, ranges, duration, 15*time.Minute)
	if err != nil {
		t.Fatalf("SlotStarts returned error: %v", err)
	}
	end, _ := At("2024-06-10", "12:10", loc)
	for _, s := range starts {
		if s.Add(duration).After(end) {
			t.Errorf("slot %s + duration exceeds range end", s.Format(ClockLayout))
		}
	}
}

func TestSlotStartsRangeShorterThanDuration(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	ranges := []TimeRange{{From: "09:00", To: "09:20"}}

	starts, err := SlotStarts("2024-06-10", loc, ranges, 30*time.Minute, 15*time.Minute)
	if err != nil {
		t.Fatalf("SlotStarts returned error: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("expected no slots in a range shorter than the duration, got %d", len(starts))
	}
}

func TestFilterConflictsHalfOpen(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	duration := 30 * time.Minute

	at := func(clock string) time.Time {
		t.Helper()
		instant, err := At("2024-06-10", clock, loc)
		if err != nil {
			t.Fatalf("At: %v", err)
		}
		return instant
	}

	booked := Interval{Start: at("10:00"), End: at("11:00")}
	candidates := []time.Time{at("09:30"), at("10:00"), at("10:30"), at("11:00")}

	kept := FilterConflicts(candidates, duration, []Interval{booked})

	want := []string{"09:30", "11:00"}
	if len(kept) != len(want) {
		t.Fatalf("kept %d slots, want %d", len(kept), len(want))
	}
	for i, w := range want {
		if got := kept[i].Format(ClockLayout); got != w {
			t.Errorf("kept[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestFilterConflictsIdempotent(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	duration := 45 * time.Minute

	starts, err := SlotStarts("2024-06-10", loc, []TimeRange{{From: "08:00", To: "13:00"}}, duration, 15*time.Minute)
	if err != nil {
		t.Fatalf("SlotStarts: %v", err)
	}
	busyStart, _ := At("2024-06-10", "10:00", loc)
	busy := []Interval{{Start: busyStart, End: busyStart.Add(time.Hour)}}

	first := FilterConflicts(starts, duration, busy)
	second := FilterConflicts(starts, duration, busy)

	if len(first) != len(second) {
		t.Fatalf("repeated filtering changed result size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("repeated filtering changed slot %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestIntervalOverlapsTouchingEndpoints(t *testing.T) {
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	a := Interval{Start: base, End: base.Add(time.Hour)}
	b := Interval{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}

	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("adjacent intervals must not overlap")
	}
	c := Interval{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}
	if !a.Overlaps(c) {
		t.Fatalf("intersecting intervals must overlap")
	}
}
