package schedule

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func weekdaySchedule() *WeeklySchedule {
	open := []TimeRange{{From: "09:00", To: "17:00"}}
	return &WeeklySchedule{
		Monday:    open,
		Tuesday:   open,
		Wednesday: open,
		Thursday:  open,
		Friday:    open,
	}
}

func TestPlanLeadTimeExcludesToday(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// Monday 2024-06-10 10:00 local, 24h lead time, 2 day window.
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)

	planner := Planner{Now: fixedClock(now)}
	days, err := planner.Plan(PlanRequest{
		Schedule:   weekdaySchedule(),
		Location:   loc,
		LeadTime:   24 * time.Hour,
		WindowDays: 2,
		Duration:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	want := []string{"2024-06-11", "2024-06-12", "2024-06-13"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, date := range want {
		if days[i].Date != date {
			t.Errorf("days[%d].Date = %s, want %s", i, days[i].Date, date)
		}
	}
	for _, d := range days {
		if d.Date == "2024-06-10" {
			t.Errorf("monday must be excluded entirely by the 24h lead time")
		}
	}
	// Tuesday starts at the 10:00 lead-time floor, so 09:00-09:45 are gone.
	if got := days[0].Slots[0]; got != "10:00" {
		t.Errorf("first tuesday slot = %s, want 10:00", got)
	}
	// Later days are complete.
	if got := days[1].Slots[0]; got != "09:00" {
		t.Errorf("first wednesday slot = %s, want 09:00", got)
	}
}

func TestPlanEmitsClosedDaysWithEmptySlots(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// Friday 2024-06-14; the window spans the closed weekend.
	now := time.Date(2024, 6, 14, 8, 0, 0, 0, loc)

	planner := Planner{Now: fixedClock(now)}
	days, err := planner.Plan(PlanRequest{
		Schedule:   weekdaySchedule(),
		Location:   loc,
		WindowDays: 3,
		Duration:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	byDate := map[string][]string{}
	for _, d := range days {
		if d.Slots == nil {
			t.Fatalf("%s: slots must be empty, not nil", d.Date)
		}
		byDate[d.Date] = d.Slots
	}
	for _, weekend := range []string{"2024-06-15", "2024-06-16"} {
		slots, ok := byDate[weekend]
		if !ok {
			t.Fatalf("closed day %s missing from calendar", weekend)
		}
		if len(slots) != 0 {
			t.Errorf("closed day %s has %d slots", weekend, len(slots))
		}
	}
	if len(byDate["2024-06-17"]) == 0 {
		t.Errorf("monday inside the window should have slots")
	}
}

func TestPlanFiltersBookedSlots(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2024, 6, 9, 9, 0, 0, 0, loc) // Sunday

	booked, err := NewInterval("2024-06-10", TimeRange{From: "10:00", To: "11:00"}, loc)
	if err != nil {
		t.Fatalf("NewInterval: %v", err)
	}

	planner := Planner{Now: fixedClock(now)}
	days, err := planner.Plan(PlanRequest{
		Schedule:   weekdaySchedule(),
		Location:   loc,
		WindowDays: 1,
		Duration:   30 * time.Minute,
		Step:       30 * time.Minute,
		Busy:       map[string][]Interval{"2024-06-10": {booked}},
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	var monday *DayAvailability
	for i := range days {
		if days[i].Date == "2024-06-10" {
			monday = &days[i]
		}
	}
	if monday == nil {
		t.Fatalf("monday missing from calendar")
	}

	has := map[string]bool{}
	for _, s := range monday.Slots {
		has[s] = true
	}
	if has["10:00"] || has["10:30"] {
		t.Errorf("slots inside the booked interval must be removed: %v", monday.Slots)
	}
	if !has["09:30"] {
		t.Errorf("09:30 ends exactly at the booking start and must be kept")
	}
	if !has["11:00"] {
		t.Errorf("11:00 starts exactly at the booking end and must be kept")
	}
}

func TestPlanRestartableAcrossCalls(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	planner := Planner{Now: fixedClock(time.Date(2024, 6, 10, 10, 0, 0, 0, loc))}

	req := PlanRequest{
		Schedule:   weekdaySchedule(),
		Location:   loc,
		WindowDays: 1,
		Duration:   time.Hour,
	}
	first, err := planner.Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := planner.Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("plans differ across calls: %d vs %d days", len(first), len(second))
	}

	// A shifted clock moves the whole window.
	planner.Now = fixedClock(time.Date(2024, 6, 12, 10, 0, 0, 0, loc))
	shifted, err := planner.Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if shifted[0].Date != "2024-06-12" {
		t.Errorf("shifted window starts at %s, want 2024-06-12", shifted[0].Date)
	}
}

func TestPlanAcrossDSTTransition(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// 2025-03-09 is the spring-forward date; wall clock hours keep their names.
	now := time.Date(2025, 3, 8, 8, 0, 0, 0, loc)

	ws := &WeeklySchedule{Sunday: []TimeRange{{From: "09:00", To: "11:00"}}}
	planner := Planner{Now: fixedClock(now)}
	days, err := planner.Plan(PlanRequest{
		Schedule:   ws,
		Location:   loc,
		WindowDays: 1,
		Duration:   time.Hour,
		Step:       time.Hour,
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	for _, d := range days {
		if d.Date == "2025-03-09" {
			if len(d.Slots) != 2 || d.Slots[0] != "09:00" || d.Slots[1] != "10:00" {
				t.Fatalf("DST day slots = %v, want [09:00 10:00]", d.Slots)
			}
			return
		}
	}
	t.Fatalf("DST date missing from calendar")
}

func TestPlanBufferWidensConflictInterval(t *testing.T) {
	loc := time.UTC
	// Monday 2024-06-10 08:00, same-day window. A booking holds 15:00-16:00
	// (buffered). With a 15m buffer a 14:30 slot would hold 14:30-15:15 and
	// must not be offered; 14:00 holds 14:00-14:45 and stays.
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, loc)
	busy := Interval{
		Start: time.Date(2024, 6, 10, 15, 0, 0, 0, loc),
		End:   time.Date(2024, 6, 10, 16, 0, 0, 0, loc),
	}

	planner := Planner{Now: fixedClock(now)}
	days, err := planner.Plan(PlanRequest{
		Schedule:   weekdaySchedule(),
		Location:   loc,
		WindowDays: 0,
		Duration:   30 * time.Minute,
		Buffer:     15 * time.Minute,
		Step:       30 * time.Minute,
		Busy:       map[string][]Interval{"2024-06-10": {busy}},
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	slots := map[string]bool{}
	for _, s := range days[0].Slots {
		slots[s] = true
	}
	if slots["14:30"] {
		t.Fatalf("14:30 holds into the busy interval and must not be offered, got %v", days[0].Slots)
	}
	if slots["15:00"] || slots["15:30"] {
		t.Fatalf("slots inside the busy interval must not be offered, got %v", days[0].Slots)
	}
	if !slots["14:00"] {
		t.Fatalf("14:00 holds 14:00-14:45, clear of the busy interval, and must stay, got %v", days[0].Slots)
	}
	if !slots["16:00"] {
		t.Fatalf("16:00 starts exactly at the busy end and must stay, got %v", days[0].Slots)
	}
}
