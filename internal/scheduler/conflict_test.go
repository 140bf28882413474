package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.June, 22, hour, minute, 0, 0, time.UTC)
}

func slot(startHour, startMinute, endHour, endMinute int) TimeSlot {
	return TimeSlot{Start: at(startHour, startMinute), End: at(endHour, endMinute)}
}

func TestConflicts(t *testing.T) {
	tests := []struct {
		name      string
		candidate TimeSlot
		existing  TimeSlot
		want      bool
	}{
		{"back-to-back after existing", slot(10, 0, 11, 0), slot(11, 0, 12, 0), false},
		{"back-to-back before existing", slot(12, 0, 13, 0), slot(11, 0, 12, 0), false},
		{"touching start only", slot(8, 0, 9, 30), slot(9, 30, 11, 30), false},
		{"shared end", slot(8, 0, 11, 30), slot(9, 30, 11, 30), true},
		{"shared start", slot(9, 30, 10, 0), slot(9, 30, 11, 30), true},
		{"identical", slot(9, 30, 11, 30), slot(9, 30, 11, 30), true},
		{"candidate starts inside", slot(10, 0, 12, 0), slot(9, 30, 11, 30), true},
		{"candidate ends inside", slot(9, 0, 10, 0), slot(9, 30, 11, 30), true},
		{"candidate nested inside", slot(10, 0, 11, 0), slot(9, 30, 11, 30), true},
		{"existing nested inside", slot(9, 0, 12, 0), slot(9, 30, 11, 30), true},
		{"disjoint earlier", slot(8, 0, 9, 0), slot(9, 30, 11, 30), false},
		{"disjoint later", slot(12, 0, 13, 0), slot(9, 30, 11, 30), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Conflicts(tc.candidate, tc.existing); got != tc.want {
				t.Fatalf("expected Conflicts=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestConflicts_MatchesIntervalOverlapForValidSlots(t *testing.T) {
	var slots []TimeSlot
	for start := 8; start < 20; start++ {
		for end := start + 1; end <= 20; end++ {
			slots = append(slots, slot(start, 0, end, 0))
		}
	}

	for _, a := range slots {
		for _, b := range slots {
			overlap := a.Start.Before(b.End) && b.Start.Before(a.End)
			if got := Conflicts(a, b); got != overlap {
				t.Fatalf("candidate %s-%s existing %s-%s: expected %v, got %v",
					a.Start.Format("15:04"), a.End.Format("15:04"),
					b.Start.Format("15:04"), b.End.Format("15:04"), overlap, got)
			}
			if Conflicts(a, b) != Conflicts(b, a) {
				t.Fatalf("expected symmetric result for %v and %v", a, b)
			}
		}
	}
}

func TestFindConflict(t *testing.T) {
	bookings := []Booking{
		{ID: "r-1", ResourceID: "desk-1", Slot: slot(9, 0, 10, 0)},
		{ID: "r-2", ResourceID: "desk-2", Slot: slot(10, 0, 12, 0)},
		{ID: "r-3", ResourceID: "desk-1", Slot: slot(13, 0, 14, 0)},
	}

	t.Run("ignores bookings on other resources", func(t *testing.T) {
		if _, found := FindConflict(bookings, "desk-1", slot(10, 30, 11, 30)); found {
			t.Fatalf("expected no conflict on desk-1")
		}
	})

	t.Run("returns the colliding booking", func(t *testing.T) {
		got, found := FindConflict(bookings, "desk-1", slot(12, 30, 13, 30))
		if !found {
			t.Fatalf("expected conflict")
		}
		if got.ID != "r-3" {
			t.Fatalf("expected r-3, got %s", got.ID)
		}
	})

	t.Run("returns the first collision in order", func(t *testing.T) {
		got, found := FindConflict(bookings, "desk-1", slot(8, 0, 20, 0))
		if !found || got.ID != "r-1" {
			t.Fatalf("expected r-1, got %+v (found=%v)", got, found)
		}
	})

	t.Run("empty input never conflicts", func(t *testing.T) {
		if _, found := FindConflict(nil, "desk-1", slot(8, 0, 9, 0)); found {
			t.Fatalf("expected no conflict")
		}
	})
}
