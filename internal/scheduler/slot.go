package scheduler

import "time"

// TimeSlot is a half-open interval [Start, End) on the wall clock.
// ID is empty until the slot has been persisted.
type TimeSlot struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Valid reports whether the slot starts strictly before it ends.
func (s TimeSlot) Valid() bool {
	return s.Start.Before(s.End)
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// CompareSlots orders slots by their start instant.
func CompareSlots(a, b TimeSlot) int {
	return a.Start.Compare(b.Start)
}

// BusinessWindow is the daily span during which resources can be booked,
// expressed as offsets from local midnight.
type BusinessWindow struct {
	Open  time.Duration
	Close time.Duration
}

// DefaultBusinessWindow spans 08:00 to 20:00.
var DefaultBusinessWindow = BusinessWindow{
	Open:  8 * time.Hour,
	Close: 20 * time.Hour,
}

// Bounds returns the opening and closing instants of the window on the
// calendar date of day, in day's location.
func (w BusinessWindow) Bounds(day time.Time) (time.Time, time.Time) {
	midnight := StartOfDay(day)
	return midnight.Add(w.Open), midnight.Add(w.Close)
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date when a is
// viewed in b's location.
func SameDate(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
