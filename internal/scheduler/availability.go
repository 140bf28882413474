package scheduler

import (
	"iter"
	"slices"
	"time"
)

// AvailableSlots yields the free gaps inside window on the date of day.
//
// Only bookings whose start falls on that date are considered; callers are
// expected to pass bookings for a single resource. Gaps are yielded in
// chronological order and none has zero length. The returned sequence may be
// ranged over more than once.
func AvailableSlots(bookings []Booking, day time.Time, window BusinessWindow) iter.Seq[TimeSlot] {
	return func(yield func(TimeSlot) bool) {
		open, closing := window.Bounds(day)

		sameDay := make([]TimeSlot, 0, len(bookings))
		for _, b := range bookings {
			if SameDate(b.Slot.Start, day) {
				sameDay = append(sameDay, b.Slot)
			}
		}
		slices.SortStableFunc(sameDay, CompareSlots)

		cursor := open
		for _, slot := range sameDay {
			start := slot.Start.In(day.Location())
			if cursor.Before(start) {
				if !yield(TimeSlot{Start: cursor, End: start}) {
					return
				}
			}
			cursor = slot.End.In(day.Location())
		}

		if cursor.Before(closing) {
			yield(TimeSlot{Start: cursor, End: closing})
		}
	}
}
