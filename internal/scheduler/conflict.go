package scheduler

import "time"

// Booking is the minimal view of a reservation needed for conflict and
// availability calculations.
type Booking struct {
	ID         string
	ResourceID string
	Slot       TimeSlot
}

// Conflicts reports whether candidate collides with existing.
//
// A collision is any of: candidate starts strictly inside existing, candidate
// ends strictly inside existing, the two share a start or an end, or existing
// starts strictly inside candidate. A slot ending exactly when the other
// begins does not collide.
func Conflicts(candidate, existing TimeSlot) bool {
	switch {
	case strictlyInside(candidate.Start, existing):
		return true
	case strictlyInside(candidate.End, existing):
		return true
	case candidate.Start.Equal(existing.Start), candidate.End.Equal(existing.End):
		return true
	case strictlyInside(existing.Start, candidate):
		return true
	}
	return false
}

func strictlyInside(t time.Time, s TimeSlot) bool {
	return s.Start.Before(t) && t.Before(s.End)
}

// FindConflict returns the first booking on resourceID whose slot collides
// with candidate. Bookings on other resources are ignored.
func FindConflict(bookings []Booking, resourceID string, candidate TimeSlot) (Booking, bool) {
	for _, b := range bookings {
		if b.ResourceID != resourceID {
			continue
		}
		if Conflicts(candidate, b.Slot) {
			return b, true
		}
	}
	return Booking{}, false
}
