package application

import "github.com/example/coworking-booking/internal/scheduler"

// Role is the privilege level of an actor.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ResourceKind distinguishes desks from conference rooms.
type ResourceKind string

const (
	KindDesk           ResourceKind = "DESK"
	KindConferenceRoom ResourceKind = "CONFERENCE_ROOM"
)

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	return k == KindDesk || k == KindConferenceRoom
}

// Resource is a bookable desk or conference room. Names are unique and
// case-sensitive.
type Resource struct {
	ID   string
	Name string
	Kind ResourceKind
}

// Actor is the party holding or cancelling reservations.
type Actor struct {
	ID             string
	Name           string
	CredentialHash string
	Role           Role
}

// IsAdmin reports whether the actor carries the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Reservation binds one resource and one actor to a slot.
type Reservation struct {
	ID       string
	Resource Resource
	Actor    Actor
	Slot     scheduler.TimeSlot
}

func (r Reservation) booking() scheduler.Booking {
	return scheduler.Booking{ID: r.ID, ResourceID: r.Resource.ID, Slot: r.Slot}
}

// CreateReservationParams carries an externally supplied reservation request.
// Start and End use TimestampLayout.
type CreateReservationParams struct {
	Actor        Actor
	ResourceName string
	Start        string
	End          string
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	Name string
	Kind ResourceKind
}

// ResourceAvailability lists the free slots of one resource on a day.
type ResourceAvailability struct {
	Resource Resource
	Slots    []scheduler.TimeSlot
}
