package persistence

import "time"

// Actor is a person who can hold reservations.
type Actor struct {
	ID             string
	Name           string
	CredentialHash string
	Role           string
	CreatedAt      time.Time
}

// Resource is a bookable desk or conference room.
type Resource struct {
	ID        string
	Name      string
	Kind      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation binds one resource and one actor to a slot.
//
// On write only Resource.ID and Actor.ID are consulted. Reads populate the
// embedded resource and actor from their own tables.
type Reservation struct {
	ID        string
	SlotID    string
	Start     time.Time
	End       time.Time
	Resource  Resource
	Actor     Actor
	CreatedAt time.Time
}
