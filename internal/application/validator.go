package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/coworking-booking/internal/scheduler"
)

const (
	// TimestampLayout is the accepted textual form of reservation bounds.
	TimestampLayout = "2006-01-02 15:04"
	// DayLayout is the accepted textual form of an availability date.
	DayLayout = "2006-01-02"
)

// ReservationValidator runs the individual checks that guard reservation
// creation and cancellation. Each check returns its own error kind and the
// checks can be called independently.
type ReservationValidator struct {
	catalog  ResourceCatalog
	store    ReservationStore
	location *time.Location
}

// NewReservationValidator builds a validator that parses timestamps in loc.
// A nil loc means UTC.
func NewReservationValidator(catalog ResourceCatalog, store ReservationStore, loc *time.Location) *ReservationValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationValidator{catalog: catalog, store: store, location: loc}
}

// ParseTimestamp parses value using TimestampLayout.
func (v *ReservationValidator) ParseTimestamp(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(value), v.location)
	if err != nil {
		return time.Time{}, newValidationError(ErrMalformedTimestamp, field, "must use the format YYYY-MM-DD HH:MM")
	}
	return t, nil
}

// ParseDay parses value using DayLayout and returns local midnight.
func (v *ReservationValidator) ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), v.location)
	if err != nil {
		return time.Time{}, newValidationError(ErrMalformedTimestamp, "date", "must use the format YYYY-MM-DD")
	}
	return t, nil
}

// ValidateInterval builds the slot [start, end) when start is strictly
// before end.
func (v *ReservationValidator) ValidateInterval(start, end time.Time) (scheduler.TimeSlot, error) {
	slot := scheduler.TimeSlot{Start: start, End: end}
	if !slot.Valid() {
		return scheduler.TimeSlot{}, newValidationError(ErrInvalidInterval, "end", "must be after start")
	}
	return slot, nil
}

// HasConflict returns the first reservation on resource that collides with
// candidate. Reservations are matched to resource by ID.
func (v *ReservationValidator) HasConflict(resource Resource, candidate scheduler.TimeSlot, reservations []Reservation) (Reservation, bool) {
	hit, found := scheduler.FindConflict(bookingsOf(reservations), resource.ID, candidate)
	if !found {
		return Reservation{}, false
	}
	for _, r := range reservations {
		if r.ID == hit.ID {
			return r, true
		}
	}
	return Reservation{}, false
}

// CheckConflict fails with a ConflictError when candidate collides with any
// reservation on resource.
func (v *ReservationValidator) CheckConflict(resource Resource, candidate scheduler.TimeSlot, reservations []Reservation) error {
	existing, found := v.HasConflict(resource, candidate, reservations)
	if !found {
		return nil
	}
	return &ConflictError{Resource: existing.Resource, Existing: existing}
}

// ResolveRequest checks that every required field of params is present and
// that the named resource exists.
func (v *ReservationValidator) ResolveRequest(ctx context.Context, params CreateReservationParams) (Resource, error) {
	vErr := &ValidationError{Kind: ErrIncompleteRequest}
	if strings.TrimSpace(params.Actor.ID) == "" {
		vErr.add("actor", "actor is required")
	}
	name := strings.TrimSpace(params.ResourceName)
	if name == "" {
		vErr.add("resource", "resource is required")
	}
	if strings.TrimSpace(params.Start) == "" {
		vErr.add("start", "start is required")
	}
	if strings.TrimSpace(params.End) == "" {
		vErr.add("end", "end is required")
	}
	if vErr.HasErrors() {
		return Resource{}, vErr
	}

	if v.catalog == nil {
		return Resource{}, errors.New("resource catalog not configured")
	}
	resource, err := v.catalog.FindResourceByName(ctx, name)
	if err != nil {
		err = mapStoreError("find resource", err)
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrResourceNotFound) {
			return Resource{}, newValidationError(ErrIncompleteRequest, "resource", "resource does not exist")
		}
		return Resource{}, err
	}
	return resource, nil
}

// AuthorizeCancellation permits the owner of reservationID or an
// administrator. Ownership is established by scanning the actor's own
// reservations in the store.
func (v *ReservationValidator) AuthorizeCancellation(ctx context.Context, reservationID string, actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if v.store == nil {
		return errors.New("reservation store not configured")
	}

	owned, err := v.store.ListReservationsByActor(ctx, actor)
	if err != nil {
		return mapStoreError("list reservations by actor", err)
	}
	for _, r := range owned {
		if r.ID == reservationID {
			return nil
		}
	}
	return ErrUnauthorized
}
