package http

import (
	"context"
	"iter"
	"net/http"
	"slices"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/auth"
	"github.com/example/coworking-booking/internal/scheduler"
)

var (
	alice = application.Actor{ID: "alice", Name: "Alice", Role: application.RoleUser}
	deskA = application.Resource{ID: "desk-a", Name: "Desk A", Kind: application.KindDesk}
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.June, 22, hour, minute, 0, 0, time.UTC)
}

type reservationServiceStub struct {
	createParams application.CreateReservationParams
	createID     string
	createErr    error

	cancelID    string
	cancelActor application.Actor
	cancelErr   error

	reservations []application.Reservation
	listErr      error
	sortKey      string
	mineActor    application.Actor

	availabilityResource string
	slots                []scheduler.TimeSlot
	all                  []application.ResourceAvailability
	availabilityErr      error
}

func (s *reservationServiceStub) CreateReservation(_ context.Context, params application.CreateReservationParams) (string, error) {
	s.createParams = params
	return s.createID, s.createErr
}

func (s *reservationServiceStub) CancelReservation(_ context.Context, id string, actor application.Actor) error {
	s.cancelID, s.cancelActor = id, actor
	return s.cancelErr
}

func (s *reservationServiceStub) ListReservations(context.Context) ([]application.Reservation, error) {
	return s.reservations, s.listErr
}

func (s *reservationServiceStub) ListReservationsByActor(_ context.Context, actor application.Actor) ([]application.Reservation, error) {
	s.mineActor = actor
	return s.reservations, s.listErr
}

func (s *reservationServiceStub) ListReservationsSorted(_ context.Context, key string) ([]application.Reservation, error) {
	s.sortKey = key
	return s.reservations, s.listErr
}

func (s *reservationServiceStub) ParseDay(value string) (time.Time, error) {
	return application.NewReservationValidator(nil, nil, time.UTC).ParseDay(value)
}

func (s *reservationServiceStub) AvailableSlots(_ context.Context, name string, _ time.Time) (iter.Seq[scheduler.TimeSlot], error) {
	s.availabilityResource = name
	if s.availabilityErr != nil {
		return nil, s.availabilityErr
	}
	return slices.Values(s.slots), nil
}

func (s *reservationServiceStub) AvailableSlotsForAll(context.Context, time.Time) ([]application.ResourceAvailability, error) {
	return s.all, s.availabilityErr
}

type resourceServiceStub struct {
	input       application.ResourceInput
	currentName string
	resource    application.Resource
	resources   []application.Resource
	err         error
	removed     string
	removeErr   error
}

func (s *resourceServiceStub) CreateResource(_ context.Context, input application.ResourceInput) (application.Resource, error) {
	s.input = input
	return s.resource, s.err
}

func (s *resourceServiceStub) UpdateResource(_ context.Context, currentName string, input application.ResourceInput) (application.Resource, error) {
	s.currentName, s.input = currentName, input
	return s.resource, s.err
}

func (s *resourceServiceStub) ListResources(context.Context) ([]application.Resource, error) {
	return s.resources, s.err
}

func (s *resourceServiceStub) CancelResourceAndReservations(_ context.Context, name string) error {
	s.removed = name
	return s.removeErr
}

type tokenValidatorStub struct {
	claims *auth.Claims
	err    error
}

func (v tokenValidatorStub) Validate(string) (*auth.Claims, error) {
	return v.claims, v.err
}

type actorProvisionerStub struct {
	seen application.Actor
	err  error
}

func (p *actorProvisionerStub) EnsureActor(_ context.Context, actor application.Actor) (application.Actor, error) {
	p.seen = actor
	if p.err != nil {
		return application.Actor{}, p.err
	}
	return actor, nil
}

// withActor authenticates every request as actor.
func withActor(actor application.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}
