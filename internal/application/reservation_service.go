package application

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/example/coworking-booking/internal/scheduler"
)

// ReservationService creates, cancels and lists reservations and computes
// availability. It keeps no state between calls; every operation reads the
// store afresh.
type ReservationService struct {
	store     ReservationStore
	catalog   ResourceCatalog
	validator *ReservationValidator
	locker    ResourceLocker
	publisher EventPublisher
	now       func() time.Time
	window    scheduler.BusinessWindow
	location  *time.Location
	logger    *slog.Logger
}

// ReservationServiceOption configures a ReservationService.
type ReservationServiceOption func(*ReservationService)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		s.logger = logger
	}
}

// WithLocker replaces the in-process per-resource lock.
func WithLocker(locker ResourceLocker) ReservationServiceOption {
	return func(s *ReservationService) {
		s.locker = locker
	}
}

// WithPublisher sets the destination of lifecycle events.
func WithPublisher(publisher EventPublisher) ReservationServiceOption {
	return func(s *ReservationService) {
		s.publisher = publisher
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

// WithBusinessWindow overrides the daily bookable window.
func WithBusinessWindow(window scheduler.BusinessWindow) ReservationServiceOption {
	return func(s *ReservationService) {
		s.window = window
	}
}

// WithLocation sets the location timestamps and dates are interpreted in.
func WithLocation(loc *time.Location) ReservationServiceOption {
	return func(s *ReservationService) {
		s.location = loc
	}
}

// NewReservationService wires the store and catalog with optional overrides.
func NewReservationService(store ReservationStore, catalog ResourceCatalog, opts ...ReservationServiceOption) *ReservationService {
	s := &ReservationService{
		store:   store,
		catalog: catalog,
		window:  scheduler.DefaultBusinessWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = NewKeyedMutex()
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.UTC
	}
	s.logger = defaultLogger(s.logger)
	s.validator = NewReservationValidator(catalog, store, s.location)
	return s
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Validator exposes the checks used by the service.
func (s *ReservationService) Validator() *ReservationValidator {
	return s.validator
}

// CreateReservation validates params and persists the reservation, returning
// its ID. Checks run in order (completeness, start, end, interval, conflict)
// and the first failure is returned with nothing persisted. Creation is
// serialized per resource.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (id string, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("reservation store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"actor_id", params.Actor.ID,
		"resource", params.ResourceName,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", id).InfoContext(ctx, "reservation created")
	}()

	resource, err := s.validator.ResolveRequest(ctx, params)
	if err != nil {
		return
	}
	start, err := s.validator.ParseTimestamp("start", params.Start)
	if err != nil {
		return
	}
	end, err := s.validator.ParseTimestamp("end", params.End)
	if err != nil {
		return
	}
	slot, err := s.validator.ValidateInterval(start, end)
	if err != nil {
		return
	}

	unlock, err := s.locker.LockResource(ctx, resource.ID)
	if err != nil {
		err = &StoreError{Op: "lock resource", Err: err}
		return
	}
	defer unlock()

	existing, err := s.reservationsFor(ctx, resource.ID)
	if err != nil {
		return
	}
	if err = s.validator.CheckConflict(resource, slot, existing); err != nil {
		return
	}

	id, err = s.store.SaveReservation(ctx, resource, params.Actor, slot)
	if err != nil {
		err = mapStoreError("save reservation", err)
		return
	}

	s.publish(ctx, logger, Event{
		Type:          EventReservationCreated,
		ReservationID: id,
		ResourceID:    resource.ID,
		ResourceName:  resource.Name,
		ActorID:       params.Actor.ID,
		Start:         slot.Start,
		End:           slot.End,
	})
	return
}

// CancelReservation deletes reservation id when actor owns it or is an
// administrator.
func (s *ReservationService) CancelReservation(ctx context.Context, id string, actor Actor) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("reservation store not configured")
	}

	logger := s.loggerWith(ctx, "CancelReservation",
		"actor_id", actor.ID,
		"reservation_id", id,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	reservation, err := s.store.GetReservation(ctx, id)
	if err != nil {
		err = mapStoreError("get reservation", err)
		return
	}
	if err = s.validator.AuthorizeCancellation(ctx, id, actor); err != nil {
		return
	}
	if err = s.store.DeleteReservation(ctx, id); err != nil {
		err = mapStoreError("delete reservation", err)
		return
	}

	s.publish(ctx, logger, Event{
		Type:          EventReservationCancelled,
		ReservationID: reservation.ID,
		ResourceID:    reservation.Resource.ID,
		ResourceName:  reservation.Resource.Name,
		ActorID:       actor.ID,
		Start:         reservation.Slot.Start,
		End:           reservation.Slot.End,
	})
	return nil
}

// ListReservations returns every reservation in store order.
func (s *ReservationService) ListReservations(ctx context.Context) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return nil, nil
	}
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		err = mapStoreError("list reservations", err)
		s.loggerWith(ctx, "ListReservations").ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return reservations, nil
}

// ListReservationsByActor returns the reservations held by actor.
func (s *ReservationService) ListReservationsByActor(ctx context.Context, actor Actor) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return nil, nil
	}
	reservations, err := s.store.ListReservationsByActor(ctx, actor)
	if err != nil {
		err = mapStoreError("list reservations by actor", err)
		s.loggerWith(ctx, "ListReservationsByActor", "actor_id", actor.ID).
			ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return reservations, nil
}

// ListReservationsSorted returns every reservation ordered by key.
func (s *ReservationService) ListReservationsSorted(ctx context.Context, key string) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	sortKey, err := ParseSortKey(key)
	if err != nil {
		return nil, err
	}
	reservations, err := s.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return SortReservations(reservations, sortKey)
}

// ParseDay parses an availability date in the service's location.
func (s *ReservationService) ParseDay(value string) (time.Time, error) {
	return s.validator.ParseDay(value)
}

// AvailableSlots returns the free gaps of the named resource within the
// business window on day. The sequence is computed from the reservations read
// by this call and can be ranged over repeatedly.
func (s *ReservationService) AvailableSlots(ctx context.Context, resourceName string, day time.Time) (iter.Seq[scheduler.TimeSlot], error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}

	resource, err := s.findResource(ctx, resourceName)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationsFor(ctx, resource.ID)
	if err != nil {
		return nil, err
	}
	return scheduler.AvailableSlots(bookingsOf(reservations), s.calendarDay(day), s.window), nil
}

// AvailableSlotsForAll returns the free gaps of every resource on day,
// ordered by resource name.
func (s *ReservationService) AvailableSlotsForAll(ctx context.Context, day time.Time) ([]ResourceAvailability, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.catalog == nil || s.store == nil {
		return nil, fmt.Errorf("reservation store not configured")
	}

	resources, err := s.catalog.ListResources(ctx)
	if err != nil {
		return nil, mapStoreError("list resources", err)
	}
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, mapStoreError("list reservations", err)
	}

	byResource := make(map[string][]scheduler.Booking, len(resources))
	for _, r := range reservations {
		byResource[r.Resource.ID] = append(byResource[r.Resource.ID], r.booking())
	}

	local := s.calendarDay(day)
	result := make([]ResourceAvailability, 0, len(resources))
	for _, resource := range sortResources(resources) {
		slots := make([]scheduler.TimeSlot, 0)
		for slot := range scheduler.AvailableSlots(byResource[resource.ID], local, s.window) {
			slots = append(slots, slot)
		}
		result = append(result, ResourceAvailability{Resource: resource, Slots: slots})
	}
	return result, nil
}

// calendarDay places the calendar date of day at midnight in the service
// location.
func (s *ReservationService) calendarDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

// CancelResourceAndReservations removes the named resource from the catalog.
// The store removes the resource's reservations with it.
func (s *ReservationService) CancelResourceAndReservations(ctx context.Context, resourceName string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.catalog == nil {
		return fmt.Errorf("resource catalog not configured")
	}

	logger := s.loggerWith(ctx, "CancelResourceAndReservations", "resource", resourceName)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to remove resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource removed")
	}()

	resource, err := s.findResource(ctx, resourceName)
	if err != nil {
		return
	}
	if err = s.catalog.DeleteResourceByName(ctx, resource.Name); err != nil {
		err = resourceLookupError(mapStoreError("delete resource", err))
		return
	}

	s.publish(ctx, logger, Event{
		Type:         EventResourceRemoved,
		ResourceID:   resource.ID,
		ResourceName: resource.Name,
	})
	return nil
}

func (s *ReservationService) findResource(ctx context.Context, name string) (Resource, error) {
	if s.catalog == nil {
		return Resource{}, fmt.Errorf("resource catalog not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, ErrResourceNotFound
	}
	resource, err := s.catalog.FindResourceByName(ctx, name)
	if err != nil {
		return Resource{}, resourceLookupError(mapStoreError("find resource", err))
	}
	return resource, nil
}

func (s *ReservationService) reservationsFor(ctx context.Context, resourceID string) ([]Reservation, error) {
	if s.store == nil {
		return nil, fmt.Errorf("reservation store not configured")
	}
	all, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, mapStoreError("list reservations", err)
	}
	matched := make([]Reservation, 0, len(all))
	for _, r := range all {
		if r.Resource.ID == resourceID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (s *ReservationService) publish(ctx context.Context, logger *slog.Logger, event Event) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish event", "event_type", string(event.Type), "error", err)
	}
}

func resourceLookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrResourceNotFound
	}
	return err
}

func bookingsOf(reservations []Reservation) []scheduler.Booking {
	bookings := make([]scheduler.Booking, len(reservations))
	for i, r := range reservations {
		bookings[i] = r.booking()
	}
	return bookings
}
