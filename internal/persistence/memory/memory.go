// Package memory provides a map-backed implementation of the persistence
// repositories. It is used as the test double for the engine and as the
// "memory" store driver for local runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/example/coworking-booking/internal/persistence"
)

var validKinds = map[string]bool{
	"DESK":            true,
	"CONFERENCE_ROOM": true,
}

var validRoles = map[string]bool{
	"USER":  true,
	"ADMIN": true,
}

type storedReservation struct {
	seq         uint64
	reservation persistence.Reservation
}

// Storage keeps actors, resources and reservations in process memory.
type Storage struct {
	mu           sync.RWMutex
	actors       map[string]persistence.Actor
	resources    map[string]persistence.Resource
	reservations map[string]storedReservation
	seq          uint64
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{
		actors:       make(map[string]persistence.Actor),
		resources:    make(map[string]persistence.Resource),
		reservations: make(map[string]storedReservation),
	}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Migrate is a no-op.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- ActorRepository implementation ---

// CreateActor stores a new actor. IDs and names are unique.
func (s *Storage) CreateActor(ctx context.Context, actor persistence.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(actor.Name) == "" || !validRoles[actor.Role] {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actors[actor.ID]; ok {
		return fmt.Errorf("memory: actor %s: %w", actor.ID, persistence.ErrDuplicate)
	}
	for _, existing := range s.actors {
		if existing.Name == actor.Name {
			return fmt.Errorf("memory: actor name %q: %w", actor.Name, persistence.ErrDuplicate)
		}
	}

	s.actors[actor.ID] = actor
	return nil
}

// GetActor retrieves an actor by ID.
func (s *Storage) GetActor(ctx context.Context, id string) (persistence.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.actors[id]
	if !ok {
		return persistence.Actor{}, persistence.ErrNotFound
	}
	return actor, nil
}

// GetActorByName retrieves an actor by its unique name.
func (s *Storage) GetActorByName(ctx context.Context, name string) (persistence.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, actor := range s.actors {
		if actor.Name == name {
			return actor, nil
		}
	}
	return persistence.Actor{}, persistence.ErrNotFound
}

// --- ResourceRepository implementation ---

// CreateResource stores a new resource. Names are unique and case-sensitive.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if err := checkResource(resource); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; ok {
		return fmt.Errorf("memory: resource %s: %w", resource.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureUniqueResourceNameLocked(resource.ID, resource.Name); err != nil {
		return err
	}

	s.resources[resource.ID] = resource
	return nil
}

// UpdateResource replaces an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if err := checkResource(resource); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueResourceNameLocked(resource.ID, resource.Name); err != nil {
		return err
	}

	s.resources[resource.ID] = resource
	return nil
}

// GetResource retrieves a resource by ID.
func (s *Storage) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// GetResourceByName retrieves a resource by its exact name.
func (s *Storage) GetResourceByName(ctx context.Context, name string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.findResourceByNameLocked(name)
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// ListResources returns all resources ordered by name.
func (s *Storage) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]persistence.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		resources = append(resources, resource)
	}

	slices.SortFunc(resources, func(a, b persistence.Resource) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return resources, nil
}

// DeleteResourceByName removes a resource and every reservation held on it.
func (s *Storage) DeleteResourceByName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource, ok := s.findResourceByNameLocked(name)
	if !ok {
		return persistence.ErrNotFound
	}

	delete(s.resources, resource.ID)
	for id, stored := range s.reservations {
		if stored.reservation.Resource.ID == resource.ID {
			delete(s.reservations, id)
		}
	}

	return nil
}

func (s *Storage) findResourceByNameLocked(name string) (persistence.Resource, bool) {
	for _, resource := range s.resources {
		if resource.Name == name {
			return resource, true
		}
	}
	return persistence.Resource{}, false
}

func (s *Storage) ensureUniqueResourceNameLocked(id, name string) error {
	for existingID, resource := range s.resources {
		if existingID != id && resource.Name == name {
			return fmt.Errorf("memory: resource name %q: %w", name, persistence.ErrDuplicate)
		}
	}
	return nil
}

func checkResource(resource persistence.Resource) error {
	if strings.TrimSpace(resource.ID) == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if !validKinds[resource.Kind] {
		return persistence.ErrConstraintViolation
	}
	return nil
}

// --- ReservationRepository implementation ---

// CreateReservation stores a reservation referencing an existing resource and
// actor. An empty SlotID defaults to the reservation ID.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if strings.TrimSpace(reservation.ID) == "" || !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}
	if reservation.SlotID == "" {
		reservation.SlotID = reservation.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return fmt.Errorf("memory: reservation %s: %w", reservation.ID, persistence.ErrDuplicate)
	}
	for _, stored := range s.reservations {
		if stored.reservation.SlotID == reservation.SlotID {
			return fmt.Errorf("memory: slot %s: %w", reservation.SlotID, persistence.ErrDuplicate)
		}
	}
	if _, ok := s.resources[reservation.Resource.ID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.actors[reservation.Actor.ID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.seq++
	s.reservations[reservation.ID] = storedReservation{
		seq: s.seq,
		reservation: persistence.Reservation{
			ID:        reservation.ID,
			SlotID:    reservation.SlotID,
			Start:     reservation.Start,
			End:       reservation.End,
			Resource:  persistence.Resource{ID: reservation.Resource.ID},
			Actor:     persistence.Actor{ID: reservation.Actor.ID},
			CreatedAt: reservation.CreatedAt,
		},
	}
	return nil
}

// GetReservation retrieves a reservation with its resource and actor populated.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return s.hydrateLocked(stored.reservation), nil
}

// ListReservations returns matching reservations in insertion order.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]storedReservation, 0, len(s.reservations))
	for _, stored := range s.reservations {
		if filter.ActorID != "" && stored.reservation.Actor.ID != filter.ActorID {
			continue
		}
		if filter.ResourceID != "" && stored.reservation.Resource.ID != filter.ResourceID {
			continue
		}
		matched = append(matched, stored)
	}

	slices.SortFunc(matched, func(a, b storedReservation) int {
		return cmp.Compare(a.seq, b.seq)
	})

	reservations := make([]persistence.Reservation, 0, len(matched))
	for _, stored := range matched {
		reservations = append(reservations, s.hydrateLocked(stored.reservation))
	}
	return reservations, nil
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

func (s *Storage) hydrateLocked(reservation persistence.Reservation) persistence.Reservation {
	if resource, ok := s.resources[reservation.Resource.ID]; ok {
		reservation.Resource = resource
	}
	if actor, ok := s.actors[reservation.Actor.ID]; ok {
		reservation.Actor = actor
	}
	return reservation
}
