package application

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/scheduler"
)

var (
	deskA = Resource{ID: "res-desk-a", Name: "Desk A", Kind: KindDesk}
	deskB = Resource{ID: "res-desk-b", Name: "Desk B", Kind: KindDesk}
	room  = Resource{ID: "res-room", Name: "Orion", Kind: KindConferenceRoom}

	alice = Actor{ID: "actor-alice", Name: "alice", Role: RoleUser}
	bob   = Actor{ID: "actor-bob", Name: "bob", Role: RoleUser}
	admin = Actor{ID: "actor-admin", Name: "root", Role: RoleAdmin}
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.June, 22, hour, minute, 0, 0, time.UTC)
}

func slotOf(startHour, startMinute, endHour, endMinute int) scheduler.TimeSlot {
	return scheduler.TimeSlot{Start: at(startHour, startMinute), End: at(endHour, endMinute)}
}

func stamp(hour, minute int) string {
	return at(hour, minute).Format(TimestampLayout)
}

// fakeStore is a reservation store and resource repository backed by slices.
type fakeStore struct {
	mu           sync.Mutex
	resources    []Resource
	reservations []Reservation
	seq          int

	saveErr   error
	listErr   error
	byActErr  error
	getErr    error
	deleteErr error
	findErr   error
	saveDelay time.Duration
}

func newFakeStore(resources ...Resource) *fakeStore {
	return &fakeStore{resources: slices.Clone(resources)}
}

func (f *fakeStore) seed(r Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations = append(f.reservations, r)
}

func (f *fakeStore) SaveReservation(ctx context.Context, resource Resource, actor Actor, slot scheduler.TimeSlot) (string, error) {
	if f.saveDelay > 0 {
		time.Sleep(f.saveDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.seq++
	id := fmt.Sprintf("rsv-%d", f.seq)
	slot.ID = id
	f.reservations = append(f.reservations, Reservation{ID: id, Resource: resource, Actor: actor, Slot: slot})
	return id, nil
}

func (f *fakeStore) ListReservations(ctx context.Context) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.reservations), nil
}

func (f *fakeStore) ListReservationsByActor(ctx context.Context, actor Actor) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byActErr != nil {
		return nil, f.byActErr
	}
	var out []Reservation
	for _, r := range f.reservations {
		if r.Actor.ID == actor.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetReservation(ctx context.Context, id string) (Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return Reservation{}, f.getErr
	}
	for _, r := range f.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return Reservation{}, persistence.ErrNotFound
}

func (f *fakeStore) DeleteReservation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.reservations {
		if r.ID == id {
			f.reservations = slices.Delete(f.reservations, i, i+1)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (f *fakeStore) FindResourceByName(ctx context.Context, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return Resource{}, f.findErr
	}
	for _, r := range f.resources {
		if r.Name == name {
			return r, nil
		}
	}
	return Resource{}, persistence.ErrNotFound
}

func (f *fakeStore) ListResources(ctx context.Context) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return slices.Clone(f.resources), nil
}

func (f *fakeStore) DeleteResourceByName(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := slices.IndexFunc(f.resources, func(r Resource) bool { return r.Name == name })
	if idx < 0 {
		return persistence.ErrNotFound
	}
	id := f.resources[idx].ID
	f.resources = slices.Delete(f.resources, idx, idx+1)
	f.reservations = slices.DeleteFunc(f.reservations, func(r Reservation) bool { return r.Resource.ID == id })
	return nil
}

func (f *fakeStore) CreateResource(ctx context.Context, resource Resource) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resources {
		if r.Name == resource.Name {
			return Resource{}, persistence.ErrDuplicate
		}
	}
	f.resources = append(f.resources, resource)
	return resource, nil
}

func (f *fakeStore) UpdateResource(ctx context.Context, resource Resource) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, r := range f.resources {
		if r.ID == resource.ID {
			idx = i
			continue
		}
		if r.Name == resource.Name {
			return Resource{}, persistence.ErrDuplicate
		}
	}
	if idx < 0 {
		return Resource{}, persistence.ErrNotFound
	}
	f.resources[idx] = resource
	return resource, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
