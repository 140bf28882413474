package main

import (
	"context"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/scheduler"
)

// reservationStoreAdapter exposes a persistence store as an
// application.ReservationStore. Times are returned in loc.
type reservationStoreAdapter struct {
	repo persistence.ReservationRepository
	ids  func() string
	loc  *time.Location
}

func newReservationStoreAdapter(repo persistence.ReservationRepository, ids func() string, loc *time.Location) *reservationStoreAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &reservationStoreAdapter{repo: repo, ids: ids, loc: loc}
}

func (a *reservationStoreAdapter) SaveReservation(ctx context.Context, resource application.Resource, actor application.Actor, slot scheduler.TimeSlot) (string, error) {
	id := a.ids()
	slotID := slot.ID
	if slotID == "" {
		slotID = a.ids()
	}
	err := a.repo.CreateReservation(ctx, persistence.Reservation{
		ID:       id,
		SlotID:   slotID,
		Start:    slot.Start,
		End:      slot.End,
		Resource: persistence.Resource{ID: resource.ID},
		Actor:    persistence.Actor{ID: actor.ID},
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (a *reservationStoreAdapter) ListReservations(ctx context.Context) ([]application.Reservation, error) {
	return a.list(ctx, persistence.ReservationFilter{})
}

func (a *reservationStoreAdapter) ListReservationsByActor(ctx context.Context, actor application.Actor) ([]application.Reservation, error) {
	return a.list(ctx, persistence.ReservationFilter{ActorID: actor.ID})
}

func (a *reservationStoreAdapter) list(ctx context.Context, filter persistence.ReservationFilter) ([]application.Reservation, error) {
	stored, err := a.repo.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]application.Reservation, 0, len(stored))
	for _, r := range stored {
		out = append(out, toApplicationReservation(r, a.loc))
	}
	return out, nil
}

func (a *reservationStoreAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored, a.loc), nil
}

func (a *reservationStoreAdapter) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

// resourceRepositoryAdapter exposes a persistence store as an
// application.ResourceRepository.
type resourceRepositoryAdapter struct {
	repo persistence.ResourceRepository
}

func newResourceRepositoryAdapter(repo persistence.ResourceRepository) *resourceRepositoryAdapter {
	return &resourceRepositoryAdapter{repo: repo}
}

func (a *resourceRepositoryAdapter) FindResourceByName(ctx context.Context, name string) (application.Resource, error) {
	stored, err := a.repo.GetResourceByName(ctx, name)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceRepositoryAdapter) ListResources(ctx context.Context) ([]application.Resource, error) {
	stored, err := a.repo.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]application.Resource, 0, len(stored))
	for _, r := range stored {
		out = append(out, toApplicationResource(r))
	}
	return out, nil
}

func (a *resourceRepositoryAdapter) DeleteResourceByName(ctx context.Context, name string) error {
	return a.repo.DeleteResourceByName(ctx, name)
}

func (a *resourceRepositoryAdapter) CreateResource(ctx context.Context, resource application.Resource) (application.Resource, error) {
	if err := a.repo.CreateResource(ctx, toPersistenceResource(resource)); err != nil {
		return application.Resource{}, err
	}
	stored, err := a.repo.GetResource(ctx, resource.ID)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceRepositoryAdapter) UpdateResource(ctx context.Context, resource application.Resource) (application.Resource, error) {
	if err := a.repo.UpdateResource(ctx, toPersistenceResource(resource)); err != nil {
		return application.Resource{}, err
	}
	stored, err := a.repo.GetResource(ctx, resource.ID)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

// actorRepositoryAdapter exposes a persistence store as an
// application.ActorRepository.
type actorRepositoryAdapter struct {
	repo persistence.ActorRepository
}

func newActorRepositoryAdapter(repo persistence.ActorRepository) *actorRepositoryAdapter {
	return &actorRepositoryAdapter{repo: repo}
}

func (a *actorRepositoryAdapter) GetActor(ctx context.Context, id string) (application.Actor, error) {
	stored, err := a.repo.GetActor(ctx, id)
	if err != nil {
		return application.Actor{}, err
	}
	return toApplicationActor(stored), nil
}

func (a *actorRepositoryAdapter) GetActorByName(ctx context.Context, name string) (application.Actor, error) {
	stored, err := a.repo.GetActorByName(ctx, name)
	if err != nil {
		return application.Actor{}, err
	}
	return toApplicationActor(stored), nil
}

func (a *actorRepositoryAdapter) CreateActor(ctx context.Context, actor application.Actor) (application.Actor, error) {
	if err := a.repo.CreateActor(ctx, persistence.Actor{
		ID:             actor.ID,
		Name:           actor.Name,
		CredentialHash: actor.CredentialHash,
		Role:           string(actor.Role),
	}); err != nil {
		return application.Actor{}, err
	}
	return a.GetActor(ctx, actor.ID)
}

func toApplicationReservation(r persistence.Reservation, loc *time.Location) application.Reservation {
	return application.Reservation{
		ID:       r.ID,
		Resource: toApplicationResource(r.Resource),
		Actor:    toApplicationActor(r.Actor),
		Slot: scheduler.TimeSlot{
			ID:    r.SlotID,
			Start: r.Start.In(loc),
			End:   r.End.In(loc),
		},
	}
}

func toApplicationResource(r persistence.Resource) application.Resource {
	return application.Resource{ID: r.ID, Name: r.Name, Kind: application.ResourceKind(r.Kind)}
}

func toPersistenceResource(r application.Resource) persistence.Resource {
	return persistence.Resource{ID: r.ID, Name: r.Name, Kind: string(r.Kind)}
}

func toApplicationActor(a persistence.Actor) application.Actor {
	return application.Actor{
		ID:             a.ID,
		Name:           a.Name,
		CredentialHash: a.CredentialHash,
		Role:           application.Role(a.Role),
	}
}
