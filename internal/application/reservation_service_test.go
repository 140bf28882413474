package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/scheduler"
)

func newTestReservationService(store *fakeStore, opts ...ReservationServiceOption) *ReservationService {
	return NewReservationService(store, store, opts...)
}

func TestReservationService_CreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a valid reservation and publishes an event", func(t *testing.T) {
		store := newFakeStore(deskA)
		publisher := &recordingPublisher{}
		fixed := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
		svc := newTestReservationService(store, WithPublisher(publisher), WithClock(func() time.Time { return fixed }))

		id, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
		})
		if err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}
		if id == "" {
			t.Fatalf("expected reservation id")
		}

		saved, err := store.GetReservation(ctx, id)
		if err != nil {
			t.Fatalf("expected stored reservation, got %v", err)
		}
		if saved.Actor.ID != alice.ID || saved.Resource.ID != deskA.ID || !saved.Slot.Start.Equal(at(9, 0)) {
			t.Fatalf("unexpected stored reservation: %+v", saved)
		}

		if len(publisher.events) != 1 {
			t.Fatalf("expected one event, got %d", len(publisher.events))
		}
		event := publisher.events[0]
		if event.Type != EventReservationCreated || event.ReservationID != id || !event.OccurredAt.Equal(fixed) {
			t.Fatalf("unexpected event: %+v", event)
		}
	})

	t.Run("first failing check wins and nothing is saved", func(t *testing.T) {
		tests := []struct {
			name   string
			params CreateReservationParams
			want   error
		}{
			{"missing end", CreateReservationParams{Actor: alice, ResourceName: deskA.Name, Start: "garbage"}, ErrIncompleteRequest},
			{"unknown resource", CreateReservationParams{Actor: alice, ResourceName: "Nowhere", Start: stamp(9, 0), End: stamp(10, 0)}, ErrIncompleteRequest},
			{"malformed start before malformed end", CreateReservationParams{Actor: alice, ResourceName: deskA.Name, Start: "9am", End: "10am"}, ErrMalformedTimestamp},
			{"malformed end", CreateReservationParams{Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: "10am"}, ErrMalformedTimestamp},
			{"equal bounds", CreateReservationParams{Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(9, 0)}, ErrInvalidInterval},
			{"inverted bounds", CreateReservationParams{Actor: alice, ResourceName: deskA.Name, Start: stamp(11, 0), End: stamp(10, 0)}, ErrInvalidInterval},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				store := newFakeStore(deskA)
				publisher := &recordingPublisher{}
				svc := newTestReservationService(store, WithPublisher(publisher))

				_, err := svc.CreateReservation(ctx, tc.params)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				if len(store.reservations) != 0 {
					t.Fatalf("expected no reservation to be saved, got %d", len(store.reservations))
				}
				if len(publisher.events) != 0 {
					t.Fatalf("expected no events, got %v", publisher.types())
				}
			})
		}
	})

	t.Run("malformed start is reported with its field", func(t *testing.T) {
		svc := newTestReservationService(newFakeStore(deskA))
		_, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: "9am", End: "10am",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["start"]; !ok {
			t.Fatalf("expected start to be reported first, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects a conflicting slot on the same resource", func(t *testing.T) {
		store := newFakeStore(deskA, deskB)
		store.seed(Reservation{ID: "rsv-existing", Resource: deskA, Actor: bob, Slot: slotOf(9, 30, 11, 30)})
		svc := newTestReservationService(store)

		_, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(8, 0), End: stamp(11, 30),
		})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.Existing.ID != "rsv-existing" || cErr.Resource.Name != deskA.Name {
			t.Fatalf("unexpected conflict details: %+v", cErr)
		}

		if _, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskB.Name, Start: stamp(8, 0), End: stamp(11, 30),
		}); err != nil {
			t.Fatalf("expected other resource to accept the slot, got %v", err)
		}
	})

	t.Run("allows back-to-back bookings", func(t *testing.T) {
		store := newFakeStore(deskA)
		store.seed(Reservation{ID: "rsv-existing", Resource: deskA, Actor: bob, Slot: slotOf(11, 0, 12, 0)})
		svc := newTestReservationService(store)

		if _, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(10, 0), End: stamp(11, 0),
		}); err != nil {
			t.Fatalf("expected adjacency to be allowed, got %v", err)
		}
	})

	t.Run("store failures are distinguishable", func(t *testing.T) {
		store := newFakeStore(deskA)
		store.saveErr = errors.New("disk I/O error")
		svc := newTestReservationService(store)

		_, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
		})
		if !errors.Is(err, ErrStoreFailure) {
			t.Fatalf("expected ErrStoreFailure, got %v", err)
		}
	})

	t.Run("store exclusion constraint maps to conflict", func(t *testing.T) {
		store := newFakeStore(deskA)
		store.saveErr = fmt.Errorf("postgres: %w", persistence.ErrOverlap)
		svc := newTestReservationService(store)

		_, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
		})
		if !errors.Is(err, ErrBookingConflict) {
			t.Fatalf("expected ErrBookingConflict, got %v", err)
		}
	})

	t.Run("publisher failures do not undo the reservation", func(t *testing.T) {
		store := newFakeStore(deskA)
		svc := newTestReservationService(store, WithPublisher(&recordingPublisher{err: errors.New("broker down")}))

		if _, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
		}); err != nil {
			t.Fatalf("expected success despite publisher failure, got %v", err)
		}
		if len(store.reservations) != 1 {
			t.Fatalf("expected reservation to be kept")
		}
	})

	t.Run("lock failure aborts before reading the store", func(t *testing.T) {
		store := newFakeStore(deskA)
		svc := newTestReservationService(store, WithLocker(failingLocker{err: context.DeadlineExceeded}))

		_, err := svc.CreateReservation(ctx, CreateReservationParams{
			Actor: alice, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
		})
		if !errors.Is(err, ErrStoreFailure) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected lock failure, got %v", err)
		}
	})
}

func TestReservationService_ConcurrentCreatesNeverDoubleBook(t *testing.T) {
	store := newFakeStore(deskA)
	store.saveDelay = 2 * time.Millisecond
	svc := newTestReservationService(store)

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actor := alice
			if i%2 == 1 {
				actor = bob
			}
			_, err := svc.CreateReservation(context.Background(), CreateReservationParams{
				Actor: actor, ResourceName: deskA.Name, Start: stamp(9, 0), End: stamp(10, 0),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrBookingConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}

	all, _ := store.ListReservations(context.Background())
	for i, a := range all {
		for _, b := range all[i+1:] {
			if a.Resource.ID == b.Resource.ID && scheduler.Conflicts(a.Slot, b.Slot) {
				t.Fatalf("reservations %s and %s overlap", a.ID, b.ID)
			}
		}
	}
}

func TestReservationService_CancelReservation(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeStore, *recordingPublisher, *ReservationService) {
		store := newFakeStore(deskA)
		store.seed(Reservation{ID: "R1", Resource: deskA, Actor: alice, Slot: slotOf(9, 0, 10, 0)})
		publisher := &recordingPublisher{}
		return store, publisher, newTestReservationService(store, WithPublisher(publisher))
	}

	t.Run("unknown id is not found", func(t *testing.T) {
		_, _, svc := setup()
		if err := svc.CancelReservation(ctx, "missing", admin); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("other users are unauthorized", func(t *testing.T) {
		store, publisher, svc := setup()
		if err := svc.CancelReservation(ctx, "R1", bob); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if len(store.reservations) != 1 || len(publisher.events) != 0 {
			t.Fatalf("expected reservation to survive")
		}
	})

	t.Run("admin may cancel", func(t *testing.T) {
		store, publisher, svc := setup()
		if err := svc.CancelReservation(ctx, "R1", admin); err != nil {
			t.Fatalf("CancelReservation failed: %v", err)
		}
		if len(store.reservations) != 0 {
			t.Fatalf("expected reservation to be deleted")
		}
		if got := publisher.types(); !slices.Equal(got, []EventType{EventReservationCancelled}) {
			t.Fatalf("expected cancellation event, got %v", got)
		}
	})

	t.Run("owner may cancel", func(t *testing.T) {
		store, _, svc := setup()
		if err := svc.CancelReservation(ctx, "R1", alice); err != nil {
			t.Fatalf("CancelReservation failed: %v", err)
		}
		if len(store.reservations) != 0 {
			t.Fatalf("expected reservation to be deleted")
		}
	})

	t.Run("delete failure is a store failure", func(t *testing.T) {
		store, _, svc := setup()
		store.deleteErr = errors.New("read-only database")
		if err := svc.CancelReservation(ctx, "R1", alice); !errors.Is(err, ErrStoreFailure) {
			t.Fatalf("expected ErrStoreFailure, got %v", err)
		}
	})
}

func TestReservationService_Listing(t *testing.T) {
	ctx := context.Background()
	b := Resource{ID: "b", Name: "B", Kind: KindDesk}
	a := Resource{ID: "a", Name: "A", Kind: KindDesk}
	store := newFakeStore(a, b)
	store.seed(Reservation{ID: "1", Resource: b, Actor: alice, Slot: slotOf(9, 0, 10, 0)})
	store.seed(Reservation{ID: "2", Resource: a, Actor: bob, Slot: slotOf(8, 0, 9, 0)})
	store.seed(Reservation{ID: "3", Resource: a, Actor: alice, Slot: slotOf(12, 0, 13, 0)})
	svc := newTestReservationService(store)

	all, err := svc.ListReservations(ctx)
	if err != nil {
		t.Fatalf("ListReservations failed: %v", err)
	}
	assertOrder(t, all, "1", "2", "3")

	mine, err := svc.ListReservationsByActor(ctx, alice)
	if err != nil {
		t.Fatalf("ListReservationsByActor failed: %v", err)
	}
	assertOrder(t, mine, "1", "3")

	sorted, err := svc.ListReservationsSorted(ctx, "resource")
	if err != nil {
		t.Fatalf("ListReservationsSorted failed: %v", err)
	}
	assertOrder(t, sorted, "2", "3", "1")

	if _, err := svc.ListReservationsSorted(ctx, "price"); !errors.Is(err, ErrUnknownSortKey) {
		t.Fatalf("expected ErrUnknownSortKey, got %v", err)
	}

	after, _ := svc.ListReservations(ctx)
	assertOrder(t, after, "1", "2", "3")

	store.listErr = errors.New("broken pipe")
	if _, err := svc.ListReservations(ctx); !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got %v", err)
	}
}

func TestReservationService_AvailableSlots(t *testing.T) {
	ctx := context.Background()
	day := at(0, 0)

	t.Run("single mid-day booking", func(t *testing.T) {
		store := newFakeStore(deskA, deskB)
		store.seed(Reservation{ID: "1", Resource: deskA, Actor: alice, Slot: slotOf(14, 30, 16, 30)})
		store.seed(Reservation{ID: "2", Resource: deskB, Actor: bob, Slot: slotOf(9, 0, 10, 0)})
		svc := newTestReservationService(store)

		seq, err := svc.AvailableSlots(ctx, deskA.Name, day)
		if err != nil {
			t.Fatalf("AvailableSlots failed: %v", err)
		}
		got := slices.Collect(seq)
		want := []scheduler.TimeSlot{slotOf(8, 0, 14, 30), slotOf(16, 30, 20, 0)}
		assertSlotsEqual(t, got, want)

		again := slices.Collect(seq)
		assertSlotsEqual(t, again, want)
	})

	t.Run("fully booked day", func(t *testing.T) {
		store := newFakeStore(deskA)
		store.seed(Reservation{ID: "1", Resource: deskA, Actor: alice, Slot: slotOf(8, 0, 20, 0)})
		svc := newTestReservationService(store)

		seq, err := svc.AvailableSlots(ctx, deskA.Name, day)
		if err != nil {
			t.Fatalf("AvailableSlots failed: %v", err)
		}
		if got := slices.Collect(seq); len(got) != 0 {
			t.Fatalf("expected no free slots, got %v", got)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		svc := newTestReservationService(newFakeStore(deskA))
		if _, err := svc.AvailableSlots(ctx, "Nowhere", day); !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
	})

	t.Run("every resource", func(t *testing.T) {
		store := newFakeStore(room, deskB, deskA)
		store.seed(Reservation{ID: "1", Resource: deskB, Actor: alice, Slot: slotOf(8, 0, 12, 0)})
		svc := newTestReservationService(store)

		got, err := svc.AvailableSlotsForAll(ctx, day)
		if err != nil {
			t.Fatalf("AvailableSlotsForAll failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 resources, got %d", len(got))
		}
		names := []string{got[0].Resource.Name, got[1].Resource.Name, got[2].Resource.Name}
		if !slices.Equal(names, []string{"Desk A", "Desk B", "Orion"}) {
			t.Fatalf("expected resources ordered by name, got %v", names)
		}
		assertSlotsEqual(t, got[0].Slots, []scheduler.TimeSlot{slotOf(8, 0, 20, 0)})
		assertSlotsEqual(t, got[1].Slots, []scheduler.TimeSlot{slotOf(12, 0, 20, 0)})
	})

	t.Run("day keeps its calendar date in the service location", func(t *testing.T) {
		eastern := time.FixedZone("EDT", -4*60*60)
		local := func(hour int) time.Time {
			return time.Date(2024, time.June, 22, hour, 0, 0, 0, eastern)
		}
		store := newFakeStore(deskA)
		store.seed(Reservation{ID: "1", Resource: deskA, Actor: alice, Slot: scheduler.TimeSlot{Start: local(9), End: local(10)}})
		svc := newTestReservationService(store, WithLocation(eastern))
		utcMidnight := time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC)
		want := []scheduler.TimeSlot{
			{Start: local(8), End: local(9)},
			{Start: local(10), End: local(20)},
		}

		seq, err := svc.AvailableSlots(ctx, deskA.Name, utcMidnight)
		if err != nil {
			t.Fatalf("AvailableSlots failed: %v", err)
		}
		got := slices.Collect(seq)
		assertSlotsEqual(t, got, want)
		if got[0].Start.Location() != eastern {
			t.Fatalf("expected slots in %s, got %s", eastern, got[0].Start.Location())
		}

		all, err := svc.AvailableSlotsForAll(ctx, utcMidnight)
		if err != nil {
			t.Fatalf("AvailableSlotsForAll failed: %v", err)
		}
		assertSlotsEqual(t, all[0].Slots, want)
	})
}

func TestReservationService_CancelResourceAndReservations(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore(deskA, deskB)
	store.seed(Reservation{ID: "1", Resource: deskA, Actor: alice, Slot: slotOf(9, 0, 10, 0)})
	store.seed(Reservation{ID: "2", Resource: deskB, Actor: alice, Slot: slotOf(9, 0, 10, 0)})
	publisher := &recordingPublisher{}
	svc := newTestReservationService(store, WithPublisher(publisher))

	if err := svc.CancelResourceAndReservations(ctx, "Nowhere"); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}

	if err := svc.CancelResourceAndReservations(ctx, deskA.Name); err != nil {
		t.Fatalf("CancelResourceAndReservations failed: %v", err)
	}
	remaining, _ := svc.ListReservations(ctx)
	assertOrder(t, remaining, "2")

	if got := publisher.types(); !slices.Equal(got, []EventType{EventResourceRemoved}) {
		t.Fatalf("expected resource removal event, got %v", got)
	}
}

type failingLocker struct {
	err error
}

func (f failingLocker) LockResource(context.Context, string) (func(), error) {
	return nil, f.err
}

func assertSlotsEqual(t *testing.T, got, want []scheduler.TimeSlot) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d: expected %s-%s, got %s-%s", i,
				want[i].Start.Format("15:04"), want[i].End.Format("15:04"),
				got[i].Start.Format("15:04"), got[i].End.Format("15:04"))
		}
	}
}
