package application

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func TestResourceService_CreateResource(t *testing.T) {
	ctx := context.Background()

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(), nil)

		_, err := svc.CreateResource(ctx, ResourceInput{Name: "  ", Kind: "SOFA"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !errors.Is(err, ErrIncompleteRequest) {
			t.Fatalf("expected ErrIncompleteRequest kind, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["kind"]; !ok {
			t.Fatalf("expected kind validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists trimmed input", func(t *testing.T) {
		store := newFakeStore()
		svc := NewResourceService(store, sequentialIDs("res-"))

		got, err := svc.CreateResource(ctx, ResourceInput{Name: " Desk 7 ", Kind: KindDesk})
		if err != nil {
			t.Fatalf("CreateResource failed: %v", err)
		}
		if got.ID != "res-1" || got.Name != "Desk 7" || got.Kind != KindDesk {
			t.Fatalf("unexpected resource: %+v", got)
		}
		if len(store.resources) != 1 {
			t.Fatalf("expected resource to be stored")
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(deskA), sequentialIDs("res-"))

		if _, err := svc.CreateResource(ctx, ResourceInput{Name: deskA.Name, Kind: KindDesk}); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("names are case-sensitive", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(deskA), sequentialIDs("res-"))

		if _, err := svc.CreateResource(ctx, ResourceInput{Name: "desk a", Kind: KindDesk}); err != nil {
			t.Fatalf("expected differently-cased name to be accepted, got %v", err)
		}
	})
}

func TestResourceService_UpdateResource(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown current name", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(deskA), nil)
		if _, err := svc.UpdateResource(ctx, "Nowhere", ResourceInput{Name: "X", Kind: KindDesk}); !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
	})

	t.Run("replaces name and kind keeping the id", func(t *testing.T) {
		store := newFakeStore(deskA)
		svc := NewResourceService(store, nil)

		got, err := svc.UpdateResource(ctx, deskA.Name, ResourceInput{Name: "Lyra", Kind: KindConferenceRoom})
		if err != nil {
			t.Fatalf("UpdateResource failed: %v", err)
		}
		if got.ID != deskA.ID || got.Name != "Lyra" || got.Kind != KindConferenceRoom {
			t.Fatalf("unexpected resource: %+v", got)
		}
		if deskA.Name != "Desk A" {
			t.Fatalf("expected original value to be untouched")
		}
	})

	t.Run("rename onto an existing name", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(deskA, deskB), nil)
		if _, err := svc.UpdateResource(ctx, deskA.Name, ResourceInput{Name: deskB.Name, Kind: KindDesk}); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := NewResourceService(newFakeStore(deskA), nil)
		if _, err := svc.UpdateResource(ctx, deskA.Name, ResourceInput{Name: "", Kind: KindDesk}); !errors.Is(err, ErrIncompleteRequest) {
			t.Fatalf("expected ErrIncompleteRequest, got %v", err)
		}
	})
}

func TestResourceService_ListResources(t *testing.T) {
	svc := NewResourceService(newFakeStore(room, deskB, deskA), nil)

	got, err := svc.ListResources(context.Background())
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(got) != 3 || got[0].Name != "Desk A" || got[1].Name != "Desk B" || got[2].Name != "Orion" {
		t.Fatalf("expected resources sorted by name, got %+v", got)
	}
}

func TestResourceService_PublishesCatalogEvents(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc := NewResourceService(newFakeStore(), sequentialIDs("res-"))
	svc.SetPublisher(publisher)

	if _, err := svc.CreateResource(ctx, ResourceInput{Name: "Desk 1", Kind: KindDesk}); err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	if _, err := svc.UpdateResource(ctx, "Desk 1", ResourceInput{Name: "Desk 2", Kind: KindDesk}); err != nil {
		t.Fatalf("UpdateResource failed: %v", err)
	}
	if _, err := svc.CreateResource(ctx, ResourceInput{Name: "", Kind: KindDesk}); err == nil {
		t.Fatalf("expected validation error")
	}

	got := publisher.types()
	if len(got) != 2 || got[0] != EventResourceCreated || got[1] != EventResourceUpdated {
		t.Fatalf("expected created then updated, got %v", got)
	}
	if name := publisher.events[1].ResourceName; name != "Desk 2" {
		t.Fatalf("expected updated event to carry the new name, got %q", name)
	}
}

func TestResourceService_PublishFailureKeepsResource(t *testing.T) {
	store := newFakeStore()
	svc := NewResourceService(store, sequentialIDs("res-"))
	svc.SetPublisher(&recordingPublisher{err: errors.New("broker down")})

	if _, err := svc.CreateResource(context.Background(), ResourceInput{Name: "Desk 1", Kind: KindDesk}); err != nil {
		t.Fatalf("expected publish failure to be ignored, got %v", err)
	}
	if len(store.resources) != 1 {
		t.Fatalf("expected resource to be stored")
	}
}
