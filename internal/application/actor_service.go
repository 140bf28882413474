package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ActorService provisions actors named by verified credentials.
type ActorService struct {
	actors ActorRepository
	logger *slog.Logger
}

// NewActorService wires dependencies for the actor service.
func NewActorService(actors ActorRepository) *ActorService {
	return NewActorServiceWithLogger(actors, nil)
}

// NewActorServiceWithLogger constructs an actor service with a specified logger.
func NewActorServiceWithLogger(actors ActorRepository, logger *slog.Logger) *ActorService {
	return &ActorService{actors: actors, logger: defaultLogger(logger)}
}

// EnsureActor returns the stored actor with the given ID, creating it on first
// sight. The role in actor applies to the returned value, so a re-issued
// credential can raise or lower privileges without touching the store.
func (s *ActorService) EnsureActor(ctx context.Context, actor Actor) (Actor, error) {
	if s == nil {
		return Actor{}, fmt.Errorf("ActorService is nil")
	}

	actor.ID = strings.TrimSpace(actor.ID)
	actor.Name = strings.TrimSpace(actor.Name)
	if actor.Role == "" {
		actor.Role = RoleUser
	}

	vErr := &ValidationError{Kind: ErrIncompleteRequest}
	if actor.ID == "" {
		vErr.add("id", "id is required")
	}
	if actor.Name == "" {
		vErr.add("name", "name is required")
	}
	if !actor.Role.Valid() {
		vErr.add("role", "role must be USER or ADMIN")
	}
	if vErr.HasErrors() {
		return Actor{}, vErr
	}

	if s.actors == nil {
		return actor, nil
	}

	existing, err := s.actors.GetActor(ctx, actor.ID)
	if err == nil {
		existing.Role = actor.Role
		return existing, nil
	}
	if err = mapStoreError("get actor", err); !errors.Is(err, ErrNotFound) {
		return Actor{}, err
	}

	created, err := s.actors.CreateActor(ctx, actor)
	if err != nil {
		err = mapStoreError("create actor", err)
		if errors.Is(err, ErrAlreadyExists) {
			// Lost a race against a concurrent first request for the same ID.
			if again, getErr := s.actors.GetActor(ctx, actor.ID); getErr == nil {
				again.Role = actor.Role
				return again, nil
			}
		}
		s.loggerWith(ctx, "EnsureActor", "actor_id", actor.ID).
			WarnContext(ctx, "failed to provision actor", "error", err, "error_kind", ErrorKind(err))
		return Actor{}, err
	}

	s.loggerWith(ctx, "EnsureActor", "actor_id", created.ID).InfoContext(ctx, "actor provisioned")
	return created, nil
}

// GetActor retrieves an actor by ID.
func (s *ActorService) GetActor(ctx context.Context, id string) (Actor, error) {
	if s == nil {
		return Actor{}, fmt.Errorf("ActorService is nil")
	}
	if s.actors == nil {
		return Actor{}, ErrNotFound
	}
	actor, err := s.actors.GetActor(ctx, id)
	if err != nil {
		return Actor{}, mapStoreError("get actor", err)
	}
	return actor, nil
}

func (s *ActorService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ActorService", operation, attrs...)
}
