package postgres

import (
	"context"
	"strings"

	"github.com/example/coworking-booking/internal/persistence"
)

// CreateActor inserts a new actor.
func (s *Storage) CreateActor(ctx context.Context, actor persistence.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(actor.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = nowUTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO actors (id, name, credential_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, actor.ID, actor.Name, actor.CredentialHash, actor.Role, actor.CreatedAt)
	return mapError(err)
}

// GetActor retrieves an actor by ID.
func (s *Storage) GetActor(ctx context.Context, id string) (persistence.Actor, error) {
	return s.getActor(ctx, "id", id)
}

// GetActorByName retrieves an actor by name.
func (s *Storage) GetActorByName(ctx context.Context, name string) (persistence.Actor, error) {
	return s.getActor(ctx, "name", name)
}

func (s *Storage) getActor(ctx context.Context, column, value string) (persistence.Actor, error) {
	if value == "" {
		return persistence.Actor{}, persistence.ErrNotFound
	}
	var actor persistence.Actor
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, credential_hash, role, created_at
		FROM actors
		WHERE `+column+` = $1
	`, value).Scan(&actor.ID, &actor.Name, &actor.CredentialHash, &actor.Role, &actor.CreatedAt)
	if err != nil {
		return persistence.Actor{}, mapError(err)
	}
	actor.CreatedAt = actor.CreatedAt.UTC()
	return actor, nil
}
