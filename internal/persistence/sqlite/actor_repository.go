package sqlite

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

	const query = `
		INSERT INTO actors (id, name, credential_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.helper.Exec(ctx, query,
		actor.ID,
		actor.Name,
		actor.CredentialHash,
		actor.Role,
		formatTime(actor.CreatedAt),
	)
	return s.mapper.MapError(err)
}

// GetActor retrieves an actor by ID.
func (s *Storage) GetActor(ctx context.Context, id string) (persistence.Actor, error) {
	if id == "" {
		return persistence.Actor{}, persistence.ErrNotFound
	}
	return s.getActor(ctx, "id", id)
}

// GetActorByName retrieves an actor by name.
func (s *Storage) GetActorByName(ctx context.Context, name string) (persistence.Actor, error) {
	if name == "" {
		return persistence.Actor{}, persistence.ErrNotFound
	}
	return s.getActor(ctx, "name", name)
}

func (s *Storage) getActor(ctx context.Context, column, value string) (persistence.Actor, error) {
	query := `
		SELECT id, name, credential_hash, role, created_at
		FROM actors
		WHERE ` + column + ` = ?
	`

	var (
		actor     persistence.Actor
		createdAt string
	)
	err := s.helper.QueryRow(ctx, query, value).Scan(
		&actor.ID,
		&actor.Name,
		&actor.CredentialHash,
		&actor.Role,
		&createdAt,
	)
	if err != nil {
		return persistence.Actor{}, s.mapper.MapError(err)
	}

	if actor.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Actor{}, err
	}
	return actor, nil
}
