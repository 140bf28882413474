package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/example/coworking-booking/internal/persistence"
)

const resourceColumns = `id, name, kind, created_at, updated_at`

// CreateResource inserts a new resource.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if strings.TrimSpace(resource.ID) == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = nowUTC()
	}
	if resource.UpdatedAt.IsZero() {
		resource.UpdatedAt = resource.CreatedAt
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO resources (id, name, kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, resource.ID, resource.Name, resource.Kind, resource.CreatedAt, resource.UpdatedAt)
	return mapError(err)
}

// UpdateResource replaces the name and kind of an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if strings.TrimSpace(resource.ID) == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if resource.UpdatedAt.IsZero() {
		resource.UpdatedAt = nowUTC()
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE resources SET name = $1, kind = $2, updated_at = $3
		WHERE id = $4
	`, resource.Name, resource.Kind, resource.UpdatedAt, resource.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

// GetResource retrieves a resource by ID.
func (s *Storage) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	return s.getResource(ctx, "id", id)
}

// GetResourceByName retrieves a resource by its exact name.
func (s *Storage) GetResourceByName(ctx context.Context, name string) (persistence.Resource, error) {
	return s.getResource(ctx, "name", name)
}

func (s *Storage) getResource(ctx context.Context, column, value string) (persistence.Resource, error) {
	if value == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE `+column+` = $1`, value)
	return scanResource(row)
}

// ListResources returns all resources ordered by name.
func (s *Storage) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	resources := make([]persistence.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// DeleteResourceByName removes a resource; ON DELETE CASCADE removes its
// reservations.
func (s *Storage) DeleteResourceByName(ctx context.Context, name string) error {
	if name == "" {
		return persistence.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM resources WHERE name = $1`, name)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func scanResource(row pgx.Row) (persistence.Resource, error) {
	var resource persistence.Resource
	if err := row.Scan(&resource.ID, &resource.Name, &resource.Kind, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
		return persistence.Resource{}, mapError(err)
	}
	resource.CreatedAt = resource.CreatedAt.UTC()
	resource.UpdatedAt = resource.UpdatedAt.UTC()
	return resource, nil
}
