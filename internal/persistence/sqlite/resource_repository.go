package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/coworking-booking/internal/persistence"
)

// CreateResource inserts a new resource.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if strings.TrimSpace(resource.ID) == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	now := nowUTC()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	if resource.UpdatedAt.IsZero() {
		resource.UpdatedAt = resource.CreatedAt
	}

	const query = `
		INSERT INTO resources (id, name, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.helper.Exec(ctx, query,
		resource.ID,
		resource.Name,
		resource.Kind,
		formatTime(resource.CreatedAt),
		formatTime(resource.UpdatedAt),
	)
	return s.mapper.MapError(err)
}

// UpdateResource replaces the name and kind of an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if strings.TrimSpace(resource.ID) == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if resource.UpdatedAt.IsZero() {
		resource.UpdatedAt = nowUTC()
	}

	const query = `
		UPDATE resources
		SET name = ?, kind = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.helper.Exec(ctx, query,
		resource.Name,
		resource.Kind,
		formatTime(resource.UpdatedAt),
		resource.ID,
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
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
	query := `
		SELECT id, name, kind, created_at, updated_at
		FROM resources
		WHERE ` + column + ` = ?
	`
	return scanResource(s.helper.QueryRow(ctx, query, value), s.mapper)
}

// ListResources returns all resources ordered by name.
func (s *Storage) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	const query = `
		SELECT id, name, kind, created_at, updated_at
		FROM resources
		ORDER BY name, id
	`
	rows, err := s.helper.Query(ctx, query)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	resources := make([]persistence.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows, s.mapper)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return resources, nil
}

// DeleteResourceByName removes a resource. Its reservations go with it through
// the ON DELETE CASCADE on reservations.resource_id.
func (s *Storage) DeleteResourceByName(ctx context.Context, name string) error {
	if name == "" {
		return persistence.ErrNotFound
	}
	result, err := s.helper.Exec(ctx, `DELETE FROM resources WHERE name = ?`, name)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner, mapper *ErrorMapper) (persistence.Resource, error) {
	var (
		resource             persistence.Resource
		createdAt, updatedAt string
	)
	if err := row.Scan(&resource.ID, &resource.Name, &resource.Kind, &createdAt, &updatedAt); err != nil {
		return persistence.Resource{}, mapper.MapError(err)
	}

	var err error
	if resource.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Resource{}, err
	}
	if resource.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
