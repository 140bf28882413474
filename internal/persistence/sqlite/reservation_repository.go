package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/coworking-booking/internal/persistence"
)

const reservationColumns = `
	r.id, r.slot_id, r.start_at, r.end_at, r.created_at,
	res.id, res.name, res.kind, res.created_at, res.updated_at,
	a.id, a.name, a.credential_hash, a.role, a.created_at
`

const reservationJoins = `
	FROM reservations r
	JOIN resources res ON res.id = r.resource_id
	JOIN actors a ON a.id = r.actor_id
`

// CreateReservation inserts a reservation. An empty SlotID defaults to the
// reservation ID.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if strings.TrimSpace(reservation.ID) == "" || !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}
	if reservation.SlotID == "" {
		reservation.SlotID = reservation.ID
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = nowUTC()
	}

	const query = `
		INSERT INTO reservations (id, slot_id, resource_id, actor_id, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.helper.Exec(ctx, query,
		reservation.ID,
		reservation.SlotID,
		reservation.Resource.ID,
		reservation.Actor.ID,
		formatTime(reservation.Start),
		formatTime(reservation.End),
		formatTime(reservation.CreatedAt),
	)
	return s.mapper.MapError(err)
}

// GetReservation retrieves a reservation with its resource and actor.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	query := `SELECT ` + reservationColumns + reservationJoins + ` WHERE r.id = ?`
	return s.scanReservation(s.helper.QueryRow(ctx, query, id))
}

// ListReservations returns matching reservations in insertion order.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ActorID != "" {
		conditions = append(conditions, "r.actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.ResourceID != "" {
		conditions = append(conditions, "r.resource_id = ?")
		args = append(args, filter.ResourceID)
	}

	query := `SELECT ` + reservationColumns + reservationJoins
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY r.rowid`

	rows, err := s.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	reservations := make([]persistence.Reservation, 0)
	for rows.Next() {
		reservation, err := s.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return reservations, nil
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := s.helper.Exec(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

func (s *Storage) scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		r                                  persistence.Reservation
		startAt, endAt, createdAt          string
		resourceCreatedAt, resourceUpdated string
		actorCreatedAt                     string
	)
	err := row.Scan(
		&r.ID, &r.SlotID, &startAt, &endAt, &createdAt,
		&r.Resource.ID, &r.Resource.Name, &r.Resource.Kind, &resourceCreatedAt, &resourceUpdated,
		&r.Actor.ID, &r.Actor.Name, &r.Actor.CredentialHash, &r.Actor.Role, &actorCreatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, s.mapper.MapError(err)
	}

	fields := []struct {
		column string
		value  string
		dest   *time.Time
	}{
		{"start_at", startAt, &r.Start},
		{"end_at", endAt, &r.End},
		{"created_at", createdAt, &r.CreatedAt},
		{"resources.created_at", resourceCreatedAt, &r.Resource.CreatedAt},
		{"resources.updated_at", resourceUpdated, &r.Resource.UpdatedAt},
		{"actors.created_at", actorCreatedAt, &r.Actor.CreatedAt},
	}
	for _, f := range fields {
		if *f.dest, err = parseTime(f.column, f.value); err != nil {
			return persistence.Reservation{}, err
		}
	}
	return r, nil
}
