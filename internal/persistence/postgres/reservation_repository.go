package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/coworking-booking/internal/persistence"
)

const reservationSelect = `
	SELECT
		r.id, r.slot_id, r.start_at, r.end_at, r.created_at,
		res.id, res.name, res.kind, res.created_at, res.updated_at,
		a.id, a.name, a.credential_hash, a.role, a.created_at
	FROM reservations r
	JOIN resources res ON res.id = r.resource_id
	JOIN actors a ON a.id = r.actor_id
`

// CreateReservation inserts a reservation. An empty SlotID defaults to the
// reservation ID. Overlap with an existing reservation on the same resource
// is rejected with persistence.ErrOverlap.
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

	_, err := s.pool.Exec(ctx, `
		INSERT INTO reservations (id, slot_id, resource_id, actor_id, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		reservation.ID,
		reservation.SlotID,
		reservation.Resource.ID,
		reservation.Actor.ID,
		reservation.Start.UTC(),
		reservation.End.UTC(),
		reservation.CreatedAt.UTC(),
	)
	return mapError(err)
}

// GetReservation retrieves a reservation with its resource and actor.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return scanReservation(s.pool.QueryRow(ctx, reservationSelect+` WHERE r.id = $1`, id))
}

// ListReservations returns matching reservations in insertion order.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		conditions = append(conditions, "r.actor_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		conditions = append(conditions, "r.resource_id = $"+strconv.Itoa(len(args)))
	}

	query := reservationSelect
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY r.seq`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	reservations := make([]persistence.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func scanReservation(row pgx.Row) (persistence.Reservation, error) {
	var r persistence.Reservation
	err := row.Scan(
		&r.ID, &r.SlotID, &r.Start, &r.End, &r.CreatedAt,
		&r.Resource.ID, &r.Resource.Name, &r.Resource.Kind, &r.Resource.CreatedAt, &r.Resource.UpdatedAt,
		&r.Actor.ID, &r.Actor.Name, &r.Actor.CredentialHash, &r.Actor.Role, &r.Actor.CreatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	for _, t := range []*time.Time{
		&r.Start, &r.End, &r.CreatedAt,
		&r.Resource.CreatedAt, &r.Resource.UpdatedAt, &r.Actor.CreatedAt,
	} {
		*t = t.UTC()
	}
	return r, nil
}
