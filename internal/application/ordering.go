package application

import (
	"slices"
	"strings"
)

// SortKey selects a listing order for reservations.
type SortKey string

const (
	SortByResource SortKey = "resource"
	SortByActor    SortKey = "actor"
	SortBySlot     SortKey = "slot"
)

var sortKeyAliases = map[string]SortKey{
	"resource": SortByResource,
	"actor":    SortByActor,
	"slot":     SortBySlot,
	"1":        SortByResource,
	"2":        SortByActor,
	"3":        SortBySlot,
}

// ParseSortKey resolves raw to a SortKey. The numeric aliases 1, 2 and 3 are
// accepted for resource, actor and slot.
func ParseSortKey(raw string) (SortKey, error) {
	key, ok := sortKeyAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", newValidationError(ErrUnknownSortKey, "sort", "must be one of resource, actor, slot")
	}
	return key, nil
}

func (k SortKey) compare() (func(a, b Reservation) int, bool) {
	switch k {
	case SortByResource:
		return func(a, b Reservation) int { return strings.Compare(a.Resource.Name, b.Resource.Name) }, true
	case SortByActor:
		return func(a, b Reservation) int { return strings.Compare(a.Actor.Name, b.Actor.Name) }, true
	case SortBySlot:
		return func(a, b Reservation) int { return a.Slot.Start.Compare(b.Slot.Start) }, true
	}
	return nil, false
}

// SortReservations returns a copy of reservations in ascending order of key.
// Equal elements keep their input order.
func SortReservations(reservations []Reservation, key SortKey) ([]Reservation, error) {
	cmp, ok := key.compare()
	if !ok {
		return nil, newValidationError(ErrUnknownSortKey, "sort", "must be one of resource, actor, slot")
	}
	sorted := slices.Clone(reservations)
	slices.SortStableFunc(sorted, cmp)
	return sorted, nil
}
