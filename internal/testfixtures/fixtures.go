package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/persistence"
	"github.com/example/coworking-booking/internal/scheduler"
)

var (
	actorCounter       uint64
	resourceCounter    uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is midnight UTC on a Saturday.
func ReferenceTime() time.Time {
	return referenceTime
}

// At returns hour:minute on the reference date.
func At(hour, minute int) time.Time {
	return referenceTime.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ----------------------------- Actor fixtures -----------------------------

// ActorFixture represents a deterministic actor record.
type ActorFixture struct {
	ID             string
	Name           string
	CredentialHash string
	Role           application.Role
	CreatedAt      time.Time
}

// ActorOption configures the generated actor fixture.
type ActorOption func(*ActorFixture)

// NewActorFixture returns a deterministic actor fixture with optional overrides.
func NewActorFixture(opts ...ActorOption) ActorFixture {
	idx := atomic.AddUint64(&actorCounter, 1)
	fixture := ActorFixture{
		ID:        fmt.Sprintf("actor-%03d", idx),
		Name:      fmt.Sprintf("user%03d", idx),
		Role:      application.RoleUser,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithActorID overrides the generated actor ID.
func WithActorID(id string) ActorOption {
	return func(f *ActorFixture) {
		f.ID = id
	}
}

// WithActorName overrides the generated name.
func WithActorName(name string) ActorOption {
	return func(f *ActorFixture) {
		f.Name = name
	}
}

// WithActorAdmin gives the fixture the ADMIN role.
func WithActorAdmin() ActorOption {
	return func(f *ActorFixture) {
		f.Role = application.RoleAdmin
	}
}

// WithActorCredentialHash sets the opaque credential hash.
func WithActorCredentialHash(hash string) ActorOption {
	return func(f *ActorFixture) {
		f.CredentialHash = hash
	}
}

// Application returns the fixture as an application.Actor value.
func (f ActorFixture) Application() application.Actor {
	return application.Actor{
		ID:             f.ID,
		Name:           f.Name,
		CredentialHash: f.CredentialHash,
		Role:           f.Role,
	}
}

// Persistence returns the fixture as a persistence.Actor value.
func (f ActorFixture) Persistence() persistence.Actor {
	return persistence.Actor{
		ID:             f.ID,
		Name:           f.Name,
		CredentialHash: f.CredentialHash,
		Role:           string(f.Role),
		CreatedAt:      f.CreatedAt,
	}
}

// ---------------------------- Resource fixtures ----------------------------

// ResourceFixture represents a deterministic desk or conference room.
type ResourceFixture struct {
	ID        string
	Name      string
	Kind      application.ResourceKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a deterministic desk fixture with optional overrides.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := ResourceFixture{
		ID:        fmt.Sprintf("resource-%03d", idx),
		Name:      fmt.Sprintf("Desk %03d", idx),
		Kind:      application.KindDesk,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) {
		f.ID = id
	}
}

// WithResourceName overrides the generated name.
func WithResourceName(name string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Name = name
	}
}

// WithResourceKind overrides the kind.
func WithResourceKind(kind application.ResourceKind) ResourceOption {
	return func(f *ResourceFixture) {
		f.Kind = kind
	}
}

// WithResourceTimestamps sets both created and updated timestamps.
func WithResourceTimestamps(created, updated time.Time) ResourceOption {
	return func(f *ResourceFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Resource value.
func (f ResourceFixture) Application() application.Resource {
	return application.Resource{ID: f.ID, Name: f.Name, Kind: f.Kind}
}

// Persistence returns the fixture as a persistence.Resource value.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:        f.ID,
		Name:      f.Name,
		Kind:      string(f.Kind),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ResourceInput.
func (f ResourceFixture) Input() application.ResourceInput {
	return application.ResourceInput{Name: f.Name, Kind: f.Kind}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation. It defaults to
// 09:00-10:00 on the reference date.
type ReservationFixture struct {
	ID         string
	SlotID     string
	ResourceID string
	ActorID    string
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	fixture := ReservationFixture{
		ID:        id,
		SlotID:    id,
		Start:     At(9, 0),
		End:       At(10, 0),
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation and slot IDs.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
		f.SlotID = id
	}
}

// WithReservationResource sets the reserved resource.
func WithReservationResource(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ResourceID = id
	}
}

// WithReservationActor sets the holder.
func WithReservationActor(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ActorID = id
	}
}

// WithReservationSlot sets the reserved interval.
func WithReservationSlot(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// Slot returns the reserved interval as a scheduler.TimeSlot.
func (f ReservationFixture) Slot() scheduler.TimeSlot {
	return scheduler.TimeSlot{ID: f.SlotID, Start: f.Start, End: f.End}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		SlotID:    f.SlotID,
		Start:     f.Start,
		End:       f.End,
		Resource:  persistence.Resource{ID: f.ResourceID},
		Actor:     persistence.Actor{ID: f.ActorID},
		CreatedAt: f.CreatedAt,
	}
}
