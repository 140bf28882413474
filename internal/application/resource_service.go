package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/coworking-booking/internal/persistence"
)

// ResourceService maintains the resource catalog.
type ResourceService struct {
	resources   ResourceRepository
	idGenerator func() string
	publisher   EventPublisher
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(resources ResourceRepository, idGenerator func() string) *ResourceService {
	return NewResourceServiceWithLogger(resources, idGenerator, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a specified logger.
func NewResourceServiceWithLogger(resources ResourceRepository, idGenerator func() string, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ResourceService{resources: resources, idGenerator: idGenerator, publisher: nopPublisher{}, logger: defaultLogger(logger)}
}

// SetPublisher routes resource.created and resource.updated events to
// publisher. A nil publisher disables them.
func (s *ResourceService) SetPublisher(publisher EventPublisher) {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	s.publisher = publisher
}

func (s *ResourceService) publish(ctx context.Context, logger *slog.Logger, eventType EventType, resource Resource) {
	event := Event{Type: eventType, ResourceID: resource.ID, ResourceName: resource.Name, OccurredAt: time.Now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish event", "event_type", string(eventType), "error", err)
	}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and adds a resource to the catalog.
func (s *ResourceService) CreateResource(ctx context.Context, input ResourceInput) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource", "resource", input.Name)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if vErr := validateResourceInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	resource = Resource{
		ID:   s.idGenerator(),
		Name: strings.TrimSpace(input.Name),
		Kind: input.Kind,
	}

	if s.resources == nil {
		return
	}

	var persisted Resource
	persisted, err = s.resources.CreateResource(ctx, resource)
	if err != nil {
		err = mapResourceRepoError("create resource", err)
		return
	}

	resource = persisted
	s.publish(ctx, logger, EventResourceCreated, resource)
	return
}

// UpdateResource renames or re-kinds the resource currently called
// currentName. The stored record is replaced as a whole.
func (s *ResourceService) UpdateResource(ctx context.Context, currentName string, input ResourceInput) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource", "resource", currentName)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource updated")
	}()

	var existing Resource
	existing, err = s.resources.FindResourceByName(ctx, strings.TrimSpace(currentName))
	if err != nil {
		err = resourceLookupError(mapResourceRepoError("find resource", err))
		return
	}

	if vErr := validateResourceInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	replacement := Resource{
		ID:   existing.ID,
		Name: strings.TrimSpace(input.Name),
		Kind: input.Kind,
	}

	resource, err = s.resources.UpdateResource(ctx, replacement)
	if err != nil {
		err = resourceLookupError(mapResourceRepoError("update resource", err))
		return
	}
	s.publish(ctx, logger, EventResourceUpdated, resource)
	return
}

// ListResources returns the catalog ordered by name.
func (s *ResourceService) ListResources(ctx context.Context) (resources []Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		return nil, nil
	}

	raw, err := s.resources.ListResources(ctx)
	if err != nil {
		err = mapResourceRepoError("list resources", err)
		s.loggerWith(ctx, "ListResources").ErrorContext(ctx, "failed to list resources", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return sortResources(raw), nil
}

func validateResourceInput(input ResourceInput) *ValidationError {
	vErr := &ValidationError{Kind: ErrIncompleteRequest}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if !input.Kind.Valid() {
		vErr.add("kind", "kind must be DESK or CONFERENCE_ROOM")
	}

	return vErr
}

func mapResourceRepoError(op string, err error) error {
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return newValidationError(ErrIncompleteRequest, "kind", "kind must be DESK or CONFERENCE_ROOM")
	}
	return mapStoreError(op, err)
}

func sortResources(resources []Resource) []Resource {
	sorted := slices.Clone(resources)
	slices.SortFunc(sorted, func(a, b Resource) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}
