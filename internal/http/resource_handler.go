package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/coworking-booking/internal/application"
)

type resourceService interface {
	CreateResource(ctx context.Context, input application.ResourceInput) (application.Resource, error)
	UpdateResource(ctx context.Context, currentName string, input application.ResourceInput) (application.Resource, error)
	ListResources(ctx context.Context) ([]application.Resource, error)
}

type resourceRemover interface {
	CancelResourceAndReservations(ctx context.Context, resourceName string) error
}

// ResourceHandler serves the resource catalog.
type ResourceHandler struct {
	service   resourceService
	remover   resourceRemover
	responder responder
	logger    *slog.Logger
}

func NewResourceHandler(service resourceService, remover resourceRemover, logger *slog.Logger) *ResourceHandler {
	base := defaultLogger(logger)
	return &ResourceHandler{service: service, remover: remover, responder: newResponder(base), logger: base}
}

func (h *ResourceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ResourceHandler", operation, attrs...)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").WarnContext(ctx, "failed to decode resource request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(ctx, "Create", "resource", req.Name)
	resource, err := h.service.CreateResource(ctx, req.toInput())
	if err != nil {
		logger.InfoContext(ctx, "resource creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingResource)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(ctx, "Update", "resource", name, "error_kind", "bad_request").WarnContext(ctx, "failed to decode resource update", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(ctx, "Update", "resource", name)
	resource, err := h.service.UpdateResource(ctx, name, req.toInput())
	if err != nil {
		logger.InfoContext(ctx, "resource update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "resource updated")
	h.responder.writeJSON(ctx, w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingResource)
		return
	}

	logger := h.log(ctx, "Delete", "resource", name)
	if err := h.remover.CancelResourceAndReservations(ctx, name); err != nil {
		logger.InfoContext(ctx, "resource removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resources, err := h.service.ListResources(ctx)
	if err != nil {
		h.log(ctx, "List").ErrorContext(ctx, "resource list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, listResourcesResponse{Resources: out})
}

type resourceRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		Name: strings.TrimSpace(r.Name),
		Kind: application.ResourceKind(strings.ToUpper(strings.TrimSpace(r.Kind))),
	}
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type resourceDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func toResourceDTO(resource application.Resource) resourceDTO {
	return resourceDTO{ID: resource.ID, Name: resource.Name, Kind: string(resource.Kind)}
}
