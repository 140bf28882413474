package http

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/scheduler"
)

type reservationService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (string, error)
	CancelReservation(ctx context.Context, id string, actor application.Actor) error
	ListReservations(ctx context.Context) ([]application.Reservation, error)
	ListReservationsByActor(ctx context.Context, actor application.Actor) ([]application.Reservation, error)
	ListReservationsSorted(ctx context.Context, key string) ([]application.Reservation, error)
	ParseDay(value string) (time.Time, error)
	AvailableSlots(ctx context.Context, resourceName string, day time.Time) (iter.Seq[scheduler.TimeSlot], error)
	AvailableSlotsForAll(ctx context.Context, day time.Time) ([]application.ResourceAvailability, error)
}

// ReservationHandler serves reservation and availability endpoints.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := ActorFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingActor)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").WarnContext(ctx, "failed to decode reservation request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(ctx, "Create", "resource", req.Resource)
	id, err := h.service.CreateReservation(ctx, application.CreateReservationParams{
		Actor:        actor,
		ResourceName: strings.TrimSpace(req.Resource),
		Start:        strings.TrimSpace(req.Start),
		End:          strings.TrimSpace(req.End),
	})
	if err != nil {
		logger.InfoContext(ctx, "reservation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.With("reservation_id", id).InfoContext(ctx, "reservation created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, createReservationResponse{ID: id})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := ActorFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingActor)
		return
	}

	id := chi.URLParam(r, "id")
	logger := h.log(ctx, "Cancel", "reservation_id", id)
	if err := h.service.CancelReservation(ctx, id, actor); err != nil {
		logger.InfoContext(ctx, "cancellation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "reservation cancelled")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := r.URL.Query().Get("sort")

	var (
		reservations []application.Reservation
		err          error
	)
	if strings.TrimSpace(key) == "" {
		reservations, err = h.service.ListReservations(ctx)
	} else {
		reservations, err = h.service.ListReservationsSorted(ctx, key)
	}
	if err != nil {
		h.log(ctx, "List", "sort", key).ErrorContext(ctx, "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := ActorFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingActor)
		return
	}

	reservations, err := h.service.ListReservationsByActor(ctx, actor)
	if err != nil {
		h.log(ctx, "ListMine").ErrorContext(ctx, "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

// Availability lists free slots for one resource when the resource query
// parameter is present, and for every resource otherwise.
func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	if date == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingDate)
		return
	}

	logger := h.log(ctx, "Availability", "date", date)
	day, err := h.service.ParseDay(date)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	if name := strings.TrimSpace(query.Get("resource")); name != "" {
		slots, err := h.service.AvailableSlots(ctx, name, day)
		if err != nil {
			logger.InfoContext(ctx, "availability lookup failed", "resource", name, "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(ctx, w, err)
			return
		}
		h.responder.writeJSON(ctx, w, http.StatusOK, availabilityResponse{
			Date:      date,
			Resources: []resourceAvailabilityDTO{{Resource: name, Slots: toSlotDTOs(slots)}},
		})
		return
	}

	all, err := h.service.AvailableSlotsForAll(ctx, day)
	if err != nil {
		logger.ErrorContext(ctx, "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	resp := availabilityResponse{Date: date, Resources: make([]resourceAvailabilityDTO, 0, len(all))}
	for _, entry := range all {
		resp.Resources = append(resp.Resources, resourceAvailabilityDTO{
			Resource: entry.Resource.Name,
			Kind:     string(entry.Resource.Kind),
			Slots:    toSlotDTOs(slices.Values(entry.Slots)),
		})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

type createReservationRequest struct {
	Resource string `json:"resource"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type createReservationResponse struct {
	ID string `json:"id"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID           string `json:"id"`
	Resource     string `json:"resource"`
	ResourceKind string `json:"resource_kind"`
	ActorID      string `json:"actor_id"`
	ActorName    string `json:"actor_name"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

type availabilityResponse struct {
	Date      string                    `json:"date"`
	Resources []resourceAvailabilityDTO `json:"resources"`
}

type resourceAvailabilityDTO struct {
	Resource string    `json:"resource"`
	Kind     string    `json:"kind,omitempty"`
	Slots    []slotDTO `json:"slots"`
}

type slotDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, reservationDTO{
			ID:           r.ID,
			Resource:     r.Resource.Name,
			ResourceKind: string(r.Resource.Kind),
			ActorID:      r.Actor.ID,
			ActorName:    r.Actor.Name,
			Start:        r.Slot.Start.Format(application.TimestampLayout),
			End:          r.Slot.End.Format(application.TimestampLayout),
		})
	}
	return out
}

func toSlotDTOs(slots iter.Seq[scheduler.TimeSlot]) []slotDTO {
	out := make([]slotDTO, 0)
	for slot := range slots {
		out = append(out, slotDTO{
			Start: slot.Start.Format(application.TimestampLayout),
			End:   slot.End.Format(application.TimestampLayout),
		})
	}
	return out
}
