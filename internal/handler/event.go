package handler

import (
	"net/http"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/guard"
	"github.com/fightcard/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EventHandler serves the event and card endpoints.
type EventHandler struct {
	events      *service.EventService
	idempotency *guard.IdempotencyGuard
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *service.EventService, idempotency *guard.IdempotencyGuard) *EventHandler {
	return &EventHandler{events: events, idempotency: idempotency}
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, events)
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	detail, err := h.events.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, detail)
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateEventInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	release, ok := claimIdempotencyKey(w, r, h.idempotency)
	if !ok {
		return
	}

	detail, err := h.events.Create(r.Context(), input)
	if err != nil {
		release()
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, detail)
}

// Update handles PUT /events/{id}.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	var input service.UpdateEventInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	event, err := h.events.Update(r.Context(), id, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	if err := h.events.Delete(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
