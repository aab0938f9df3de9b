package handler

import (
	"net/http"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FighterHandler serves the fighter lookup endpoints.
type FighterHandler struct {
	registry *service.FighterRegistry
}

// NewFighterHandler creates a FighterHandler.
func NewFighterHandler(registry *service.FighterRegistry) *FighterHandler {
	return &FighterHandler{registry: registry}
}

// List handles GET /fighters.
func (h *FighterHandler) List(w http.ResponseWriter, r *http.Request) {
	fighters, err := h.registry.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, fighters)
}

// Search handles GET /fighters/search?name=.
func (h *FighterHandler) Search(w http.ResponseWriter, r *http.Request) {
	fighters, err := h.registry.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, fighters)
}

// Get handles GET /fighters/{id}.
func (h *FighterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid fighter id"))
		return
	}

	fighter, err := h.registry.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, fighter)
}
