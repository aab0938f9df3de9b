package handler

import (
	"net/http"
	"strconv"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// BetTypeHandler serves the bet type endpoints.
type BetTypeHandler struct {
	betTypes *service.BetTypeService
}

// NewBetTypeHandler creates a BetTypeHandler.
func NewBetTypeHandler(betTypes *service.BetTypeService) *BetTypeHandler {
	return &BetTypeHandler{betTypes: betTypes}
}

// List handles GET /bet-types.
func (h *BetTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.betTypes.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, types)
}

// Get handles GET /bet-types/{id}.
func (h *BetTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		RespondError(w, domain.ErrValidation("invalid bet type id"))
		return
	}

	bt, err := h.betTypes.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bt)
}

// Create handles POST /bet-types.
func (h *BetTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBetTypeInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	bt, err := h.betTypes.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bt)
}
