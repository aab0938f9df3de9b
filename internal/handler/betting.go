package handler

import (
	"net/http"

	"github.com/fightcard/platform/internal/auth"
	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BettingHandler serves the user bet endpoints. All routes require a bearer token.
type BettingHandler struct {
	betting *service.BettingService
}

// NewBettingHandler creates a BettingHandler.
func NewBettingHandler(betting *service.BettingService) *BettingHandler {
	return &BettingHandler{betting: betting}
}

// PlaceBet handles POST /user-bets for the authenticated user.
func (h *BettingHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("missing user identity"))
		return
	}

	var input service.PlaceBetInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	bet, err := h.betting.PlaceBet(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bet)
}

// ListForUser handles GET /user-bets/{userId}.
func (h *BettingHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	bets, err := h.betting.ListForUser(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bets)
}

// ListForBout handles GET /bout-bets/{boutId}.
func (h *BettingHandler) ListForBout(w http.ResponseWriter, r *http.Request) {
	boutID, err := uuid.Parse(chi.URLParam(r, "boutId"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bout id"))
		return
	}

	bets, err := h.betting.ListForBout(r.Context(), boutID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bets)
}

// RecordOutcome handles PUT /user-bets/result.
func (h *BettingHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var input service.RecordOutcomeInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	if err := h.betting.RecordOutcome(r.Context(), input); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
