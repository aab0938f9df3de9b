package handler

import (
	"net/http"

	"github.com/fightcard/platform/internal/guard"
	"github.com/fightcard/platform/internal/service"
)

// ResultsHandler serves results feed ingestion.
type ResultsHandler struct {
	results     *service.ResultsService
	idempotency *guard.IdempotencyGuard
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(results *service.ResultsService, idempotency *guard.IdempotencyGuard) *ResultsHandler {
	return &ResultsHandler{results: results, idempotency: idempotency}
}

// AddResults handles POST /event-results. Per-line failures are reported in the body
// with a 200; only a bad request or an unresolvable event fails the whole call.
func (h *ResultsHandler) AddResults(w http.ResponseWriter, r *http.Request) {
	var input service.AddResultsInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	release, ok := claimIdempotencyKey(w, r, h.idempotency)
	if !ok {
		return
	}

	report, err := h.results.AddResults(r.Context(), input)
	if err != nil {
		release()
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
