package handler

import (
	"net/http"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/guard"
	"github.com/fightcard/platform/internal/service"
)

// AuthHandler handles registration and login endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
	limiter *guard.RateLimiter
	lockout *guard.Lockout
	proxies TrustedProxies
}

// NewAuthHandler creates a new AuthHandler. A nil limiter or lockout disables that check.
// Clients are keyed by peer address unless the peer is one of proxies.
func NewAuthHandler(authSvc *service.AuthService, limiter *guard.RateLimiter, lockout *guard.Lockout, proxies TrustedProxies) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, limiter: limiter, lockout: lockout, proxies: proxies}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	result, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := h.proxies.ClientIP(r)
	if h.limiter != nil {
		if res := h.limiter.Check(r.Context(), ip); !res.Allowed {
			RespondError(w, domain.ErrRateLimited(res.Reason))
			return
		}
	}

	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if h.lockout != nil {
		if err := h.lockout.CheckLocked(r.Context(), email); err != nil {
			RespondError(w, err)
			return
		}
	}

	result, err := h.authSvc.Login(r.Context(), input)
	if h.lockout != nil && email != "" {
		h.lockout.RecordAttempt(r.Context(), email, ip, err == nil)
	}
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}
