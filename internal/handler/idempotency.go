package handler

import (
	"net/http"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/guard"
)

// IdempotencyHeader names the request header carrying a client-chosen replay key.
const IdempotencyHeader = "Idempotency-Key"

// claimIdempotencyKey rejects a request whose key was already seen. It returns a release
// func that forgets the key so a failed request can be retried.
func claimIdempotencyKey(w http.ResponseWriter, r *http.Request, g *guard.IdempotencyGuard) (release func(), ok bool) {
	key := r.Header.Get(IdempotencyHeader)
	if g == nil || key == "" {
		return func() {}, true
	}
	key = r.URL.Path + ":" + key
	if res := g.Check(r.Context(), key); !res.Allowed {
		RespondError(w, domain.ErrConflict(res.Reason))
		return nil, false
	}
	return func() { g.Remove(key) }, true
}
