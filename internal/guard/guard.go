// Package guard holds request guards: login rate limiting and lockout, idempotency
// keys and the broker circuit breaker.
package guard

// Result is the verdict of a guard check.
type Result struct {
	Allowed bool
	Reason  string
	Guard   string
}

func allow() Result {
	return Result{Allowed: true}
}
