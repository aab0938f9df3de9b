package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused key keeps its limiter.
const idleLimiterTTL = 10 * time.Minute

// RateLimiter is a per-key token bucket limiter.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	limit    rate.Limit
	burst    int
	perMin   int
	now      func() time.Time
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per key, with bursts up to perMinute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		perMin:   perMinute,
		now:      time.Now,
	}
}

// Check consumes one token for key.
func (rl *RateLimiter) Check(_ context.Context, key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdle(now)

	kl, ok := rl.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = kl
	}
	kl.lastSeen = now

	if !kl.limiter.AllowN(now, 1) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/min", rl.perMin),
			Guard:   "rate_limiter",
		}
	}
	return allow()
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, kl := range rl.limiters {
		if now.Sub(kl.lastSeen) > idleLimiterTTL {
			delete(rl.limiters, key)
		}
	}
}
