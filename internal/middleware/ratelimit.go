package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/praxisdesk/booking-api/internal/handler"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
	"github.com/praxisdesk/booking-api/pkg/metrics"
)

// Decision is the rate limiter's answer for one request.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter keeps sliding-window counters per key. Counters live in
// process memory and reset on restart; this is a credential-stuffing
// deterrent, not a hard security boundary.
type RateLimiter struct {
	sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
	go rl.cleanupLoop()
	return rl
}

// Check records one attempt under key and reports whether it is allowed.
func (rl *RateLimiter) Check(key string) Decision {
	rl.Lock()
	defer rl.Unlock()

	now := time.Now()
	var valid []time.Time
	for _, t := range rl.requests[key] {
		if now.Sub(t) <= rl.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   valid[0].Add(rl.window),
		}
	}

	valid = append(valid, now)
	rl.requests[key] = valid
	return Decision{
		Allowed:   true,
		Remaining: rl.limit - len(valid),
		ResetAt:   valid[0].Add(rl.window),
	}
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		time.Sleep(rl.window)
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.Lock()
	defer rl.Unlock()

	now := time.Now()
	for key, times := range rl.requests {
		var valid []time.Time
		for _, t := range times {
			if now.Sub(t) <= rl.window {
				valid = append(valid, t)
			}
		}
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

// Throttle guards one action with a per-IP window and answers 429 with retry
// hints when the budget is spent.
func (rl *RateLimiter) Throttle(action string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", action, c.ClientIP())

		decision := rl.Check(key)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			if m != nil {
				m.RateLimitedTotal.WithLabelValues(action).Inc()
			}
			retryAfter := int(time.Until(decision.ResetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			handler.RespondError(c, apperrors.RateLimited(nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
