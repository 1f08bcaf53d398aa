package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/albumhub/pkg/slogx"
	"golang.org/x/time/rate"
)

var ErrInvalidRateLimit = errors.New("httpx: rate limit capacity and refill period must be positive")

// RateLimiter keeps one token bucket per key. Each bucket holds up to
// Capacity tokens and refills Capacity tokens every RefillPeriod, lazily on
// the next request. Buckets are created on first use and kept for the life
// of the limiter.
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter

	capacity int
	refill   time.Duration
	limit    rate.Limit

	// Now is the clock used by Allow.
	Now func() time.Time
}

func NewRateLimiter(capacity int, refillPeriod time.Duration) (*RateLimiter, error) {
	if capacity <= 0 || refillPeriod <= 0 {
		return nil, ErrInvalidRateLimit
	}
	return &RateLimiter{
		capacity: capacity,
		refill:   refillPeriod,
		limit:    rate.Limit(float64(capacity) / refillPeriod.Seconds()),
		Now:      time.Now,
	}, nil
}

func (rl *RateLimiter) Capacity() int { return rl.capacity }

func (rl *RateLimiter) RefillPeriod() time.Duration { return rl.refill }

// Allow takes one token from key's bucket, reporting false when it is empty.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.AllowAt(key, rl.Now())
}

// AllowAt is Allow evaluated at now. A rejected call leaves the bucket as it was.
func (rl *RateLimiter) AllowAt(key string, now time.Time) bool {
	return rl.getLimiter(key).AllowN(now, 1)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	// Two first requests for the same key race here; LoadOrStore keeps one.
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.limit, rl.capacity))
	return actual.(*rate.Limiter)
}

// Message is the client-facing text for a rejected request.
func (rl *RateLimiter) Message() string {
	return fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s.", rl.capacity, humanizeWindow(rl.refill))
}

func humanizeWindow(d time.Duration) string {
	switch d {
	case time.Second:
		return "second"
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	case 24 * time.Hour:
		return "day"
	default:
		return d.String()
	}
}

// KeyExtractor returns the bucket key for a request, or "" to skip limiting.
type KeyExtractor func(*http.Request) string

// RateLimitMiddleware rejects requests whose key has run out of tokens with
// 429 and a JSON message. Requests without a key pass through untouched.
func RateLimitMiddleware(rl *RateLimiter, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.Allow(key) {
				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
				)
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": rl.Message(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
