package http

import (
	"net/http"

	"github.com/aussiebroadwan/albumhub/pkg/httpx"
)

// RateLimitByUser throttles authenticated requests per username. Anonymous
// requests are not keyed and pass through.
func RateLimitByUser(rl *httpx.RateLimiter) httpx.Middleware {
	return httpx.RateLimitMiddleware(rl, func(r *http.Request) string {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			return ""
		}
		return p.Username
	})
}
