package http

import (
	"net/http"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
)

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				httpx.WriteError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets the request through if the principal holds any of roles.
// Anonymous callers get 401, authenticated callers without the role get 403.
func RequireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !p.HasAnyRole(roles...) {
				httpx.WriteError(w, r, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
