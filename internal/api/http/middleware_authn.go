package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/pkg/cryptox"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

// Authenticate resolves the bearer access token into a principal.
//
// Requests without an Authorization header pass through anonymously; it is up
// to RequireAuthenticated to turn them away. A malformed header is a 400 and a
// token that does not validate is a 401.
func Authenticate(tokens *service.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if errors.Is(err, errNoAuthHeader) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				httpx.WriteError(w, r, http.StatusBadRequest, err.Error())
				return
			}

			principal, err := tokens.ValidateAccessToken(token)
			if err != nil {
				slogx.FromContext(r.Context()).Info("access token rejected",
					slog.String("token_fp", cryptox.FingerprintToken(token)),
					slog.Any("error", err),
				)
				httpx.WriteError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := withPrincipal(r.Context(), principal, token)
			ctx = slogx.With(ctx, slog.String("username", principal.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
