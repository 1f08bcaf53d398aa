package http

import (
	"context"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
)

type ctxKey int

const (
	ctxKeyPrincipal ctxKey = iota
	ctxKeyAccessToken
)

func withPrincipal(ctx context.Context, p domain.Principal, token string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyPrincipal, p)
	return context.WithValue(ctx, ctxKeyAccessToken, token)
}

// PrincipalFromContext returns the caller set by Authenticate. ok is false
// for anonymous requests.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}

// AccessTokenFromContext returns the raw bearer token the principal was
// authenticated with.
func AccessTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyAccessToken).(string)
	return t
}
