package http

import (
	"errors"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	errNoAuthHeader = errors.New("Authorization header is required")
	errNotBearer    = errors.New("Authorization header must use the Bearer scheme")
	errEmptyBearer  = errors.New("Bearer token must not be empty")
)

// bearerToken pulls the token out of the Authorization header. The returned
// error text is safe to show to clients.
func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errNoAuthHeader
	}
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", errNotBearer
	}
	token := strings.TrimSpace(h[len(bearerPrefix):])
	if token == "" {
		return "", errEmptyBearer
	}
	return token, nil
}
