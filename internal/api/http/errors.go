package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

// writeServiceError maps a service error onto the error envelope. Anything
// it does not recognise is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, r, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, service.ErrUserExists):
		httpx.WriteError(w, r, http.StatusConflict, "Username or email already in use")
	case errors.As(err, &verr):
		httpx.WriteError(w, r, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrWrongPassword):
		httpx.WriteError(w, r, http.StatusBadRequest, "Current password is incorrect")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "User not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func writeBadJSON(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, r, http.StatusBadRequest, "Request body must be valid JSON")
}
