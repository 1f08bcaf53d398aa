package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
)

// AuthHandler serves the /api/v1/auth endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges username and password for an access and refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Malformed body"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid credentials"
//	@Router			/api/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w, r)
		return
	}

	pair, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates a ROLE_USER account and signs it in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"New account"
//	@Success		201		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		409		{object}	httpx.ErrorBody	"Username or email already in use"
//	@Router			/api/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w, r)
		return
	}

	pair, err := h.Auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newTokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Redeems the refresh token sent as a Bearer credential for a new pair.
//	@Description	The presented refresh token cannot be used again.
//	@Tags			Auth
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer {refresh token}"
//	@Success		200				{object}	TokenResponse
//	@Failure		400				{object}	httpx.ErrorBody	"Missing or malformed Authorization header"
//	@Failure		401				{object}	httpx.ErrorBody	"Invalid or expired token"
//	@Router			/api/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.Auth.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the access token and, if supplied, the refresh token of the same user.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	LogoutRequest	false	"Refresh token to revoke"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or expired token"
//	@Router			/api/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadJSON(w, r)
		return
	}

	if err := h.Auth.Logout(r.Context(), AccessTokenFromContext(r.Context()), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		429	{object}	RateLimitResponse
//	@Router			/api/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	u, err := h.Users.Me(r.Context(), p.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(u))
}
