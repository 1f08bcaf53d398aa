package http

import (
	"net/http"

	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
)

// UsersHandler serves the /api/v1/usuarios endpoints.
type UsersHandler struct {
	Users *service.UserService
}

// HandleChangePassword godoc
//
//	@Summary		Change own password
//	@Description	Requires the current password. The access token used for this request is revoked.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	ChangePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Validation failed or current password incorrect"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		429	{object}	RateLimitResponse
//	@Router			/api/v1/usuarios/me/senha [put].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w, r)
		return
	}

	ctx := r.Context()
	p, _ := PrincipalFromContext(ctx)

	err := h.Users.ChangePassword(ctx, p.Username, AccessTokenFromContext(ctx), service.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList godoc
//
//	@Summary		List users
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		UserResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		403	{object}	httpx.ErrorBody	"ROLE_ADMIN required"
//	@Failure		429	{object}	RateLimitResponse
//	@Router			/api/v1/usuarios [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleToggleActive godoc
//
//	@Summary		Toggle active flag
//	@Description	Activates an inactive user or deactivates an active one.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	UserResponse
//	@Failure		401			{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		403			{object}	httpx.ErrorBody	"ROLE_ADMIN required"
//	@Failure		404			{object}	httpx.ErrorBody	"User not found"
//	@Router			/api/v1/usuarios/{username}/ativo [patch].
func (h *UsersHandler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.ToggleActive(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(u))
}
