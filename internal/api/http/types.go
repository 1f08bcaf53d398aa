package http

import (
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret!"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"s3cret!"`
	Email    string `json:"email" example:"alice@example.com"`
}

// LogoutRequest is the optional body of POST /api/v1/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ChangePasswordRequest is the body of PUT /api/v1/usuarios/me/senha.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// TokenResponse carries a token pair. ExpiresIn is the access token
// lifetime in milliseconds.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Type         string `json:"type" example:"Bearer"`
	ExpiresIn    int64  `json:"expiresIn" example:"300000"`
}

func newTokenResponse(p *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		Type:         p.TokenType,
		ExpiresIn:    p.ExpiresIn.Milliseconds(),
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Active    bool       `json:"active"`
	Roles     []string   `json:"roles"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		Roles:     domain.RoleStrings(u.Roles),
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// RateLimitResponse is the body of a 429.
type RateLimitResponse struct {
	Message string `json:"message" example:"Rate limit exceeded. Maximum 10 requests per minute."`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
