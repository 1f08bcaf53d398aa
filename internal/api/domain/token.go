package domain

import "time"

// TokenPair is what login, register and refresh hand back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string        // always "Bearer"
	ExpiresIn    time.Duration // access token lifetime
}

// RevokedToken marks a token id as unusable until it would have expired anyway.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
