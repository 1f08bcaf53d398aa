package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	Active       bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// Credential is the slice of a user record needed to check a login.
type Credential struct {
	Username     string
	PasswordHash string
	Active       bool
	Roles        []Role
}

// NewUser is the input for creating an account.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Roles        []Role
}
