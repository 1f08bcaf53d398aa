package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so a Tx can hand out the same repos bound to the
// transaction.
type Store interface {
	Users() Users
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByUsername returns the user with roles normalized.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns every user ordered by creation time.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts the user and its roles. A taken username or email
	// gives ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, username, newHash string) error
	SetActive(ctx context.Context, username string, active bool) error
	TouchLastLogin(ctx context.Context, username string, at time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RevokedTokens interface {
	// RevokeToken records jti as revoked. Revoking twice is not an error.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	// ListActiveRevokedTokens returns revocations whose token has not expired at now.
	ListActiveRevokedTokens(ctx context.Context, now time.Time) ([]domain.RevokedToken, error)

	// DeleteExpiredRevokedTokens drops revocations for tokens expired at now.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}
