package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
	"github.com/aussiebroadwan/albumhub/pkg/idx"
)

// UserDirectory is the source of credentials and roles.
type UserDirectory interface {
	// FindCredential returns ErrUserNotFound for unknown usernames.
	FindCredential(ctx context.Context, username string) (domain.Credential, error)

	// FindRoles returns the current roles of an active user. Unknown users
	// give ErrUserNotFound and deactivated ones ErrUserInactive.
	FindRoles(ctx context.Context, username string) ([]domain.Role, error)

	FindUser(ctx context.Context, username string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser returns ErrUserExists when the username or email is taken.
	CreateUser(ctx context.Context, u domain.NewUser) (domain.User, error)

	UpdatePassword(ctx context.Context, username, passwordHash string) error
	SetActive(ctx context.Context, username string, active bool) error
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
}

// PasswordHasher hashes and checks passwords; cryptox.Hasher is the production one.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) error
	NeedsRehash(encodedHash string) bool
}

// StoreDirectory is the UserDirectory backed by the application store.
type StoreDirectory struct {
	Store store.Store
}

func (d *StoreDirectory) FindCredential(ctx context.Context, username string) (domain.Credential, error) {
	u, err := d.FindUser(ctx, username)
	if err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		Roles:        u.Roles,
	}, nil
}

func (d *StoreDirectory) FindRoles(ctx context.Context, username string) ([]domain.Role, error) {
	u, err := d.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrUserInactive
	}
	return u.Roles, nil
}

func (d *StoreDirectory) FindUser(ctx context.Context, username string) (domain.User, error) {
	u, err := d.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, mapStoreErr(err)
	}
	return u, nil
}

func (d *StoreDirectory) ListUsers(ctx context.Context) ([]domain.User, error) {
	return d.Store.Users().ListUsers(ctx)
}

func (d *StoreDirectory) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	u := domain.User{
		ID:           idx.New().String(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Active:       true,
		Roles:        nu.Roles,
		CreatedAt:    time.Now().UTC(),
	}
	u.UpdatedAt = u.CreatedAt

	err := d.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		return domain.User{}, mapStoreErr(err)
	}
	return u, nil
}

func (d *StoreDirectory) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return mapStoreErr(d.Store.Users().UpdatePasswordHash(ctx, username, passwordHash))
}

func (d *StoreDirectory) SetActive(ctx context.Context, username string, active bool) error {
	return mapStoreErr(d.Store.Users().SetActive(ctx, username, active))
}

func (d *StoreDirectory) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	return mapStoreErr(d.Store.Users().TouchLastLogin(ctx, username, at))
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrUserExists
	default:
		return fmt.Errorf("user directory: %w", err)
	}
}
