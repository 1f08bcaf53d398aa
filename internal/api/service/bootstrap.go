package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
	"github.com/aussiebroadwan/albumhub/pkg/cryptox"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

var ErrBootstrapNoUsername = errors.New("admin username not configured")

// AdminSeed describes the first administrator account.
type AdminSeed struct {
	Username string
	Password string // generated and logged once when empty
	Email    string
}

type BootstrapService struct {
	Store  store.Store
	Users  UserDirectory
	Hasher PasswordHasher
}

// SeedAdmin creates the administrator when the user table is empty. It
// returns false when there was nothing to do.
func (s *BootstrapService) SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check users: %w", err)
	}
	if !empty {
		l.Debug("users present, skipping admin seed")
		return false, nil
	}

	if seed.Username == "" {
		return false, ErrBootstrapNoUsername
	}

	password := seed.Password
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return false, err
		}
		l.Warn("generated admin password, change it after first login",
			slog.String("username", seed.Username),
			slog.String("password", password),
		)
	}

	email := seed.Email
	if email == "" {
		email = seed.Username + "@localhost"
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	_, err = s.Users.CreateUser(ctx, domain.NewUser{
		Username:     seed.Username,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleAdmin, domain.RoleUser},
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	l.Info("admin user created", slog.String("username", seed.Username))
	return true, nil
}
