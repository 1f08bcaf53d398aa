package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

type UserService struct {
	Users  UserDirectory
	Hasher PasswordHasher
	Tokens *TokenService
}

// Me returns the account of the signed-in user.
func (s *UserService) Me(ctx context.Context, username string) (domain.User, error) {
	return s.Users.FindUser(ctx, username)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.ListUsers(ctx)
}

// ChangePassword replaces the user's password after checking the current one,
// then revokes accessToken (the token the request came in with). Other
// outstanding tokens stay valid until they expire or are logged out.
func (s *UserService) ChangePassword(ctx context.Context, username, accessToken string, change PasswordChange) error {
	if err := validate(change); err != nil {
		return err
	}

	l := slogx.FromContext(ctx).With(slog.String("username", username))

	cred, err := s.Users.FindCredential(ctx, username)
	if err != nil {
		return err
	}
	if err := s.Hasher.Verify(change.Current, cred.PasswordHash); err != nil {
		l.Info("password change rejected", slog.String("reason", "bad_password"))
		return ErrWrongPassword
	}

	hash, err := s.Hasher.Hash(change.New)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, username, hash); err != nil {
		return err
	}

	if accessToken != "" {
		if err := s.Tokens.Revoke(ctx, accessToken); err != nil && !errors.Is(err, ErrInvalidToken) {
			return err
		}
	}

	l.Info("password changed")
	return nil
}

// ToggleActive flips the active flag and returns the updated user. A
// deactivated user can neither log in nor refresh.
func (s *UserService) ToggleActive(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Users.FindUser(ctx, username)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Users.SetActive(ctx, username, !u.Active); err != nil {
		return domain.User{}, err
	}
	u.Active = !u.Active

	slogx.FromContext(ctx).Info("user active flag changed",
		slog.String("target", username),
		slog.Bool("active", u.Active),
	)
	return u, nil
}
