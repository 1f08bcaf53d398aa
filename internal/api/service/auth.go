package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

// DefaultRoles are granted to self-registered accounts.
var DefaultRoles = []domain.Role{domain.RoleUser}

// AuthService is the entry point for login, refresh, register and logout.
type AuthService struct {
	Users  UserDirectory
	Hasher PasswordHasher
	Tokens *TokenService

	// Now stamps last-login updates; defaults to time.Now.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// dummyPassword is hashed once so unknown usernames cost a full Verify.
const dummyPassword = "albumhub-unknown-user"

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Prepare computes the hash that unknown-user logins are checked against.
// Calling it at startup keeps the first such login from paying for it.
func (s *AuthService) Prepare() error {
	var err error
	s.dummyOnce.Do(func() {
		s.dummyHash, err = s.Hasher.Hash(dummyPassword)
	})
	return err
}

// verifyDummy spends the same work as a real password check.
func (s *AuthService) verifyDummy(password string) {
	_ = s.Prepare()
	_ = s.Hasher.Verify(password, s.dummyHash)
}

// Login checks username and password and returns a fresh token pair.
// Unknown users, deactivated users and wrong passwords are indistinguishable
// to the caller: all return ErrInvalidCredentials after one password check.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx).With(slog.String("username", username))

	cred, err := s.Users.FindCredential(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.verifyDummy(password)
			l.Info("login rejected", slog.String("reason", "not_found"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(password, cred.PasswordHash); err != nil {
		l.Info("login rejected", slog.String("reason", "bad_password"), slog.Any("error", err))
		return nil, ErrInvalidCredentials
	}

	if !cred.Active {
		l.Info("login rejected", slog.String("reason", "inactive"))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(cred.Username, cred.Roles)
	if err != nil {
		return nil, err
	}

	if s.Hasher.NeedsRehash(cred.PasswordHash) {
		s.upgradeHash(ctx, l, cred.Username, password)
	}
	s.touchLastLogin(ctx, l, cred.Username)

	l.Info("login succeeded")
	return pair, nil
}

// Refresh redeems a refresh token for a new pair. The presented token is
// revoked, roles are read again from the directory, and every failure to
// accept the token reports ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		l.Info("refresh rejected", slog.Any("error", err))
		return nil, ErrInvalidToken
	}
	l = l.With(slog.String("username", claims.Subject))

	roles, err := s.Users.FindRoles(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserInactive) {
			l.Info("refresh rejected", slog.Any("error", err))
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	won, err := s.Tokens.revokeClaims(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !won {
		l.Warn("refresh rejected", slog.String("reason", "replayed"))
		return nil, ErrInvalidToken
	}

	pair, err := s.issuePair(claims.Subject, roles)
	if err != nil {
		return nil, err
	}

	l.Info("refresh succeeded")
	return pair, nil
}

// Register creates an account with DefaultRoles and signs it in.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.TokenPair, error) {
	reg := Registration{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.TrimSpace(email),
	}
	if err := validate(reg); err != nil {
		return nil, err
	}

	l := slogx.FromContext(ctx).With(slog.String("username", reg.Username))

	hash, err := s.Hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Users.CreateUser(ctx, domain.NewUser{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Roles:        DefaultRoles,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			l.Info("registration rejected", slog.String("reason", "exists"))
		}
		return nil, err
	}

	pair, err := s.issuePair(u.Username, u.Roles)
	if err != nil {
		return nil, err
	}
	s.touchLastLogin(ctx, l, u.Username)

	l.Info("user registered")
	return pair, nil
}

// Logout revokes the caller's access token and, when given, a refresh token
// belonging to the same user. A refresh token that is invalid, expired or
// someone else's is ignored; the access token is revoked regardless.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	principal, err := s.Tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return ErrInvalidToken
	}
	l := slogx.FromContext(ctx).With(slog.String("username", principal.Username))

	if err := s.Tokens.Revoke(ctx, accessToken); err != nil {
		return err
	}

	if refreshToken != "" {
		refresh, err := s.Tokens.VerifyRefreshToken(refreshToken)
		switch {
		case err != nil:
			l.Info("logout ignored refresh token", slog.Any("error", err))
		case refresh.Subject != principal.Username:
			l.Warn("logout ignored refresh token", slog.String("reason", "subject_mismatch"))
		default:
			if _, err := s.Tokens.revokeClaims(ctx, refresh); err != nil {
				return err
			}
		}
	}

	l.Info("logout")
	return nil
}

func (s *AuthService) issuePair(username string, roles []domain.Role) (*domain.TokenPair, error) {
	access, err := s.Tokens.IssueAccessToken(username, roles)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Tokens.IssueRefreshToken(username)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.Tokens.accessTTL(),
	}, nil
}

// Last-login bookkeeping never fails a sign-in.
func (s *AuthService) touchLastLogin(ctx context.Context, l *slog.Logger, username string) {
	if err := s.Users.TouchLastLogin(ctx, username, s.now().UTC()); err != nil {
		l.Warn("failed to record last login", slog.Any("error", err))
	}
}

func (s *AuthService) upgradeHash(ctx context.Context, l *slog.Logger, username, password string) {
	hash, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Users.UpdatePassword(ctx, username, hash)
	}
	if err != nil {
		l.Warn("failed to upgrade password hash", slog.Any("error", err))
		return
	}
	l.Info("password hash upgraded")
}
