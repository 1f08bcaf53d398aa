package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)
	f.addUser(t, "dormant", "s3cret-pass", false, domain.RoleUser)

	t.Run("valid credentials", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, 5*time.Minute, pair.ExpiresIn)

		p, err := f.tokens.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", p.Username)
		require.Equal(t, []domain.Role{domain.RoleUser}, p.Roles)

		require.True(t, f.tokens.ValidateRefreshToken(pair.RefreshToken, "alice"))

		u, err := f.dir.FindUser(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, u.LastLogin)
		require.True(t, f.clock.Now().Equal(*u.LastLogin))
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		_, wrongPassword := f.auth.Login(ctx, "alice", "nope-nope")
		_, unknown := f.auth.Login(ctx, "mallory", "s3cret-pass")
		_, inactive := f.auth.Login(ctx, "dormant", "s3cret-pass")

		require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		require.Equal(t, wrongPassword, unknown)
		require.Equal(t, wrongPassword, inactive)
	})
}

// countingHasher records how many password checks a login performed.
type countingHasher struct {
	cryptox.Hasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(password, encodedHash string) error {
	h.verifies.Add(1)
	return h.Hasher.Verify(password, encodedHash)
}

func TestLoginChecksPasswordOnEveryFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)
	f.addUser(t, "dormant", "s3cret-pass", false, domain.RoleUser)

	hasher := &countingHasher{}
	auth := &AuthService{Users: f.dir, Hasher: hasher, Tokens: f.tokens, Now: f.clock.Now}
	require.NoError(t, auth.Prepare())

	tests := []struct {
		name, username, password string
	}{
		{"unknown user", "mallory", "s3cret-pass"},
		{"inactive user", "dormant", "s3cret-pass"},
		{"wrong password", "alice", "nope-nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := hasher.verifies.Load()
			_, err := auth.Login(ctx, tt.username, tt.password)
			require.ErrorIs(t, err, ErrInvalidCredentials)
			require.EqualValues(t, 1, hasher.verifies.Load()-before)
		})
	}
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.dir.CreateUser(ctx, domain.NewUser{
		Username:     "veteran",
		Email:        "veteran@example.com",
		PasswordHash: string(legacy),
		Roles:        []domain.Role{domain.RoleUser},
	})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "veteran", "old-password")
	require.NoError(t, err)

	u, err := f.dir.FindUser(ctx, "veteran")
	require.NoError(t, err)
	require.Contains(t, u.PasswordHash, "$argon2id$")

	_, err = f.auth.Login(ctx, "veteran", "old-password")
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)

	pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage cannot refresh", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, "not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	f.clock.Advance(time.Minute)
	next, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, next.AccessToken)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	t.Run("old refresh token is spent", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f.clock.Advance(25 * time.Hour)
		_, err := f.auth.Refresh(ctx, next.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshPicksUpRoleAndStatusChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)

	pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, f.dir.SetActive(ctx, "alice", false))
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.dir.SetActive(ctx, "alice", true))
	next, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	p, err := f.tokens.ValidateAccessToken(next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleUser}, p.Roles)
}

func TestRefreshReplayHasOneWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)

	pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	var wins atomic.Int32
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			if _, err := f.auth.Refresh(ctx, pair.RefreshToken); err == nil {
				wins.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, wins.Load())
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	pair, err := f.auth.Register(ctx, "newbie", "hunter22", "newbie@example.com")
	require.NoError(t, err)

	p, err := f.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "newbie", p.Username)
	require.Equal(t, []domain.Role{domain.RoleUser}, p.Roles)

	_, err = f.auth.Login(ctx, "newbie", "hunter22")
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := f.auth.Register(ctx, "newbie", "hunter22", "other@example.com")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Register(ctx, "newbie2", "hunter22", "newbie@example.com")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name, username, password, email string
		}{
			{"short username", "ab", "hunter22", "ab@example.com"},
			{"short password", "charlie", "12345", "charlie@example.com"},
			{"bad email", "charlie", "hunter22", "not-an-email"},
			{"missing email", "charlie", "hunter22", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.auth.Register(ctx, tt.username, tt.password, tt.email)
				require.ErrorIs(t, err, ErrInvalidInput)

				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
			})
		}
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true, domain.RoleUser)
	f.addUser(t, "bob", "s3cret-pass", true, domain.RoleUser)

	bobs, err := f.auth.Login(ctx, "bob", "s3cret-pass")
	require.NoError(t, err)

	t.Run("revokes both tokens", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken))

		_, err = f.tokens.ValidateAccessToken(pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("someone else's refresh token is left alone", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, bobs.RefreshToken))

		_, err = f.tokens.ValidateAccessToken(pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
		require.True(t, f.tokens.ValidateRefreshToken(bobs.RefreshToken, "bob"))
	})

	t.Run("spent refresh token still revokes access token", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		rotated, err := f.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, rotated.AccessToken, pair.RefreshToken))

		_, err = f.tokens.ValidateAccessToken(rotated.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
		require.True(t, f.tokens.ValidateRefreshToken(rotated.RefreshToken, "alice"))
	})

	t.Run("garbage refresh token still revokes access token", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)

		require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, "not.a.token"))

		_, err = f.tokens.ValidateAccessToken(pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("revoked access token is rejected", func(t *testing.T) {
		pair, err := f.auth.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, ""))

		require.ErrorIs(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken), ErrInvalidToken)
		require.True(t, f.tokens.ValidateRefreshToken(pair.RefreshToken, "alice"))
	})

	t.Run("bob is unaffected", func(t *testing.T) {
		_, err := f.tokens.ValidateAccessToken(bobs.AccessToken)
		require.NoError(t, err)
	})
}
