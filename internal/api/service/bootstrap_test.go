package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSeedAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	b := &BootstrapService{Store: f.store, Users: f.dir, Hasher: cryptox.Hasher{}}

	t.Run("requires a username", func(t *testing.T) {
		_, err := b.SeedAdmin(ctx, AdminSeed{})
		require.ErrorIs(t, err, ErrBootstrapNoUsername)
	})

	created, err := b.SeedAdmin(ctx, AdminSeed{Username: "admin", Password: "admin-pass"})
	require.NoError(t, err)
	require.True(t, created)

	u, err := f.dir.FindUser(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin@localhost", u.Email)
	require.ElementsMatch(t, []domain.Role{domain.RoleAdmin, domain.RoleUser}, u.Roles)

	pair, err := f.auth.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	p, err := f.tokens.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.True(t, p.HasAnyRole(domain.RoleAdmin))

	t.Run("second run is a no-op", func(t *testing.T) {
		created, err := b.SeedAdmin(ctx, AdminSeed{Username: "other", Password: "x"})
		require.NoError(t, err)
		require.False(t, created)
	})
}

func TestSeedAdminGeneratesPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	b := &BootstrapService{Store: f.store, Users: f.dir, Hasher: cryptox.Hasher{}}

	created, err := b.SeedAdmin(ctx, AdminSeed{Username: "admin", Email: "ops@example.com"})
	require.NoError(t, err)
	require.True(t, created)

	u, err := f.dir.FindUser(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", u.Email)
	require.NotEmpty(t, u.PasswordHash)
}
