package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Role
		err  bool
	}{
		{"ROLE_USER", domain.RoleUser, false},
		{"USER", domain.RoleUser, false},
		{"role_user", domain.RoleUser, false},
		{" admin ", domain.RoleAdmin, false},
		{"ROLE_ADMIN", domain.RoleAdmin, false},
		{"ROLE_ROOT", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			if tt.err {
				require.ErrorIs(t, err, domain.ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseRolesDropsUnknownAndDuplicates(t *testing.T) {
	got := domain.ParseRoles([]string{"USER", "ROLE_USER", "bogus", "admin"})
	require.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAdmin}, got)
	require.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, domain.RoleStrings(got))
}

func TestPrincipalHasAnyRole(t *testing.T) {
	p := domain.Principal{Username: "alice", Roles: []domain.Role{domain.RoleUser}}

	require.True(t, p.HasAnyRole())
	require.True(t, p.HasAnyRole(domain.RoleUser))
	require.True(t, p.HasAnyRole(domain.RoleAdmin, domain.RoleUser))
	require.False(t, p.HasAnyRole(domain.RoleAdmin))
}
