package domain

import (
	"errors"
	"slices"
	"strings"
)

// Role is a normalized authority name. Stored rows may spell roles loosely
// ("USER", "role_user"); ParseRole is the only way in.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

const rolePrefix = "ROLE_"

var ErrUnknownRole = errors.New("unknown role")

var knownRoles = []Role{RoleUser, RoleAdmin}

// ParseRole normalizes s to a known Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return "", ErrUnknownRole
	}
	if !strings.HasPrefix(name, rolePrefix) {
		name = rolePrefix + name
	}
	r := Role(name)
	if !slices.Contains(knownRoles, r) {
		return "", ErrUnknownRole
	}
	return r, nil
}

// ParseRoles parses every entry, dropping unknown names and duplicates.
func ParseRoles(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r Role) String() string { return string(r) }

func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
