package domain

import "slices"

// Principal is the authenticated caller of a request.
type Principal struct {
	Username string
	Roles    []Role
}

// HasAnyRole reports whether the principal holds at least one of roles.
// An empty requirement is always satisfied.
func (p Principal) HasAnyRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}
