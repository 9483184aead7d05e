// Package authz maps (role, path) to an allow or deny decision using a
// static prefix table. The table is configuration reviewed as part of the
// security surface, not computed at runtime.
package authz

import (
	"strings"

	"aulagate/internal/auth/models"
)

// rolePolicy pairs a role's allowed path prefixes with explicit deny
// overrides. Denies win over prefix overlap: a role whose allowed set
// happens to reach into another role's exclusive territory is still denied
// there.
type rolePolicy struct {
	allowed []string
	denied  []string
}

var userPrefixes = []string{
	"/dashboard",
	"/profile",
	"/communities",
	"/courses",
}

var policies = map[models.Role]rolePolicy{
	models.RoleInstructor: {
		allowed: append([]string{
			"/instructor",
			"/courses/create",
			"/courses/edit",
		}, userPrefixes...),
		denied: []string{"/admin"},
	},
	models.RoleUser: {
		allowed: userPrefixes,
		denied:  []string{"/admin", "/instructor"},
	},
	models.RoleBusiness: {
		allowed: []string{
			"/business-panel",
			"/business-user",
		},
		denied: []string{"/admin", "/instructor"},
	},
}

// IsAllowed reports whether a role may access a path. Pure and side-effect
// free. Administrator matches every path unconditionally; every other role
// must match an allowed prefix and must not match a deny override.
func IsAllowed(role models.Role, path string) bool {
	if role == models.RoleAdministrator {
		return true
	}

	policy, ok := policies[role]
	if !ok {
		return false
	}

	for _, prefix := range policy.denied {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	for _, prefix := range policy.allowed {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
