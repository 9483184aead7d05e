package models

import "strings"

// Role is the closed set of roles the authorization engine understands.
// Normalization is fail-closed: any value outside this set is an error, never
// silently downgraded to the least privileged role.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleInstructor    Role = "Instructor"
	RoleUser          Role = "User"
	RoleBusiness      Role = "Business"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleInstructor, RoleUser, RoleBusiness:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// NormalizeRole maps a stored role string onto the canonical set. Leading and
// trailing whitespace is ignored and matching is case-insensitive, but the
// match must be exact beyond that: unknown values return ErrRoleUnknown.
func NormalizeRole(raw string) (Role, error) {
	trimmed := strings.TrimSpace(raw)
	for _, role := range []Role{RoleAdministrator, RoleInstructor, RoleUser, RoleBusiness} {
		if strings.EqualFold(trimmed, string(role)) {
			return role, nil
		}
	}
	return "", ErrRoleUnknown
}
