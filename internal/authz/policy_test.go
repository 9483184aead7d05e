package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulagate/internal/auth/models"
)

func TestIsAllowed_AdministratorMatchesEverything(t *testing.T) {
	paths := []string{
		"/admin",
		"/admin/users/42",
		"/instructor/courses",
		"/dashboard",
		"/business-panel",
		"/completely/unknown/path",
		"/",
	}
	for _, path := range paths {
		assert.True(t, IsAllowed(models.RoleAdministrator, path), path)
	}
}

func TestIsAllowed_InstructorDeniedAdminDespiteOverlap(t *testing.T) {
	// Instructor's allowed set is broader than a plain user's, but admin
	// territory is still explicitly off limits.
	assert.False(t, IsAllowed(models.RoleInstructor, "/admin"))
	assert.False(t, IsAllowed(models.RoleInstructor, "/admin/settings"))

	assert.True(t, IsAllowed(models.RoleInstructor, "/instructor"))
	assert.True(t, IsAllowed(models.RoleInstructor, "/instructor/students"))
	assert.True(t, IsAllowed(models.RoleInstructor, "/courses/create"))
	assert.True(t, IsAllowed(models.RoleInstructor, "/courses/edit/7"))
	assert.True(t, IsAllowed(models.RoleInstructor, "/dashboard"))
	assert.True(t, IsAllowed(models.RoleInstructor, "/profile"))
}

func TestIsAllowed_User(t *testing.T) {
	assert.True(t, IsAllowed(models.RoleUser, "/dashboard"))
	assert.True(t, IsAllowed(models.RoleUser, "/profile/settings"))
	assert.True(t, IsAllowed(models.RoleUser, "/communities/12"))
	assert.True(t, IsAllowed(models.RoleUser, "/courses/view/3"))

	assert.False(t, IsAllowed(models.RoleUser, "/admin"))
	assert.False(t, IsAllowed(models.RoleUser, "/instructor"))
	assert.False(t, IsAllowed(models.RoleUser, "/business-panel"))
	assert.False(t, IsAllowed(models.RoleUser, "/unknown"))
}

func TestIsAllowed_Business(t *testing.T) {
	assert.True(t, IsAllowed(models.RoleBusiness, "/business-panel"))
	assert.True(t, IsAllowed(models.RoleBusiness, "/business-user/reports"))

	assert.False(t, IsAllowed(models.RoleBusiness, "/admin"))
	assert.False(t, IsAllowed(models.RoleBusiness, "/instructor"))
	assert.False(t, IsAllowed(models.RoleBusiness, "/dashboard"))
}

func TestIsAllowed_UnknownRoleDeniedEverywhere(t *testing.T) {
	assert.False(t, IsAllowed(models.Role("ghost"), "/dashboard"))
	assert.False(t, IsAllowed(models.Role(""), "/"))
}

func TestIsAllowed_NormalizedRoleScenario(t *testing.T) {
	// A stored role of " instructor " normalizes to Instructor, which may
	// access instructor paths but never admin paths.
	role, err := models.NormalizeRole(" instructor ")
	require.NoError(t, err)

	assert.True(t, IsAllowed(role, "/instructor/courses"))
	assert.False(t, IsAllowed(role, "/admin/anything"))
}
