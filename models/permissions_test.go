package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionsHas(t *testing.T) {
	set := PermissionEditProject | PermissionManageLinks

	assert.True(t, set.Has(PermissionEditProject))
	assert.True(t, set.Has(PermissionEditProject|PermissionManageLinks))
	assert.False(t, set.Has(PermissionPublishProject))
	assert.False(t, set.Has(PermissionEditProject|PermissionPublishProject))

	assert.True(t, PermissionsAll.Has(PermissionDeleteProject))
	assert.True(t, set.Has(PermissionsNone))
}

func TestPermissionsAddRemove(t *testing.T) {
	set := PermissionsNone.Add(PermissionEditProject).Add(PermissionManageTags)
	assert.True(t, set.Has(PermissionEditProject))
	assert.True(t, set.Has(PermissionManageTags))

	set = set.Remove(PermissionEditProject)
	assert.False(t, set.Has(PermissionEditProject))
	assert.True(t, set.Has(PermissionManageTags))
}

func TestPermissionsDiff(t *testing.T) {
	current := PermissionEditProject | PermissionManageLinks
	requested := PermissionEditProject | PermissionAddProjectMembers

	// The diff holds both the revoked and the granted bits.
	diff := current.Diff(requested)
	assert.Equal(t, PermissionManageLinks|PermissionAddProjectMembers, diff)
	assert.Equal(t, diff, requested.Diff(current))
	assert.Equal(t, PermissionsNone, current.Diff(current))
}

func TestOutgoingOwnerKeepsAllButDelete(t *testing.T) {
	perms := PermissionsAll.Remove(PermissionDeleteProject)

	assert.False(t, perms.Has(PermissionDeleteProject))
	assert.True(t, perms.Has(PermissionEditProject))
	assert.True(t, perms.Has(PermissionPublishProject))
	assert.True(t, perms.Has(PermissionDeleteProjectMembers))
}

func TestCanPerform(t *testing.T) {
	owner := ProjectMember{IsOwner: true, Permissions: PermissionsNone}
	assert.True(t, owner.CanPerform(PermissionDeleteProject))

	member := ProjectMember{Permissions: PermissionEditProject}
	assert.True(t, member.CanPerform(PermissionEditProject))
	assert.False(t, member.CanPerform(PermissionDeleteProject))
}
