package models

// Permissions is a 64-bit flag set gating project member actions. The owner
// of a project always acts with PermissionsAll regardless of the stored value.
type Permissions uint64

const (
	PermissionsNone Permissions = 0

	// Project-level permissions (bits 0-10; 5-10 reserved).
	PermissionEditProject    Permissions = 1 << 0
	PermissionPublishProject Permissions = 1 << 1
	PermissionManageLinks    Permissions = 1 << 2
	PermissionArchiveProject Permissions = 1 << 3
	PermissionManageTags     Permissions = 1 << 4

	// Member-management permissions (bits 11-19; 14-19 reserved).
	PermissionAddProjectMembers            Permissions = 1 << 11
	PermissionEditProjectMemberRoles       Permissions = 1 << 12
	PermissionEditProjectMemberPermissions Permissions = 1 << 13

	PermissionDeleteProjectMembers Permissions = 1 << 20

	PermissionDeleteProject Permissions = 1 << 63

	// PermissionsAll is the owner sentinel: every bit set, including the
	// reserved ranges, so future permissions are implicitly granted.
	PermissionsAll Permissions = ^PermissionsNone
)

// Has reports whether every bit of p is present in the set.
func (s Permissions) Has(p Permissions) bool {
	return s&p == p
}

// Add returns the set with the given bits set.
func (s Permissions) Add(p Permissions) Permissions {
	return s | p
}

// Remove returns the set with the given bits cleared.
func (s Permissions) Remove(p Permissions) Permissions {
	return s &^ p
}

// Diff returns the symmetric difference between the two sets: the bits that
// would be granted or revoked when moving from s to requested. Used by the
// escalation guard, which requires the acting member to hold every changed bit.
func (s Permissions) Diff(requested Permissions) Permissions {
	return s ^ requested
}
