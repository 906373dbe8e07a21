package models

import "github.com/google/uuid"

// ProjectMember links an external user identity to a project. Exactly one
// member per project has IsOwner set; the owner's stored permissions are
// PermissionsAll and every authorization check short-circuits on IsOwner.
type ProjectMember struct {
	ID          uuid.UUID   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID   uuid.UUID   `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_member_project_id;uniqueIndex:idx_member_project_user"`
	UserID      string      `json:"user_id" db:"user_id" gorm:"type:varchar(64);not null;index:idx_member_user_id;uniqueIndex:idx_member_project_user"`
	IsOwner     bool        `json:"is_owner" db:"is_owner" gorm:"not null;default:false"`
	Role        string      `json:"role" db:"role" gorm:"type:varchar(16);not null"`
	Permissions Permissions `json:"permissions" db:"permissions" gorm:"type:numeric(20,0);not null;default:0"`
}

// CanPerform reports whether the member may perform an action gated by the
// given permission bit. Owners may perform anything.
func (m ProjectMember) CanPerform(p Permissions) bool {
	return m.IsOwner || m.Permissions.Has(p)
}
