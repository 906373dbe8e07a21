package models

import "github.com/google/uuid"

// LinkType classifies an outbound project link.
type LinkType string

const (
	LinkTypeOther         LinkType = "other"
	LinkTypeWebsite       LinkType = "website"
	LinkTypeSourceCode    LinkType = "source_code"
	LinkTypeDocumentation LinkType = "documentation"
	LinkTypeIssueTracker  LinkType = "issue_tracker"
	LinkTypeSocial        LinkType = "social"
)

// IsValid reports whether t is a defined link type.
func (t LinkType) IsValid() bool {
	switch t {
	case LinkTypeOther, LinkTypeWebsite, LinkTypeSourceCode, LinkTypeDocumentation, LinkTypeIssueTracker, LinkTypeSocial:
		return true
	}
	return false
}

// ProjectLink is an outbound HTTPS link owned by a project. Order controls
// display sequencing.
type ProjectLink struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_link_project_id"`
	Name      string    `json:"name" db:"name" gorm:"type:varchar(16);not null"`
	URL       string    `json:"url" db:"url" gorm:"type:varchar(256);not null"`
	Type      LinkType  `json:"type" db:"type" gorm:"type:varchar(16);not null;default:other"`
	Order     uint16    `json:"order" db:"order" gorm:"column:display_order;not null;default:0"`
}
