package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusReview    ProjectStatus = "review"
	ProjectStatusPublished ProjectStatus = "published"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// IsValid reports whether s is one of the defined lifecycle states.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusReview, ProjectStatusPublished, ProjectStatusArchived:
		return true
	}
	return false
}

// ProjectCategory classifies a project. CategoryNone is the zero sentinel and
// is rejected by validation.
type ProjectCategory int

const (
	CategoryNone ProjectCategory = iota
	CategoryAdventure
	CategoryArt
	CategoryEducation
	CategoryGame
	CategoryMusic
	CategoryScience
	CategoryTechnology
	CategoryUtility
	CategoryOther
)

// IsValid reports whether c is a defined category other than CategoryNone.
func (c ProjectCategory) IsValid() bool {
	return c > CategoryNone && c <= CategoryOther
}

// Project represents a portfolio project with its owned members and links and
// its shared tags.
type Project struct {
	ID          uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string          `json:"name" db:"name" gorm:"type:varchar(32);not null"`
	Slug        string          `json:"slug" db:"slug" gorm:"type:varchar(32);not null;uniqueIndex"`
	Summary     *string         `json:"summary,omitempty" db:"summary" gorm:"type:varchar(128)"`
	Content     *string         `json:"content,omitempty" db:"content" gorm:"type:text"`
	ImageURL    *string         `json:"image_url,omitempty" db:"image_url" gorm:"type:varchar(256)"`
	Status      ProjectStatus   `json:"status" db:"status" gorm:"type:varchar(16);not null;default:draft"`
	Category    ProjectCategory `json:"category" db:"category" gorm:"type:integer;not null"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty" db:"published_at"`

	Members []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Links   []ProjectLink   `json:"links,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Tags    []ProjectTag    `json:"tags,omitempty" gorm:"many2many:project_project_tags;constraint:OnDelete:CASCADE"`
}

// Owner returns the owning member, if the roster is loaded.
func (p *Project) Owner() *ProjectMember {
	for i := range p.Members {
		if p.Members[i].IsOwner {
			return &p.Members[i]
		}
	}
	return nil
}

// Member returns the member with the given user id, if present.
func (p *Project) Member(userID string) *ProjectMember {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i]
		}
	}
	return nil
}

// VisibleTo reports whether the project may be read by the given viewer:
// published projects are public, otherwise membership is required.
func (p *Project) VisibleTo(viewerID string) bool {
	if p.Status == ProjectStatusPublished {
		return true
	}
	return viewerID != "" && p.Member(viewerID) != nil
}
