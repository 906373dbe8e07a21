package models

import "github.com/google/uuid"

// ProjectTag is a shared tag. Tags are interned by name: projects reference
// existing rows through the join table rather than creating duplicates, and
// deleting a project removes only its association rows.
type ProjectTag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name string    `json:"name" db:"name" gorm:"type:varchar(24);not null;uniqueIndex"`
}
