package database

import (
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectMemberRepo struct {
	db *gorm.DB
}

func NewProjectMemberRepo(db *gorm.DB) *ProjectMemberRepo {
	return &ProjectMemberRepo{db}
}

// Add inserts a roster row. The unique index on (project_id, user_id) rejects
// duplicates at the database level as well.
func (r *ProjectMemberRepo) Add(member *models.ProjectMember) (*models.ProjectMember, error) {
	if err := r.db.Create(member).Error; err != nil {
		return nil, errs.NewDatabaseError("create", "project member", err)
	}
	return member, nil
}

func (r *ProjectMemberRepo) UpdateRole(memberID uuid.UUID, role string) error {
	err := r.db.Model(&models.ProjectMember{}).Where("id = ?", memberID).Update("role", role).Error
	if err != nil {
		return errs.NewDatabaseError("update", "project member role", err)
	}
	return nil
}

func (r *ProjectMemberRepo) UpdatePermissions(memberID uuid.UUID, permissions models.Permissions) error {
	err := r.db.Model(&models.ProjectMember{}).Where("id = ?", memberID).Update("permissions", permissions).Error
	if err != nil {
		return errs.NewDatabaseError("update", "project member permissions", err)
	}
	return nil
}

// Delete removes the roster row for the given user. Reports whether a row was
// deleted.
func (r *ProjectMemberRepo) Delete(projectID uuid.UUID, userID string) (bool, error) {
	res := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectMember{})
	if res.Error != nil {
		return false, errs.NewDatabaseError("delete", "project member", res.Error)
	}
	return res.RowsAffected > 0, nil
}
