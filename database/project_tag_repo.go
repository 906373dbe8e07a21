package database

import (
	"errors"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"gorm.io/gorm"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// Intern resolves tag names to rows, creating the ones that do not exist yet.
// Tags are shared across projects, so lookups go by the unique name.
func (r *ProjectTagRepo) Intern(names []string) ([]models.ProjectTag, error) {
	tags := make([]models.ProjectTag, 0, len(names))
	for _, name := range names {
		var tag models.ProjectTag
		err := r.db.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.ProjectTag{ID: models.NewID(), Name: name}
			if err := r.db.Create(&tag).Error; err != nil {
				return nil, errs.NewDatabaseError("create", "project tag", err)
			}
		} else if err != nil {
			return nil, errs.NewDatabaseError("load", "project tag", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// FindAll returns every known tag, for typeahead suggestions.
func (r *ProjectTagRepo) FindAll() ([]models.ProjectTag, error) {
	var tags []models.ProjectTag
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("load", "project tags", err)
	}
	return tags, nil
}
