package database

import (
	"sort"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectLinkRepo struct {
	db *gorm.DB
}

func NewProjectLinkRepo(db *gorm.DB) *ProjectLinkRepo {
	return &ProjectLinkRepo{db}
}

// Replace makes the given set the project's complete link list: rows absent
// from it are deleted, the rest are upserted by id. Runs in one transaction
// so readers never observe a partial list.
func (r *ProjectLinkRepo) Replace(projectID uuid.UUID, links []models.ProjectLink) ([]models.ProjectLink, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(links))
		for i := range links {
			links[i].ProjectID = projectID
			keep = append(keep, links[i].ID)
		}

		del := tx.Where("project_id = ?", projectID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&models.ProjectLink{}).Error; err != nil {
			return err
		}

		for i := range links {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&links[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "project links", err)
	}

	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })
	return links, nil
}
