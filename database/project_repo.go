package database

import (
	"errors"
	"math"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectOrder selects the sort applied to a search result.
type ProjectOrder string

const (
	OrderRelevance ProjectOrder = "relevance"
	OrderPublished ProjectOrder = "published"
	OrderUpdated   ProjectOrder = "updated"
)

// ProjectSearch describes a paged project query. ViewerID scopes visibility:
// anonymous viewers ("") only see published projects.
type ProjectSearch struct {
	Query      string
	Order      ProjectOrder
	Categories []models.ProjectCategory
	Tags       []string
	Page       int
	PageSize   int
	UserID     string
	ViewerID   string
}

// ProjectPage is one page of search results.
type ProjectPage struct {
	Projects   []models.Project `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

type ProjectRepo struct {
	db   *gorm.DB
	tags *ProjectTagRepo
}

func NewProjectRepo(db *gorm.DB, tags *ProjectTagRepo) *ProjectRepo {
	return &ProjectRepo{db: db, tags: tags}
}

// scopeVisible restricts a project query to rows the viewer may read:
// published rows, plus rows the viewer is a member of.
func scopeVisible(viewerID string) func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if viewerID == "" {
			return tx.Where("projects.status = ?", models.ProjectStatusPublished)
		}
		return tx.Where(
			"projects.status = ? OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = projects.id AND pm.user_id = ?)",
			models.ProjectStatusPublished, viewerID,
		)
	}
}

const tagMatch = `EXISTS (
	SELECT 1 FROM project_project_tags ppt
	JOIN project_tags pt ON pt.id = ppt.project_tag_id
	WHERE ppt.project_id = projects.id AND pt.name = ?)`

const tagSearch = `EXISTS (
	SELECT 1 FROM project_project_tags ppt
	JOIN project_tags pt ON pt.id = ppt.project_tag_id
	WHERE ppt.project_id = projects.id AND pt.name ILIKE ?)`

// Search returns a page of projects matching the given filters. Page is
// 1-based and the page size is clamped to [1, 100].
func (r *ProjectRepo) Search(s ProjectSearch) (*ProjectPage, error) {
	page := s.Page
	if page < 1 {
		page = 1
	}
	size := s.PageSize
	if size < 1 {
		size = 1
	}
	if size > 100 {
		size = 100
	}

	tx := r.db.Model(&models.Project{}).Scopes(scopeVisible(s.ViewerID))

	if s.Query != "" {
		pattern := "%" + s.Query + "%"
		tx = tx.Where("projects.name ILIKE ? OR projects.summary ILIKE ? OR "+tagSearch, pattern, pattern, pattern)
	}
	if len(s.Categories) > 0 {
		tx = tx.Where("projects.category IN ?", s.Categories)
	}
	for _, tag := range s.Tags {
		tx = tx.Where(tagMatch, tag)
	}
	if s.UserID != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = projects.id AND pm.user_id = ?)", s.UserID)
	}
	if s.Order == OrderPublished {
		// Never-published projects have no place in a publication ordering.
		tx = tx.Where("projects.published_at IS NOT NULL")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, errs.NewDatabaseError("count", "projects", err)
	}

	switch s.Order {
	case OrderPublished:
		tx = tx.Order("projects.published_at DESC")
	case OrderUpdated:
		tx = tx.Order("projects.updated_at DESC NULLS LAST").Order("projects.created_at DESC")
	default:
		tx = tx.Order("projects.created_at DESC")
	}

	var projects []models.Project
	err := tx.Preload("Tags").
		Offset((page - 1) * size).
		Limit(size).
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("search", "projects", err)
	}

	return &ProjectPage{
		Projects:   projects,
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// FindByID loads a project with its members, links and tags. Returns nil
// without error when the project does not exist or is not visible to the
// viewer. force bypasses the visibility check.
func (r *ProjectRepo) FindByID(id uuid.UUID, viewerID string, force bool) (*models.Project, error) {
	return r.findOne("projects.id = ?", id, viewerID, force)
}

// FindBySlug is FindByID addressed by slug.
func (r *ProjectRepo) FindBySlug(slug, viewerID string, force bool) (*models.Project, error) {
	return r.findOne("projects.slug = ?", slug, viewerID, force)
}

func (r *ProjectRepo) findOne(cond string, arg any, viewerID string, force bool) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Members").
		Preload("Links", func(tx *gorm.DB) *gorm.DB { return tx.Order("display_order ASC") }).
		Preload("Tags").
		Where(cond, arg).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("load", "project", err)
	}
	if !force && !project.VisibleTo(viewerID) {
		return nil, nil
	}
	return &project, nil
}

// FindByUserID returns every project the user is a member of, regardless of
// status. Rosters are preloaded so callers can inspect ownership.
func (r *ProjectRepo) FindByUserID(userID string) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Preload("Members").
		Preload("Tags").
		Where("EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = projects.id AND pm.user_id = ?)", userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("load", "projects", err)
	}
	return projects, nil
}

// FindByIDs returns the visible subset of the given projects. Unknown ids are
// skipped silently.
func (r *ProjectRepo) FindByIDs(ids []uuid.UUID, viewerID string) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	var projects []models.Project
	err := r.db.
		Scopes(scopeVisible(viewerID)).
		Preload("Tags").
		Where("projects.id IN ?", ids).
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("load", "projects", err)
	}
	return projects, nil
}

// Create inserts the project together with its roster and interned tags.
func (r *ProjectRepo) Create(project *models.Project, tagNames []string) (*models.Project, error) {
	tags, err := r.tags.Intern(tagNames)
	if err != nil {
		return nil, err
	}
	project.Tags = tags

	if err := r.db.Create(project).Error; err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}
	return project, nil
}

// Update persists the project's own columns. Associations are managed through
// their dedicated methods and are deliberately not saved here.
func (r *ProjectRepo) Update(project *models.Project) (*models.Project, error) {
	if err := r.db.Omit(clause.Associations).Save(project).Error; err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return project, nil
}

// ReplaceTags interns the given names and replaces the project's tag set.
func (r *ProjectRepo) ReplaceTags(project *models.Project, tagNames []string) (*models.Project, error) {
	tags, err := r.tags.Intern(tagNames)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(project).Association("Tags").Replace(tags); err != nil {
		return nil, errs.NewDatabaseError("update", "project tags", err)
	}
	project.Tags = tags
	return project, nil
}

// TransferOwnership atomically moves the owner flag between two roster rows,
// rewriting both permission sets.
func (r *ProjectRepo) TransferOwnership(projectID, fromID, toID uuid.UUID, fromPerms, toPerms models.Permissions) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.ProjectMember{}).
			Where("id = ? AND project_id = ?", fromID, projectID).
			Updates(map[string]any{"is_owner": false, "permissions": fromPerms}).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.ProjectMember{}).
			Where("id = ? AND project_id = ?", toID, projectID).
			Updates(map[string]any{"is_owner": true, "permissions": toPerms}).Error
	})
	if err != nil {
		return errs.NewDatabaseError("update", "project ownership", err)
	}
	return nil
}

// UpdateImageURL sets only the stored image path.
func (r *ProjectRepo) UpdateImageURL(id uuid.UUID, url string) error {
	err := r.db.Model(&models.Project{}).Where("id = ?", id).Update("image_url", url).Error
	if err != nil {
		return errs.NewDatabaseError("update", "project image", err)
	}
	return nil
}

// Delete removes the project. Members, links and tag associations go with it
// through the schema's cascade constraints. Reports whether a row was deleted.
func (r *ProjectRepo) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Delete(&models.Project{}, id)
	if res.Error != nil {
		return false, errs.NewDatabaseError("delete", "project", res.Error)
	}
	return res.RowsAffected > 0, nil
}
