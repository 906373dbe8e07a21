package services

import (
	"time"

	"github.com/craftfolio/project-service/database"
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ProjectDetails are the validated, directly editable project fields.
type ProjectDetails struct {
	Name     string
	Slug     string
	Summary  *string
	Category models.ProjectCategory
}

// CreateProject is the full payload accepted by Create.
type CreateProject struct {
	ProjectDetails
	Content *string
	Tags    []string
}

// ImageUpload is an in-memory image file handed off to the file service.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// ProjectService orchestrates project CRUD, lifecycle and ownership changes.
type ProjectService struct {
	projects  ProjectRepository
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProjectService(projects ProjectRepository, publisher events.Publisher) *ProjectService {
	return &ProjectService{
		projects:  projects,
		publisher: publisher,
		logger:    log.With().Str("serviceName", "projectService").Logger(),
		now:       time.Now,
	}
}

// publish sends an event without failing the triggering operation. Delivery
// is fire-and-forget; local state is already persisted when this runs.
func (s *ProjectService) publish(msg events.Message) {
	if err := s.publisher.Publish(msg); err != nil {
		s.logger.Error().Err(err).Str("exchange", msg.Exchange()).Msg("Failed to publish event")
	}
}

// Search returns a page of projects visible to the viewer.
func (s *ProjectService) Search(search database.ProjectSearch) (*database.ProjectPage, error) {
	return s.projects.Search(search)
}

// GetByID returns the project if it exists and is visible to the viewer.
// force bypasses the visibility rule for trusted internal callers.
func (s *ProjectService) GetByID(id uuid.UUID, viewerID string, force bool) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, viewerID, force)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	return ok(project, ""), nil
}

// GetBySlug is GetByID addressed by slug.
func (s *ProjectService) GetBySlug(slug, viewerID string, force bool) (*Result[*models.Project], error) {
	project, err := s.projects.FindBySlug(slug, viewerID, force)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	return ok(project, ""), nil
}

// GetByUserID returns every project the user belongs to, regardless of
// status.
func (s *ProjectService) GetByUserID(userID string) ([]models.Project, error) {
	return s.projects.FindByUserID(userID)
}

// GetByIDs returns the visible subset of the given projects.
func (s *ProjectService) GetByIDs(ids []uuid.UUID, viewerID string) ([]models.Project, error) {
	return s.projects.FindByIDs(ids, viewerID)
}

// Create validates and persists a new draft project with the creator as sole
// owner. A provided image is handed to the file service asynchronously; the
// stored path arrives later through UpdateImageURL.
func (s *ProjectService) Create(data CreateProject, image *ImageUpload, ownerID string) (*Result[*models.Project], error) {
	validationErrors, err := s.validateDetails(data.ProjectDetails, uuid.Nil)
	if err != nil {
		return nil, err
	}
	validationErrors.merge(validateTags(data.Tags))
	if image != nil {
		validationErrors.merge(validateImage(*image))
	}
	if len(validationErrors) > 0 {
		return invalid[*models.Project](validationErrors), nil
	}

	projectID := models.NewID()
	project := &models.Project{
		ID:        projectID,
		Name:      data.Name,
		Slug:      data.Slug,
		Summary:   data.Summary,
		Content:   data.Content,
		Status:    models.ProjectStatusDraft,
		Category:  data.Category,
		CreatedAt: s.now().UTC(),
		Members: []models.ProjectMember{{
			ID:          models.NewID(),
			ProjectID:   projectID,
			UserID:      ownerID,
			IsOwner:     true,
			Role:        "Owner",
			Permissions: models.PermissionsAll,
		}},
	}

	created, err := s.projects.Create(project, lo.Uniq(data.Tags))
	if err != nil {
		return nil, err
	}

	s.publish(events.ProjectCreatedMessage{
		ProjectID: created.ID.String(),
		Name:      created.Name,
		Slug:      created.Slug,
		Members:   roster(created),
	})
	if image != nil {
		s.publish(events.FileStoreMessage{
			Data:        image.Data,
			ContentType: image.ContentType,
			FileType:    events.FileTypeProjectLogo,
			ParentID:    created.ID.String(),
			UserID:      ownerID,
		})
	}

	return ok(created, "Project created successfully"), nil
}

// touch bumps UpdatedAt unless the previous bump is less than 24 hours old.
// Rapid re-saves must not push a project up recency orderings.
func (s *ProjectService) touch(project *models.Project) {
	now := s.now().UTC()
	if project.UpdatedAt != nil && now.Sub(*project.UpdatedAt) < 24*time.Hour {
		return
	}
	project.UpdatedAt = &now
}

// UpdateDetails rewrites the editable fields. Requires EditProject or
// ownership.
func (s *ProjectService) UpdateDetails(id uuid.UUID, data ProjectDetails, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionEditProject); err != nil {
		return nil, err
	}

	validationErrors, err := s.validateDetails(data, project.ID)
	if err != nil {
		return nil, err
	}
	if len(validationErrors) > 0 {
		return invalid[*models.Project](validationErrors), nil
	}

	project.Name = data.Name
	project.Slug = data.Slug
	project.Summary = data.Summary
	project.Category = data.Category
	s.touch(project)

	updated, err := s.projects.Update(project)
	if err != nil {
		return nil, err
	}

	s.publish(events.ProjectUpdatedMessage{
		ProjectID: updated.ID.String(),
		Name:      updated.Name,
		Slug:      updated.Slug,
		Members:   roster(updated),
	})

	return ok(updated, "Project updated successfully"), nil
}

// UpdateContent rewrites the free-text content. No validation applies.
func (s *ProjectService) UpdateContent(id uuid.UUID, content *string, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionEditProject); err != nil {
		return nil, err
	}

	project.Content = content
	s.touch(project)

	updated, err := s.projects.Update(project)
	if err != nil {
		return nil, err
	}
	return ok(updated, "Project content updated successfully"), nil
}

// UpdateTags replaces the tag set wholesale, interning names against
// existing tag rows.
func (s *ProjectService) UpdateTags(id uuid.UUID, tags []string, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionEditProject); err != nil {
		return nil, err
	}

	if validationErrors := validateTags(tags); len(validationErrors) > 0 {
		return invalid[*models.Project](validationErrors), nil
	}

	updated, err := s.projects.ReplaceTags(project, lo.Uniq(tags))
	if err != nil {
		return nil, err
	}

	s.touch(updated)
	updated, err = s.projects.Update(updated)
	if err != nil {
		return nil, err
	}
	return ok(updated, "Project tags updated successfully"), nil
}

// UpdateStatus moves the project through its lifecycle. Draft and Review are
// never valid targets; publishing requires Draft or Archived, archiving
// requires Published. Requires PublishProject or ownership.
func (s *ProjectService) UpdateStatus(id uuid.UUID, status models.ProjectStatus, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionPublishProject); err != nil {
		return nil, err
	}

	switch status {
	case models.ProjectStatusDraft:
		return fail[*models.Project]("A project cannot be moved back to draft"), nil
	case models.ProjectStatusReview:
		// Reserved for a moderation workflow that does not exist yet.
		return fail[*models.Project]("The review workflow is not available"), nil
	case models.ProjectStatusPublished:
		if project.Status != models.ProjectStatusDraft && project.Status != models.ProjectStatusArchived {
			return fail[*models.Project]("Only draft or archived projects can be published"), nil
		}
		project.Status = models.ProjectStatusPublished
		if project.PublishedAt == nil {
			publishedAt := s.now().UTC()
			project.PublishedAt = &publishedAt
		}
	case models.ProjectStatusArchived:
		if project.Status != models.ProjectStatusPublished {
			return fail[*models.Project]("Only published projects can be archived"), nil
		}
		project.Status = models.ProjectStatusArchived
	default:
		return fail[*models.Project]("Invalid project status"), nil
	}

	updated, err := s.projects.Update(project)
	if err != nil {
		return nil, err
	}
	return ok(updated, "Project status updated successfully"), nil
}

// UpdateOwnership transfers ownership to an existing member. Only the current
// owner may transfer; the outgoing owner keeps every permission except
// deleting the project.
func (s *ProjectService) UpdateOwnership(id uuid.UUID, newOwnerUserID, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}

	actor := project.Member(actorID)
	if actor == nil || !actor.IsOwner {
		return nil, errs.NewForbiddenError("only the project owner can transfer ownership")
	}

	target := project.Member(newOwnerUserID)
	if target == nil {
		return fail[*models.Project]("The new owner must already be a member of the project"), nil
	}
	if target.IsOwner {
		return fail[*models.Project]("User is already the owner of the project"), nil
	}

	outgoingPerms := models.PermissionsAll.Remove(models.PermissionDeleteProject)
	err = s.projects.TransferOwnership(project.ID, actor.ID, target.ID, outgoingPerms, models.PermissionsAll)
	if err != nil {
		return nil, err
	}

	actor.IsOwner = false
	actor.Permissions = outgoingPerms
	target.IsOwner = true
	target.Permissions = models.PermissionsAll

	s.publish(events.ProjectUpdatedMessage{
		ProjectID: project.ID.String(),
		Name:      project.Name,
		Slug:      project.Slug,
		Members:   roster(project),
	})

	return ok(project, "Project ownership transferred successfully"), nil
}

// UpdateImage validates the upload and hands it to the file service. The
// request does not wait for storage; the path lands via UpdateImageURL once
// the file service confirms.
func (s *ProjectService) UpdateImage(id uuid.UUID, image ImageUpload, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionEditProject); err != nil {
		return nil, err
	}

	if validationErrors := validateImage(image); len(validationErrors) > 0 {
		return invalid[*models.Project](validationErrors), nil
	}

	s.publish(events.FileStoreMessage{
		Data:        image.Data,
		ContentType: image.ContentType,
		FileType:    events.FileTypeProjectLogo,
		ParentID:    project.ID.String(),
		UserID:      actorID,
	})

	return ok(project, "Project image upload started"), nil
}

// UpdateImageURL persists the stored image path reported by the file service
// and asks it to delete the previous image, if any.
func (s *ProjectService) UpdateImageURL(id uuid.UUID, filePath, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, true)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}

	previous := project.ImageURL
	if err := s.projects.UpdateImageURL(project.ID, filePath); err != nil {
		return nil, err
	}
	project.ImageURL = &filePath

	if previous != nil && *previous != filePath {
		s.publish(events.FileDeleteMessage{
			FilePath: *previous,
			FileType: events.FileTypeProjectLogo,
			ParentID: project.ID.String(),
			UserID:   actorID,
		})
	}

	return ok(project, "Project image updated successfully"), nil
}

// Delete hard-deletes the project. Members and links cascade; tag rows
// survive for other projects. Requires DeleteProject or ownership.
func (s *ProjectService) Delete(id uuid.UUID, actorID string) (*Result[*models.Project], error) {
	project, err := s.projects.FindByID(id, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.Project](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionDeleteProject); err != nil {
		return nil, err
	}

	deleted, err := s.projects.Delete(project.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return notFound[*models.Project](), nil
	}

	s.publish(events.ProjectDeletedMessage{ProjectID: project.ID.String()})
	if project.ImageURL != nil {
		s.publish(events.FileDeleteMessage{
			FilePath: *project.ImageURL,
			FileType: events.FileTypeProjectLogo,
			ParentID: project.ID.String(),
			UserID:   actorID,
		})
	}

	return ok(project, "Project deleted successfully"), nil
}

// Resync re-publishes a project snapshot on demand, addressed by id or,
// failing that, by slug. Unknown projects are ignored.
func (s *ProjectService) Resync(id uuid.UUID, slug string) error {
	var project *models.Project
	var err error

	if id != uuid.Nil {
		project, err = s.projects.FindByID(id, "", true)
		if err != nil {
			return err
		}
	}
	if project == nil && slug != "" {
		project, err = s.projects.FindBySlug(slug, "", true)
		if err != nil {
			return err
		}
	}
	if project == nil {
		s.logger.Warn().Str("projectId", id.String()).Str("slug", slug).Msg("Sync requested for unknown project")
		return nil
	}

	s.publish(events.ProjectSyncMessage{
		ProjectID: project.ID.String(),
		Name:      project.Name,
		Slug:      project.Slug,
		Members:   roster(project),
	})
	return nil
}
