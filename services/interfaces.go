package services

import (
	"github.com/craftfolio/project-service/database"
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ProjectRepository is the persistence surface the services consume. Lookups
// return nil without error when nothing visible matches.
type ProjectRepository interface {
	Search(s database.ProjectSearch) (*database.ProjectPage, error)
	FindByID(id uuid.UUID, viewerID string, force bool) (*models.Project, error)
	FindBySlug(slug, viewerID string, force bool) (*models.Project, error)
	FindByUserID(userID string) ([]models.Project, error)
	FindByIDs(ids []uuid.UUID, viewerID string) ([]models.Project, error)
	Create(project *models.Project, tagNames []string) (*models.Project, error)
	Update(project *models.Project) (*models.Project, error)
	ReplaceTags(project *models.Project, tagNames []string) (*models.Project, error)
	TransferOwnership(projectID, fromID, toID uuid.UUID, fromPerms, toPerms models.Permissions) error
	UpdateImageURL(id uuid.UUID, url string) error
	Delete(id uuid.UUID) (bool, error)
}

type ProjectMemberRepository interface {
	Add(member *models.ProjectMember) (*models.ProjectMember, error)
	UpdateRole(memberID uuid.UUID, role string) error
	UpdatePermissions(memberID uuid.UUID, permissions models.Permissions) error
	Delete(projectID uuid.UUID, userID string) (bool, error)
}

type ProjectLinkRepository interface {
	Replace(projectID uuid.UUID, links []models.ProjectLink) ([]models.ProjectLink, error)
}

// requireMember returns the acting member when they hold the given permission
// bit or own the project. Anyone else, member or not, gets a forbidden error.
func requireMember(project *models.Project, actorID string, permission models.Permissions) (*models.ProjectMember, error) {
	member := project.Member(actorID)
	if member == nil || !member.CanPerform(permission) {
		return nil, errs.NewForbiddenError("user does not have permission to perform this action")
	}
	return member, nil
}

// roster converts a loaded member list into the snapshot carried by project
// events.
func roster(project *models.Project) []events.MemberSnapshot {
	return lo.Map(project.Members, func(m models.ProjectMember, _ int) events.MemberSnapshot {
		return events.MemberSnapshot{UserID: m.UserID, IsOwner: m.IsOwner}
	})
}
