package services

import (
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Notification types dispatched to the notification service.
const (
	notificationMemberAdded   = "project_member_added"
	notificationMemberRemoved = "project_member_removed"
)

// ProjectMemberService orchestrates roster changes with authorization checks.
type ProjectMemberService struct {
	projects  ProjectRepository
	members   ProjectMemberRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewProjectMemberService(projects ProjectRepository, members ProjectMemberRepository, publisher events.Publisher) *ProjectMemberService {
	return &ProjectMemberService{
		projects:  projects,
		members:   members,
		publisher: publisher,
		logger:    log.With().Str("serviceName", "projectMemberService").Logger(),
	}
}

func (s *ProjectMemberService) publish(msg events.Message) {
	if err := s.publisher.Publish(msg); err != nil {
		s.logger.Error().Err(err).Str("exchange", msg.Exchange()).Msg("Failed to publish event")
	}
}

// Get returns the roster if the project is visible to the viewer.
func (s *ProjectMemberService) Get(projectID uuid.UUID, viewerID string) (*Result[[]models.ProjectMember], error) {
	project, err := s.projects.FindByID(projectID, viewerID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[[]models.ProjectMember](), nil
	}
	return ok(project.Members, ""), nil
}

// Add puts a new user on the roster with no permissions. Requires
// AddProjectMembers or ownership.
func (s *ProjectMemberService) Add(projectID uuid.UUID, newUserID, actorID string) (*Result[*models.ProjectMember], error) {
	project, err := s.projects.FindByID(projectID, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.ProjectMember](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionAddProjectMembers); err != nil {
		return nil, err
	}

	if newUserID == actorID {
		return fail[*models.ProjectMember]("You cannot add yourself to a project"), nil
	}
	if project.Member(newUserID) != nil {
		return fail[*models.ProjectMember]("User is already a member of this project"), nil
	}
	if len(project.Members) >= maxMembers {
		return fail[*models.ProjectMember]("A project can have at most 20 members"), nil
	}

	member := &models.ProjectMember{
		ID:          models.NewID(),
		ProjectID:   project.ID,
		UserID:      newUserID,
		Role:        "Member",
		Permissions: models.PermissionsNone,
	}
	added, err := s.members.Add(member)
	if err != nil {
		return nil, err
	}
	project.Members = append(project.Members, *added)

	s.publish(events.ProjectMemberAddedMessage{
		ProjectID: project.ID.String(),
		MemberID:  added.ID.String(),
		UserID:    added.UserID,
	})
	s.publish(events.NotificationMessage{
		UserID: added.UserID,
		Type:   notificationMemberAdded,
		Data: map[string]string{
			"project_id":   project.ID.String(),
			"project_name": project.Name,
		},
	})
	s.publish(events.ProjectUpdatedMessage{
		ProjectID: project.ID.String(),
		Name:      project.Name,
		Slug:      project.Slug,
		Members:   roster(project),
	})

	return ok(added, "Member added successfully"), nil
}

// findMember resolves a roster row by its id on an already loaded project.
func findMember(project *models.Project, memberID uuid.UUID) *models.ProjectMember {
	for i := range project.Members {
		if project.Members[i].ID == memberID {
			return &project.Members[i]
		}
	}
	return nil
}

// UpdateRole changes a member's display role. The owner's role can only be
// changed by the owner. Requires EditProjectMemberRoles or ownership.
func (s *ProjectMemberService) UpdateRole(projectID, memberID uuid.UUID, role, actorID string) (*Result[*models.ProjectMember], error) {
	project, err := s.projects.FindByID(projectID, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.ProjectMember](), nil
	}
	actor, err := requireMember(project, actorID, models.PermissionEditProjectMemberRoles)
	if err != nil {
		return nil, err
	}

	target := findMember(project, memberID)
	if target == nil {
		return fail[*models.ProjectMember]("Member not found"), nil
	}
	if target.IsOwner && !actor.IsOwner {
		return nil, errs.NewForbiddenError("only the owner can change the owner's role")
	}

	if validationErrors := validateRole(role); len(validationErrors) > 0 {
		return invalid[*models.ProjectMember](validationErrors), nil
	}

	if err := s.members.UpdateRole(target.ID, role); err != nil {
		return nil, err
	}
	target.Role = role

	return ok(target, "Member role updated successfully"), nil
}

// UpdatePermissions rewrites a member's permission set. Non-owner actors may
// only flip bits they hold themselves, and nobody edits the owner's set.
// Requires EditProjectMemberPermissions or ownership.
func (s *ProjectMemberService) UpdatePermissions(projectID, memberID uuid.UUID, requested models.Permissions, actorID string) (*Result[*models.ProjectMember], error) {
	project, err := s.projects.FindByID(projectID, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[*models.ProjectMember](), nil
	}
	actor, err := requireMember(project, actorID, models.PermissionEditProjectMemberPermissions)
	if err != nil {
		return nil, err
	}

	target := findMember(project, memberID)
	if target == nil {
		return fail[*models.ProjectMember]("Member not found"), nil
	}
	if target.IsOwner {
		return nil, errs.NewForbiddenError("the owner's permissions cannot be changed")
	}

	// Escalation guard: every granted or revoked bit must be held by the
	// actor, unless the actor is the owner.
	if !actor.IsOwner {
		diff := target.Permissions.Diff(requested)
		if !actor.Permissions.Has(diff) {
			return nil, errs.NewForbiddenError("cannot grant or revoke permissions you do not hold")
		}
	}

	if err := s.members.UpdatePermissions(target.ID, requested); err != nil {
		return nil, err
	}
	target.Permissions = requested

	return ok(target, "Member permissions updated successfully"), nil
}

// Delete removes a user from the roster. The owner and the last remaining
// member are never removable. force skips the permission check for trusted
// internal callers.
func (s *ProjectMemberService) Delete(projectID uuid.UUID, targetUserID, actorID string, force bool) (*Result[bool], error) {
	project, err := s.projects.FindByID(projectID, actorID, force)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[bool](), nil
	}

	if !force {
		if _, err := requireMember(project, actorID, models.PermissionDeleteProjectMembers); err != nil {
			return nil, err
		}
	}

	target := project.Member(targetUserID)
	if target == nil {
		return fail[bool]("Member not found"), nil
	}
	if len(project.Members) == 1 {
		return nil, errs.NewForbiddenError("the last member of a project cannot be removed")
	}
	if target.IsOwner {
		return nil, errs.NewForbiddenError("the owner cannot be removed; transfer ownership first")
	}

	deleted, err := s.members.Delete(project.ID, targetUserID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return fail[bool]("Member not found"), nil
	}
	project.Members = lo.Reject(project.Members, func(m models.ProjectMember, _ int) bool {
		return m.UserID == targetUserID
	})

	s.publish(events.ProjectMemberRemovedMessage{
		ProjectID: project.ID.String(),
		UserID:    targetUserID,
	})
	if !force {
		s.publish(events.NotificationMessage{
			UserID: targetUserID,
			Type:   notificationMemberRemoved,
			Data: map[string]string{
				"project_id":   project.ID.String(),
				"project_name": project.Name,
			},
		})
	}
	s.publish(events.ProjectUpdatedMessage{
		ProjectID: project.ID.String(),
		Name:      project.Name,
		Slug:      project.Slug,
		Members:   roster(project),
	})

	return ok(true, "Member removed successfully"), nil
}
