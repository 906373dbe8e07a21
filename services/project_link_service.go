package services

import (
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LinkInput is one entry of an incoming link list. A nil ID marks a new link;
// a set ID updates the matching existing link in place.
type LinkInput struct {
	ID    *uuid.UUID
	Name  string
	URL   string
	Type  models.LinkType
	Order uint16
}

// ProjectLinkService orchestrates wholesale link replacement.
type ProjectLinkService struct {
	projects ProjectRepository
	links    ProjectLinkRepository
	logger   zerolog.Logger
}

func NewProjectLinkService(projects ProjectRepository, links ProjectLinkRepository) *ProjectLinkService {
	return &ProjectLinkService{
		projects: projects,
		links:    links,
		logger:   log.With().Str("serviceName", "projectLinkService").Logger(),
	}
}

// UpdateLinks makes the incoming list the project's complete link set:
// entries with a known id are updated, new entries inserted, absent existing
// links deleted. Requires ManageLinks or ownership.
func (s *ProjectLinkService) UpdateLinks(projectID uuid.UUID, inputs []LinkInput, actorID string) (*Result[[]models.ProjectLink], error) {
	project, err := s.projects.FindByID(projectID, actorID, false)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return notFound[[]models.ProjectLink](), nil
	}
	if _, err := requireMember(project, actorID, models.PermissionManageLinks); err != nil {
		return nil, err
	}

	if validationErrors := validateLinks(inputs); len(validationErrors) > 0 {
		return invalid[[]models.ProjectLink](validationErrors), nil
	}

	links := make([]models.ProjectLink, 0, len(inputs))
	for _, input := range inputs {
		id := models.NewID()
		if input.ID != nil && *input.ID != uuid.Nil {
			id = *input.ID
		}
		linkType := input.Type
		if !linkType.IsValid() {
			linkType = models.LinkTypeOther
		}
		links = append(links, models.ProjectLink{
			ID:        id,
			ProjectID: project.ID,
			Name:      input.Name,
			URL:       input.URL,
			Type:      linkType,
			Order:     input.Order,
		})
	}

	replaced, err := s.links.Replace(project.ID, links)
	if err != nil {
		return nil, err
	}

	return ok(replaced, "Project links updated successfully"), nil
}
