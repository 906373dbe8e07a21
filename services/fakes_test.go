package services

import (
	"sort"
	"time"

	"github.com/craftfolio/project-service/database"
	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// fakeProjectRepo is an in-memory ProjectRepository. Lookups hand out copies
// so service-side mutations only land in the store through explicit writes,
// mirroring how a real database behaves.
type fakeProjectRepo struct {
	projects   map[uuid.UUID]*models.Project
	tagsByName map[string]models.ProjectTag
}

func newFakeProjectRepo(projects ...*models.Project) *fakeProjectRepo {
	repo := &fakeProjectRepo{
		projects:   make(map[uuid.UUID]*models.Project),
		tagsByName: make(map[string]models.ProjectTag),
	}
	for _, p := range projects {
		repo.projects[p.ID] = p
	}
	return repo
}

func copyProject(p *models.Project) *models.Project {
	clone := *p
	clone.Members = append([]models.ProjectMember(nil), p.Members...)
	clone.Links = append([]models.ProjectLink(nil), p.Links...)
	clone.Tags = append([]models.ProjectTag(nil), p.Tags...)
	return &clone
}

func (r *fakeProjectRepo) Search(s database.ProjectSearch) (*database.ProjectPage, error) {
	var visible []models.Project
	for _, p := range r.projects {
		if p.VisibleTo(s.ViewerID) {
			visible = append(visible, *copyProject(p))
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].CreatedAt.After(visible[j].CreatedAt) })
	return &database.ProjectPage{
		Projects:   visible,
		Page:       1,
		PageSize:   len(visible),
		TotalCount: int64(len(visible)),
		TotalPages: 1,
	}, nil
}

func (r *fakeProjectRepo) FindByID(id uuid.UUID, viewerID string, force bool) (*models.Project, error) {
	p, found := r.projects[id]
	if !found {
		return nil, nil
	}
	if !force && !p.VisibleTo(viewerID) {
		return nil, nil
	}
	return copyProject(p), nil
}

func (r *fakeProjectRepo) FindBySlug(slug, viewerID string, force bool) (*models.Project, error) {
	for _, p := range r.projects {
		if p.Slug == slug {
			if !force && !p.VisibleTo(viewerID) {
				return nil, nil
			}
			return copyProject(p), nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) FindByUserID(userID string) ([]models.Project, error) {
	var result []models.Project
	for _, p := range r.projects {
		if p.Member(userID) != nil {
			result = append(result, *copyProject(p))
		}
	}
	return result, nil
}

func (r *fakeProjectRepo) FindByIDs(ids []uuid.UUID, viewerID string) ([]models.Project, error) {
	var result []models.Project
	for _, id := range ids {
		if p, found := r.projects[id]; found && p.VisibleTo(viewerID) {
			result = append(result, *copyProject(p))
		}
	}
	return result, nil
}

func (r *fakeProjectRepo) intern(names []string) []models.ProjectTag {
	tags := make([]models.ProjectTag, 0, len(names))
	for _, name := range names {
		tag, found := r.tagsByName[name]
		if !found {
			tag = models.ProjectTag{ID: models.NewID(), Name: name}
			r.tagsByName[name] = tag
		}
		tags = append(tags, tag)
	}
	return tags
}

func (r *fakeProjectRepo) Create(project *models.Project, tagNames []string) (*models.Project, error) {
	project.Tags = r.intern(tagNames)
	r.projects[project.ID] = copyProject(project)
	return project, nil
}

func (r *fakeProjectRepo) Update(project *models.Project) (*models.Project, error) {
	stored := r.projects[project.ID]
	clone := copyProject(project)
	if stored != nil {
		// Associations are not written by Update.
		clone.Members = stored.Members
		clone.Links = stored.Links
		clone.Tags = stored.Tags
	}
	r.projects[project.ID] = clone
	return project, nil
}

func (r *fakeProjectRepo) ReplaceTags(project *models.Project, tagNames []string) (*models.Project, error) {
	tags := r.intern(tagNames)
	if stored, found := r.projects[project.ID]; found {
		stored.Tags = tags
	}
	project.Tags = tags
	return project, nil
}

func (r *fakeProjectRepo) TransferOwnership(projectID, fromID, toID uuid.UUID, fromPerms, toPerms models.Permissions) error {
	stored := r.projects[projectID]
	for i := range stored.Members {
		switch stored.Members[i].ID {
		case fromID:
			stored.Members[i].IsOwner = false
			stored.Members[i].Permissions = fromPerms
		case toID:
			stored.Members[i].IsOwner = true
			stored.Members[i].Permissions = toPerms
		}
	}
	return nil
}

func (r *fakeProjectRepo) UpdateImageURL(id uuid.UUID, url string) error {
	if stored, found := r.projects[id]; found {
		stored.ImageURL = &url
	}
	return nil
}

func (r *fakeProjectRepo) Delete(id uuid.UUID) (bool, error) {
	if _, found := r.projects[id]; !found {
		return false, nil
	}
	delete(r.projects, id)
	return true, nil
}

type fakeMemberRepo struct {
	store *fakeProjectRepo
}

func (r *fakeMemberRepo) Add(member *models.ProjectMember) (*models.ProjectMember, error) {
	stored := r.store.projects[member.ProjectID]
	stored.Members = append(stored.Members, *member)
	return member, nil
}

func (r *fakeMemberRepo) UpdateRole(memberID uuid.UUID, role string) error {
	for _, p := range r.store.projects {
		for i := range p.Members {
			if p.Members[i].ID == memberID {
				p.Members[i].Role = role
			}
		}
	}
	return nil
}

func (r *fakeMemberRepo) UpdatePermissions(memberID uuid.UUID, permissions models.Permissions) error {
	for _, p := range r.store.projects {
		for i := range p.Members {
			if p.Members[i].ID == memberID {
				p.Members[i].Permissions = permissions
			}
		}
	}
	return nil
}

func (r *fakeMemberRepo) Delete(projectID uuid.UUID, userID string) (bool, error) {
	stored, found := r.store.projects[projectID]
	if !found {
		return false, nil
	}
	before := len(stored.Members)
	stored.Members = lo.Reject(stored.Members, func(m models.ProjectMember, _ int) bool {
		return m.UserID == userID
	})
	return len(stored.Members) < before, nil
}

type fakeLinkRepo struct {
	store *fakeProjectRepo
}

func (r *fakeLinkRepo) Replace(projectID uuid.UUID, links []models.ProjectLink) ([]models.ProjectLink, error) {
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })
	if stored, found := r.store.projects[projectID]; found {
		stored.Links = append([]models.ProjectLink(nil), links...)
	}
	return links, nil
}

func memberWith(userID string, owner bool, perms models.Permissions) models.ProjectMember {
	role := "Member"
	if owner {
		role = "Owner"
		perms = models.PermissionsAll
	}
	return models.ProjectMember{
		ID:          models.NewID(),
		UserID:      userID,
		IsOwner:     owner,
		Role:        role,
		Permissions: perms,
	}
}

func projectWith(status models.ProjectStatus, members ...models.ProjectMember) *models.Project {
	id := models.NewID()
	for i := range members {
		members[i].ProjectID = id
	}
	p := &models.Project{
		ID:        id,
		Name:      "My Project",
		Slug:      "my-project",
		Status:    status,
		Category:  models.CategoryTechnology,
		CreatedAt: fixedNow.Add(-48 * time.Hour),
		Members:   members,
	}
	if status == models.ProjectStatusPublished || status == models.ProjectStatusArchived {
		publishedAt := fixedNow.Add(-24 * time.Hour)
		p.PublishedAt = &publishedAt
	}
	return p
}

// fixedNow keeps time-sensitive assertions deterministic.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingPublisher captures published messages for assertions.
type recordingPublisher struct {
	messages []events.Message
}

func (p *recordingPublisher) Publish(msg events.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) exchanges() []string {
	return lo.Map(p.messages, func(msg events.Message, _ int) string { return msg.Exchange() })
}
