package services

import (
	"testing"
	"time"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/events"
	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectService(repo *fakeProjectRepo) (*ProjectService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	service := NewProjectService(repo, publisher)
	service.now = func() time.Time { return fixedNow }
	return service, publisher
}

func strPtr(s string) *string { return &s }

func TestCreateProject(t *testing.T) {
	repo := newFakeProjectRepo()
	service, publisher := newProjectService(repo)

	result, err := service.Create(CreateProject{
		ProjectDetails: ProjectDetails{
			Name:     "My Project",
			Slug:     "my-project",
			Category: models.CategoryTechnology,
		},
		Tags: []string{"golang", "backend"},
	}, nil, "u1")

	require.NoError(t, err)
	require.True(t, result.Success)

	project := result.Data
	assert.Equal(t, models.ProjectStatusDraft, project.Status)
	assert.Equal(t, fixedNow, project.CreatedAt)
	assert.Nil(t, project.PublishedAt)

	require.Len(t, project.Members, 1)
	owner := project.Members[0]
	assert.Equal(t, "u1", owner.UserID)
	assert.True(t, owner.IsOwner)
	assert.Equal(t, "Owner", owner.Role)
	assert.Equal(t, models.PermissionsAll, owner.Permissions)

	assert.Len(t, project.Tags, 2)
	assert.Equal(t, []string{events.ExchangeProjectCreated}, publisher.exchanges())
}

func TestCreateProjectWithImage(t *testing.T) {
	repo := newFakeProjectRepo()
	service, publisher := newProjectService(repo)

	image := &ImageUpload{Data: make([]byte, 2048), ContentType: "image/png"}
	result, err := service.Create(CreateProject{
		ProjectDetails: ProjectDetails{Name: "My Project", Slug: "my-project", Category: models.CategoryGame},
	}, image, "u1")

	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, publisher.messages, 2)
	store, isStore := publisher.messages[1].(events.FileStoreMessage)
	require.True(t, isStore)
	assert.Equal(t, events.FileTypeProjectLogo, store.FileType)
	assert.Equal(t, result.Data.ID.String(), store.ParentID)
	assert.Equal(t, "u1", store.UserID)
}

func TestCreateProjectCollectsValidationErrors(t *testing.T) {
	existing := projectWith(models.ProjectStatusDraft, memberWith("u2", true, 0))
	repo := newFakeProjectRepo(existing)
	service, publisher := newProjectService(repo)

	result, err := service.Create(CreateProject{
		ProjectDetails: ProjectDetails{
			Name:     "x",
			Slug:     existing.Slug,
			Category: models.CategoryNone,
		},
		Tags: []string{"Bad Tag"},
	}, nil, "u1")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors, "name")
	assert.Contains(t, result.Errors, "slug")
	assert.Contains(t, result.Errors, "category")
	assert.Contains(t, result.Errors, "tags.0")
	assert.Empty(t, publisher.messages)
	assert.Len(t, repo.projects, 1)
}

func TestGetByIDVisibility(t *testing.T) {
	draft := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(draft)
	service, _ := newProjectService(repo)

	anonymous, err := service.GetByID(draft.ID, "", false)
	require.NoError(t, err)
	assert.True(t, anonymous.NotFound())

	member, err := service.GetByID(draft.ID, "u1", false)
	require.NoError(t, err)
	assert.True(t, member.Success)

	forced, err := service.GetByID(draft.ID, "", true)
	require.NoError(t, err)
	assert.True(t, forced.Success)
}

func TestUpdateDetails(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft,
		memberWith("owner", true, 0),
		memberWith("editor", false, models.PermissionEditProject),
		memberWith("viewer", false, models.PermissionsNone),
	)
	repo := newFakeProjectRepo(project)
	service, _ := newProjectService(repo)

	details := ProjectDetails{
		Name:     "Renamed Project",
		Slug:     "renamed-project",
		Category: models.CategoryArt,
	}

	_, err := service.UpdateDetails(project.ID, details, "viewer")
	assert.True(t, errs.IsForbidden(err))

	// A draft is invisible to non-members, so a stranger sees a missing
	// project rather than a permission error.
	hidden, err := service.UpdateDetails(project.ID, details, "stranger")
	require.NoError(t, err)
	assert.True(t, hidden.NotFound())

	result, err := service.UpdateDetails(project.ID, details, "editor")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "Renamed Project", result.Data.Name)
	assert.Equal(t, "renamed-project", repo.projects[project.ID].Slug)
}

func TestUpdateDetailsKeepsOwnSlug(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(project)
	service, _ := newProjectService(repo)

	result, err := service.UpdateDetails(project.ID, ProjectDetails{
		Name:     "My Project",
		Slug:     project.Slug,
		Category: models.CategoryTechnology,
	}, "u1")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestUpdatedAtThrottle(t *testing.T) {
	details := ProjectDetails{Name: "My Project", Slug: "my-project", Category: models.CategoryTechnology}

	t.Run("recent update is not bumped", func(t *testing.T) {
		project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
		recent := fixedNow.Add(-time.Hour)
		project.UpdatedAt = &recent
		repo := newFakeProjectRepo(project)
		service, _ := newProjectService(repo)

		result, err := service.UpdateDetails(project.ID, details, "u1")
		require.NoError(t, err)
		assert.Equal(t, recent, *result.Data.UpdatedAt)
	})

	t.Run("stale update is bumped", func(t *testing.T) {
		project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
		stale := fixedNow.Add(-25 * time.Hour)
		project.UpdatedAt = &stale
		repo := newFakeProjectRepo(project)
		service, _ := newProjectService(repo)

		result, err := service.UpdateDetails(project.ID, details, "u1")
		require.NoError(t, err)
		assert.Equal(t, fixedNow, *result.Data.UpdatedAt)
	})

	t.Run("first update is set", func(t *testing.T) {
		project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
		repo := newFakeProjectRepo(project)
		service, _ := newProjectService(repo)

		result, err := service.UpdateContent(project.ID, strPtr("hello"), "u1")
		require.NoError(t, err)
		require.NotNil(t, result.Data.UpdatedAt)
		assert.Equal(t, fixedNow, *result.Data.UpdatedAt)
	})
}

func TestUpdateTags(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(project)
	service, _ := newProjectService(repo)

	tooMany, err := service.UpdateTags(project.ID, []string{"a-", "b-", "c-", "d-", "e-", "f-"}, "u1")
	require.NoError(t, err)
	assert.Contains(t, tooMany.Errors, "tags")

	result, err := service.UpdateTags(project.ID, []string{"golang", "golang", "backend"}, "u1")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Len(t, repo.projects[project.ID].Tags, 2)
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.ProjectStatus
		to      models.ProjectStatus
		allowed bool
	}{
		{"draft to published", models.ProjectStatusDraft, models.ProjectStatusPublished, true},
		{"published to draft", models.ProjectStatusPublished, models.ProjectStatusDraft, false},
		{"draft to archived", models.ProjectStatusDraft, models.ProjectStatusArchived, false},
		{"published to archived", models.ProjectStatusPublished, models.ProjectStatusArchived, true},
		{"archived to published", models.ProjectStatusArchived, models.ProjectStatusPublished, true},
		{"draft to review", models.ProjectStatusDraft, models.ProjectStatusReview, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			project := projectWith(tc.from, memberWith("u1", true, 0))
			repo := newFakeProjectRepo(project)
			service, _ := newProjectService(repo)

			result, err := service.UpdateStatus(project.ID, tc.to, "u1")
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, result.Success)
			if tc.allowed {
				assert.Equal(t, tc.to, repo.projects[project.ID].Status)
			} else {
				assert.Equal(t, tc.from, repo.projects[project.ID].Status)
			}
		})
	}
}

func TestUpdateStatusSetsPublishedAtOnce(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(project)
	service, _ := newProjectService(repo)

	published, err := service.UpdateStatus(project.ID, models.ProjectStatusPublished, "u1")
	require.NoError(t, err)
	require.True(t, published.Success)
	require.NotNil(t, published.Data.PublishedAt)
	firstPublished := *published.Data.PublishedAt

	archived, err := service.UpdateStatus(project.ID, models.ProjectStatusArchived, "u1")
	require.NoError(t, err)
	require.True(t, archived.Success)

	republished, err := service.UpdateStatus(project.ID, models.ProjectStatusPublished, "u1")
	require.NoError(t, err)
	require.True(t, republished.Success)
	assert.Equal(t, firstPublished, *republished.Data.PublishedAt)
}

func TestUpdateStatusRequiresPublishPermission(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft,
		memberWith("owner", true, 0),
		memberWith("editor", false, models.PermissionEditProject),
	)
	repo := newFakeProjectRepo(project)
	service, _ := newProjectService(repo)

	_, err := service.UpdateStatus(project.ID, models.ProjectStatusPublished, "editor")
	assert.True(t, errs.IsForbidden(err))
}

func TestUpdateOwnership(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft,
		memberWith("u1", true, 0),
		memberWith("u2", false, models.PermissionEditProject),
	)
	repo := newFakeProjectRepo(project)
	service, publisher := newProjectService(repo)

	_, err := service.UpdateOwnership(project.ID, "u1", "u2")
	assert.True(t, errs.IsForbidden(err))

	notMember, err := service.UpdateOwnership(project.ID, "u3", "u1")
	require.NoError(t, err)
	assert.False(t, notMember.Success)

	result, err := service.UpdateOwnership(project.ID, "u2", "u1")
	require.NoError(t, err)
	require.True(t, result.Success)

	stored := repo.projects[project.ID]
	previous := stored.Member("u1")
	assert.False(t, previous.IsOwner)
	assert.Equal(t, models.PermissionsAll.Remove(models.PermissionDeleteProject), previous.Permissions)
	assert.False(t, previous.Permissions.Has(models.PermissionDeleteProject))

	current := stored.Member("u2")
	assert.True(t, current.IsOwner)
	assert.Equal(t, models.PermissionsAll, current.Permissions)

	assert.Contains(t, publisher.exchanges(), events.ExchangeProjectUpdated)
}

func TestUpdateImage(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(project)
	service, publisher := newProjectService(repo)

	tooSmall, err := service.UpdateImage(project.ID, ImageUpload{Data: make([]byte, 100), ContentType: "image/png"}, "u1")
	require.NoError(t, err)
	assert.Contains(t, tooSmall.Errors, "image")

	badType, err := service.UpdateImage(project.ID, ImageUpload{Data: make([]byte, 2048), ContentType: "text/html"}, "u1")
	require.NoError(t, err)
	assert.Contains(t, badType.Errors, "image")

	result, err := service.UpdateImage(project.ID, ImageUpload{Data: make([]byte, 2048), ContentType: "image/webp"}, "u1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{events.ExchangeFileStore}, publisher.exchanges())
}

func TestUpdateImageURLReplacesPrevious(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	project.ImageURL = strPtr("images/old.png")
	repo := newFakeProjectRepo(project)
	service, publisher := newProjectService(repo)

	result, err := service.UpdateImageURL(project.ID, "images/new.png", "u1")
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "images/new.png", *repo.projects[project.ID].ImageURL)

	require.Len(t, publisher.messages, 1)
	deletion, isDelete := publisher.messages[0].(events.FileDeleteMessage)
	require.True(t, isDelete)
	assert.Equal(t, "images/old.png", deletion.FilePath)
}

func TestDeleteProject(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft,
		memberWith("owner", true, 0),
		memberWith("editor", false, models.PermissionEditProject),
	)
	repo := newFakeProjectRepo(project)
	service, publisher := newProjectService(repo)

	_, err := service.Delete(project.ID, "editor")
	assert.True(t, errs.IsForbidden(err))

	result, err := service.Delete(project.ID, "owner")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Empty(t, repo.projects)
	assert.Equal(t, []string{events.ExchangeProjectDeleted}, publisher.exchanges())

	missing, err := service.Delete(project.ID, "owner")
	require.NoError(t, err)
	assert.True(t, missing.NotFound())
}

func TestResync(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("u1", true, 0))
	repo := newFakeProjectRepo(project)
	service, publisher := newProjectService(repo)

	require.NoError(t, service.Resync(project.ID, ""))
	require.Len(t, publisher.messages, 1)
	snapshot, isSync := publisher.messages[0].(events.ProjectSyncMessage)
	require.True(t, isSync)
	assert.Equal(t, project.Slug, snapshot.Slug)
	require.Len(t, snapshot.Members, 1)
	assert.True(t, snapshot.Members[0].IsOwner)

	require.NoError(t, service.Resync(uuid.Nil, project.Slug))
	assert.Len(t, publisher.messages, 2)

	require.NoError(t, service.Resync(uuid.Nil, "unknown-slug"))
	assert.Len(t, publisher.messages, 2)
}
