package services

import (
	"fmt"
	"testing"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkService(repo *fakeProjectRepo) *ProjectLinkService {
	return NewProjectLinkService(repo, &fakeLinkRepo{store: repo})
}

func TestUpdateLinksAuthorization(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft,
		memberWith("owner", true, 0),
		memberWith("viewer", false, models.PermissionsNone),
	)
	repo := newFakeProjectRepo(project)
	service := newLinkService(repo)

	_, err := service.UpdateLinks(project.ID, nil, "viewer")
	assert.True(t, errs.IsForbidden(err))
}

func TestUpdateLinksValidation(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("owner", true, 0))
	repo := newFakeProjectRepo(project)
	service := newLinkService(repo)

	result, err := service.UpdateLinks(project.ID, []LinkInput{
		{Name: "Website", URL: "http://example.com", Type: models.LinkTypeWebsite},
		{Name: "x", URL: "https://example.com", Type: models.LinkTypeOther},
	}, "owner")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors, "links.0.url")
	assert.Contains(t, result.Errors, "links.1.name")
	assert.NotContains(t, result.Errors, "links.1.url")
}

func TestUpdateLinksTooMany(t *testing.T) {
	project := projectWith(models.ProjectStatusDraft, memberWith("owner", true, 0))
	repo := newFakeProjectRepo(project)
	service := newLinkService(repo)

	var inputs []LinkInput
	for i := 0; i <= maxLinks; i++ {
		inputs = append(inputs, LinkInput{
			Name: fmt.Sprintf("Link %d", i),
			URL:  "https://example.com",
			Type: models.LinkTypeOther,
		})
	}

	result, err := service.UpdateLinks(project.ID, inputs, "owner")
	require.NoError(t, err)
	assert.Contains(t, result.Errors, "links")
}

func TestUpdateLinksReplace(t *testing.T) {
	existing := models.ProjectLink{
		ID:   models.NewID(),
		Name: "Docs",
		URL:  "https://docs.example.com",
		Type: models.LinkTypeDocumentation,
	}
	project := projectWith(models.ProjectStatusDraft, memberWith("owner", true, 0))
	existing.ProjectID = project.ID
	project.Links = []models.ProjectLink{existing}
	repo := newFakeProjectRepo(project)
	service := newLinkService(repo)

	result, err := service.UpdateLinks(project.ID, []LinkInput{
		{ID: &existing.ID, Name: "Docs v2", URL: "https://docs.example.com/v2", Type: models.LinkTypeDocumentation, Order: 1},
		{Name: "Source", URL: "https://github.com/example/project", Type: models.LinkTypeSourceCode, Order: 0},
	}, "owner")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Data, 2)

	// Ordered by display order, existing link updated in place.
	assert.Equal(t, "Source", result.Data[0].Name)
	assert.Equal(t, existing.ID, result.Data[1].ID)
	assert.Equal(t, "Docs v2", result.Data[1].Name)
	assert.Len(t, repo.projects[project.ID].Links, 2)
}

func TestUpdateLinksUnknownProject(t *testing.T) {
	repo := newFakeProjectRepo()
	service := newLinkService(repo)

	result, err := service.UpdateLinks(models.NewID(), nil, "owner")
	require.NoError(t, err)
	assert.True(t, result.NotFound())
}
