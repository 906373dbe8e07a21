package services

import (
	"strings"
	"testing"

	"github.com/craftfolio/project-service/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDetails(t *testing.T) {
	repo := newFakeProjectRepo()
	service, _ := newProjectService(repo)

	valid := ProjectDetails{Name: "My Project!", Slug: "my-project", Category: models.CategoryMusic}
	errors, err := service.validateDetails(valid, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, errors)

	cases := []struct {
		name    string
		details ProjectDetails
		field   string
	}{
		{"empty name", ProjectDetails{Slug: "my-project", Category: models.CategoryArt}, "name"},
		{"name too short", ProjectDetails{Name: "ab", Slug: "my-project", Category: models.CategoryArt}, "name"},
		{"name too long", ProjectDetails{Name: strings.Repeat("a", 33), Slug: "my-project", Category: models.CategoryArt}, "name"},
		{"empty slug", ProjectDetails{Name: "My Project", Category: models.CategoryArt}, "slug"},
		{"uppercase slug", ProjectDetails{Name: "My Project", Slug: "My-Project", Category: models.CategoryArt}, "slug"},
		{"summary too short", ProjectDetails{Name: "My Project", Slug: "my-project", Summary: strPtr("too short"), Category: models.CategoryArt}, "summary"},
		{"zero category", ProjectDetails{Name: "My Project", Slug: "my-project", Category: models.CategoryNone}, "category"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errors, err := service.validateDetails(tc.details, uuid.Nil)
			require.NoError(t, err)
			assert.Contains(t, errors, tc.field)
		})
	}
}

func TestValidateDetailsSlugConflict(t *testing.T) {
	// A draft holds its slug even though it is invisible to the public.
	existing := projectWith(models.ProjectStatusDraft, memberWith("someone-else", true, 0))
	repo := newFakeProjectRepo(existing)
	service, _ := newProjectService(repo)

	errors, err := service.validateDetails(ProjectDetails{
		Name:     "Another Project",
		Slug:     existing.Slug,
		Category: models.CategoryGame,
	}, uuid.Nil)
	require.NoError(t, err)
	assert.Contains(t, errors, "slug")

	errors, err = service.validateDetails(ProjectDetails{
		Name:     "Same Project",
		Slug:     existing.Slug,
		Category: models.CategoryGame,
	}, existing.ID)
	require.NoError(t, err)
	assert.Empty(t, errors)
}

func TestValidateSummaryBounds(t *testing.T) {
	repo := newFakeProjectRepo()
	service, _ := newProjectService(repo)

	okSummary := strings.Repeat("a", 32)
	errors, err := service.validateDetails(ProjectDetails{
		Name: "My Project", Slug: "my-project", Summary: &okSummary, Category: models.CategoryArt,
	}, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, errors)

	longSummary := strings.Repeat("a", 129)
	errors, err = service.validateDetails(ProjectDetails{
		Name: "My Project", Slug: "my-project", Summary: &longSummary, Category: models.CategoryArt,
	}, uuid.Nil)
	require.NoError(t, err)
	assert.Contains(t, errors, "summary")
}

func TestValidateTags(t *testing.T) {
	assert.Empty(t, validateTags([]string{"golang", "web-dev"}))
	assert.Contains(t, validateTags([]string{"a"}), "tags.0")
	assert.Contains(t, validateTags([]string{"UPPER"}), "tags.0")
	assert.Contains(t, validateTags([]string{"with space"}), "tags.0")
	assert.Contains(t, validateTags([]string{"ok", "ok", "ok", "ok", "ok", "ok"}), "tags")
}

func TestCheckLinkURL(t *testing.T) {
	assert.Empty(t, checkLinkURL("https://example.com/path"))
	assert.NotEmpty(t, checkLinkURL(""))
	assert.NotEmpty(t, checkLinkURL("http://example.com"))
	assert.NotEmpty(t, checkLinkURL("example.com"))
	assert.NotEmpty(t, checkLinkURL("/relative/path"))
	assert.NotEmpty(t, checkLinkURL("https://example.com/"+strings.Repeat("a", 260)))
}

func TestValidateRole(t *testing.T) {
	assert.Empty(t, validateRole("Maintainer"))
	assert.Contains(t, validateRole("ab"), "role")
	assert.Contains(t, validateRole(strings.Repeat("a", 17)), "role")
}

func TestValidateImage(t *testing.T) {
	assert.Empty(t, validateImage(ImageUpload{Data: make([]byte, 2048), ContentType: "image/jpeg"}))
	assert.Contains(t, validateImage(ImageUpload{Data: make([]byte, 512), ContentType: "image/png"}), "image")
	assert.Contains(t, validateImage(ImageUpload{Data: make([]byte, 3<<20), ContentType: "image/png"}), "image")
	assert.Contains(t, validateImage(ImageUpload{Data: make([]byte, 2048), ContentType: "application/pdf"}), "image")
}
