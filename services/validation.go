package services

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/google/uuid"
)

// Field patterns. Name-like fields share an extended punctuation charset,
// slugs and tags are deliberately narrow because they end up in URLs and
// search filters.
var (
	namePattern     = regexp.MustCompile(`^[\w\s.,!?'"()&+\-*/\\:;@%<>=|{}\[\]^~]{3,32}$`)
	summaryPattern  = regexp.MustCompile(`^[\w\s.,!?'"()&+\-*/\\:;@%<>=|{}\[\]^~]{32,128}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]{3,32}$`)
	tagPattern      = regexp.MustCompile(`^[a-z-]{2,24}$`)
	linkNamePattern = regexp.MustCompile(`^[\w\s.,!?'"()&+\-*/\\:;@%<>=|{}\[\]^~]{2,16}$`)
	rolePattern     = regexp.MustCompile(`^[\w\s.,!?'"()&+\-*/\\:;@%<>=|{}\[\]^~]{3,16}$`)
)

const (
	maxTags      = 5
	maxLinks     = 10
	maxMembers   = 20
	maxURLLength = 256
	minImageSize = 1 << 10
	maxImageSize = 2 << 20
)

// fieldErrors collects validation failures keyed by request field. Violations
// across fields accumulate; rules within one field short-circuit.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) merge(other fieldErrors) {
	for field, messages := range other {
		f[field] = append(f[field], messages...)
	}
}

// validateDetails checks the fields shared by Create and UpdateDetails. Slug
// uniqueness uses a force lookup so unpublished projects hold their slug too;
// currentID exempts the project from colliding with itself.
func (s *ProjectService) validateDetails(data ProjectDetails, currentID uuid.UUID) (fieldErrors, error) {
	errors := fieldErrors{}

	switch {
	case data.Name == "":
		errors.add("name", "Name is required")
	case !namePattern.MatchString(data.Name):
		errors.add("name", "Name must be between 3 and 32 characters and may only contain letters, digits, spaces and common punctuation")
	}

	switch {
	case data.Slug == "":
		errors.add("slug", "Slug is required")
	case !slugPattern.MatchString(data.Slug):
		errors.add("slug", "Slug must be between 3 and 32 characters and may only contain lowercase letters, digits and hyphens")
	default:
		existing, err := s.projects.FindBySlug(data.Slug, "", true)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != currentID {
			errors.add("slug", "A project with this slug already exists")
		}
	}

	if data.Summary != nil && *data.Summary != "" && !summaryPattern.MatchString(*data.Summary) {
		errors.add("summary", "Summary must be between 32 and 128 characters and may only contain letters, digits, spaces and common punctuation")
	}

	if !data.Category.IsValid() {
		errors.add("category", "A project category is required")
	}

	return errors, nil
}

func validateTags(tags []string) fieldErrors {
	errors := fieldErrors{}
	if len(tags) > maxTags {
		errors.add("tags", fmt.Sprintf("A project can have at most %d tags", maxTags))
	}
	for i, tag := range tags {
		if !tagPattern.MatchString(tag) {
			errors.add(fmt.Sprintf("tags.%d", i), "Tags must be between 2 and 24 characters and may only contain lowercase letters and hyphens")
		}
	}
	return errors
}

func validateLinks(links []LinkInput) fieldErrors {
	errors := fieldErrors{}
	if len(links) > maxLinks {
		errors.add("links", fmt.Sprintf("A project can have at most %d links", maxLinks))
	}
	for i, link := range links {
		if !linkNamePattern.MatchString(link.Name) {
			errors.add(fmt.Sprintf("links.%d.name", i), "Link names must be between 2 and 16 characters and may only contain letters, digits, spaces and common punctuation")
		}
		if message := checkLinkURL(link.URL); message != "" {
			errors.add(fmt.Sprintf("links.%d.url", i), message)
		}
	}
	return errors
}

func checkLinkURL(raw string) string {
	if raw == "" {
		return "Link URL is required"
	}
	if len(raw) > maxURLLength {
		return fmt.Sprintf("Link URLs can be at most %d characters", maxURLLength)
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "Link URLs must be absolute"
	}
	if parsed.Scheme != "https" {
		return "Link URLs must use HTTPS"
	}
	return ""
}

func validateRole(role string) fieldErrors {
	errors := fieldErrors{}
	if !rolePattern.MatchString(role) {
		errors.add("role", "Roles must be between 3 and 16 characters and may only contain letters, digits, spaces and common punctuation")
	}
	return errors
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func validateImage(image ImageUpload) fieldErrors {
	errors := fieldErrors{}
	switch {
	case len(image.Data) < minImageSize:
		errors.add("image", "Images must be at least 1KB")
	case len(image.Data) > maxImageSize:
		errors.add("image", "Images can be at most 2MB")
	}
	if !allowedImageTypes[image.ContentType] {
		errors.add("image", "Images must be a JPEG, PNG, GIF or WebP")
	}
	return errors
}
