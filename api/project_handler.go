package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/craftfolio/project-service/database"
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/craftfolio/project-service/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxMultipartMemory = 4 << 20

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
	tagRepo   *database.ProjectTagRepo
}

func newProjectHandler(projects *services.ProjectService, tagRepo *database.ProjectTagRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		tagRepo:   tagRepo,
	}
}

// parseProjectID reads the projectID route parameter.
func parseProjectID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid projectID")
	}
	return id, nil
}

type projectDetailsRequest struct {
	Name     string                 `json:"name"`
	Slug     string                 `json:"slug"`
	Summary  *string                `json:"summary"`
	Category models.ProjectCategory `json:"category"`
}

func (req projectDetailsRequest) toDetails() services.ProjectDetails {
	return services.ProjectDetails{
		Name:     req.Name,
		Slug:     req.Slug,
		Summary:  req.Summary,
		Category: req.Category,
	}
}

type createProjectRequest struct {
	projectDetailsRequest
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

// searchProjects lists projects matching the query parameters, scoped to
// what the viewer may see.
func (h projectHandler) searchProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		search := database.ProjectSearch{
			Query:    q.Get("query"),
			Order:    database.ProjectOrder(q.Get("order")),
			UserID:   q.Get("userId"),
			ViewerID: userIDFromCtx(r.Context()),
		}
		if page, err := strconv.Atoi(q.Get("page")); err == nil {
			search.Page = page
		}
		if pageSize, err := strconv.Atoi(q.Get("pageSize")); err == nil {
			search.PageSize = pageSize
		} else {
			search.PageSize = 20
		}
		if tags := q.Get("tags"); tags != "" {
			search.Tags = strings.Split(tags, ",")
		}
		if categories := q.Get("categories"); categories != "" {
			for _, raw := range strings.Split(categories, ",") {
				category, err := strconv.Atoi(raw)
				if err != nil {
					h.responder.WriteError(w, errs.NewBadRequestError("invalid category filter"))
					return
				}
				search.Categories = append(search.Categories, models.ProjectCategory(category))
			}
		}

		page, err := h.projects.Search(search)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, http.StatusOK, page)
	}
}

// getProjectsByIDs resolves a comma-separated list of project ids to their
// visible subset.
func (h projectHandler) getProjectsByIDs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("ids")
		if raw == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing ids"))
			return
		}

		var ids []uuid.UUID
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(part)
			if err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("invalid project id"))
				return
			}
			ids = append(ids, id)
		}

		projects, err := h.projects.GetByIDs(ids, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, http.StatusOK, projects)
	}
}

func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.projects.GetByID(projectID, userIDFromCtx(r.Context()), false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h projectHandler) getProjectBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		result, err := h.projects.GetBySlug(slug, userIDFromCtx(r.Context()), false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

// getUserProjects lists every project of a user including drafts, so it is
// restricted to the user themselves.
func (h projectHandler) getUserProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID != userIDFromCtx(r.Context()) {
			h.responder.WriteError(w, errs.NewForbiddenError("you can only list your own projects"))
			return
		}

		projects, err := h.projects.GetByUserID(userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, http.StatusOK, projects)
	}
}

// createProject accepts either a JSON body or a multipart form with a "data"
// JSON part and an optional "image" file.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		var image *services.ImageUpload

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart body"))
				return
			}
			if err := json.Unmarshal([]byte(r.FormValue("data")), &req); err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
				return
			}

			file, header, err := r.FormFile("image")
			if err == nil {
				defer file.Close()
				data, err := io.ReadAll(file)
				if err != nil {
					h.responder.WriteError(w, errs.NewBadRequestError("failed to read image"))
					return
				}
				image = &services.ImageUpload{Data: data, ContentType: header.Header.Get("Content-Type")}
			}
		} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.projects.Create(services.CreateProject{
			ProjectDetails: req.toDetails(),
			Content:        req.Content,
			Tags:           req.Tags,
		}, image, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusCreated, result)
	}
}

func (h projectHandler) updateProjectDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req projectDetailsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.projects.UpdateDetails(projectID, req.toDetails(), userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h projectHandler) updateProjectContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Content *string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.projects.UpdateContent(projectID, req.Content, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h projectHandler) updateProjectTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Tags []string `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.projects.UpdateTags(projectID, req.Tags, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h projectHandler) updateProjectStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		status := models.ProjectStatus(strings.ToLower(req.Status))
		result, err := h.projects.UpdateStatus(projectID, status, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h projectHandler) updateProjectOwnership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.projects.UpdateOwnership(projectID, req.UserID, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

// updateProjectImage takes a multipart form with a single "image" file and
// hands it off for asynchronous storage.
func (h projectHandler) updateProjectImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart body"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("missing image file"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("failed to read image"))
			return
		}

		image := services.ImageUpload{Data: data, ContentType: header.Header.Get("Content-Type")}
		result, err := h.projects.UpdateImage(projectID, image, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusAccepted, result)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.projects.Delete(projectID, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

// getTags lists every known tag for typeahead suggestions.
func (h projectHandler) getTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, http.StatusOK, tags)
	}
}
