package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes wires the versioned API. Read endpoints accept anonymous
// viewers, everything that mutates requires authentication.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	r.Get("/health", healthHandler(startupTime))

	r.Route("/v1", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Public read endpoints, viewer resolved when a token is present
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.identify)

			r.Get("/projects", handlers.projectHandler.searchProjects())
			r.Get("/projects/batch", handlers.projectHandler.getProjectsByIDs())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Get("/projects/slug/{slug}", handlers.projectHandler.getProjectBySlug())
			r.Get("/projects/{projectID}/members", handlers.memberHandler.getMembers())
			r.Get("/tags", handlers.projectHandler.getTags())
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/users/{userID}/projects", handlers.projectHandler.getUserProjects())

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProjectDetails())
			r.Put("/projects/{projectID}/content", handlers.projectHandler.updateProjectContent())
			r.Put("/projects/{projectID}/tags", handlers.projectHandler.updateProjectTags())
			r.Put("/projects/{projectID}/status", handlers.projectHandler.updateProjectStatus())
			r.Put("/projects/{projectID}/ownership", handlers.projectHandler.updateProjectOwnership())
			r.Put("/projects/{projectID}/image", handlers.projectHandler.updateProjectImage())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

			r.Post("/projects/{projectID}/members", handlers.memberHandler.addMember())
			r.Put("/projects/{projectID}/members/{memberID}/role", handlers.memberHandler.updateMemberRole())
			r.Put("/projects/{projectID}/members/{memberID}/permissions", handlers.memberHandler.updateMemberPermissions())
			r.Delete("/projects/{projectID}/members/{userID}", handlers.memberHandler.deleteMember())

			r.Put("/projects/{projectID}/links", handlers.linkHandler.updateLinks())
		})
	})
}

func healthHandler(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthHandler").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteData(w, http.StatusOK, map[string]any{
			"status": "ok",
			"uptime": time.Since(startupTime).String(),
		})
	}
}
