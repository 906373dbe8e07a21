package api

import (
	"github.com/craftfolio/project-service/database"
	"github.com/craftfolio/project-service/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, projects *services.ProjectService, members *services.ProjectMemberService, links *services.ProjectLinkService) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(projects, db.ProjectTagRepo()),
		memberHandler:  newMemberHandler(members),
		linkHandler:    newLinkHandler(links),
	}
}
