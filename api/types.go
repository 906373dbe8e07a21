package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	memberHandler  memberHandler
	linkHandler    linkHandler
}
