package api

import (
	"encoding/json"
	"net/http"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/craftfolio/project-service/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type linkHandler struct {
	responder Responder
	logger    zerolog.Logger
	links     *services.ProjectLinkService
}

func newLinkHandler(links *services.ProjectLinkService) linkHandler {
	logger := log.With().Str("handlerName", "linkHandler").Logger()

	return linkHandler{
		responder: NewResponder(logger),
		logger:    logger,
		links:     links,
	}
}

type linkRequest struct {
	ID    *uuid.UUID      `json:"id"`
	Name  string          `json:"name"`
	URL   string          `json:"url"`
	Type  models.LinkType `json:"type"`
	Order uint16          `json:"order"`
}

// updateLinks replaces the project's link list wholesale.
func (h linkHandler) updateLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Links []linkRequest `json:"links"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		inputs := lo.Map(req.Links, func(link linkRequest, _ int) services.LinkInput {
			return services.LinkInput{
				ID:    link.ID,
				Name:  link.Name,
				URL:   link.URL,
				Type:  link.Type,
				Order: link.Order,
			}
		})

		result, err := h.links.UpdateLinks(projectID, inputs, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}
