package api

import (
	"encoding/json"
	"net/http"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"github.com/craftfolio/project-service/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type memberHandler struct {
	responder Responder
	logger    zerolog.Logger
	members   *services.ProjectMemberService
}

func newMemberHandler(members *services.ProjectMemberService) memberHandler {
	logger := log.With().Str("handlerName", "memberHandler").Logger()

	return memberHandler{
		responder: NewResponder(logger),
		logger:    logger,
		members:   members,
	}
}

func parseMemberID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid memberID")
	}
	return id, nil
}

func (h memberHandler) getMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.members.Get(projectID, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h memberHandler) addMember() http.HandlerFunc {
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

		result, err := h.members.Add(projectID, req.UserID, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusCreated, result)
	}
}

func (h memberHandler) updateMemberRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		memberID, err := parseMemberID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.members.UpdateRole(projectID, memberID, req.Role, userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h memberHandler) updateMemberPermissions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		memberID, err := parseMemberID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req struct {
			Permissions uint64 `json:"permissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		result, err := h.members.UpdatePermissions(projectID, memberID, models.Permissions(req.Permissions), userIDFromCtx(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}

func (h memberHandler) deleteMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		userID := chi.URLParam(r, "userID")
		if userID == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing userID"))
			return
		}

		result, err := h.members.Delete(projectID, userID, userIDFromCtx(r.Context()), false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		writeResult(h.responder, w, http.StatusOK, result)
	}
}
