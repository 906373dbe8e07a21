package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/services"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// envelope is the wire format shared by every response.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to handle errors before the status line goes out
	jsonData, err := json.Marshal(body)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteData wraps a successful payload in the response envelope.
func (r Responder) WriteData(w http.ResponseWriter, status int, data any) {
	r.writeJSON(w, status, envelope{Success: true, Data: data})
}

// WriteError converts an error into an enveloped error response. Errors that
// are not ApiErr are logged and masked as a generic 500.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.writeJSON(w, http.StatusInternalServerError, envelope{Message: "An unexpected error occurred"})
		return
	}

	body := envelope{Message: apiErr.Error()}
	if apiErr.Field != "" {
		body.Errors = map[string][]string{apiErr.Field: {apiErr.Error()}}
	}
	if apiErr.Cause != nil {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
	}
	r.writeJSON(w, apiErr.StatusCode, body)
}

// writeResult maps a service result onto the envelope. Successful results use
// the given status, missing projects become 404, validation failures and
// business rejections become 400. The result already matches the envelope
// shape, so it is written as-is.
func writeResult[T any](r Responder, w http.ResponseWriter, status int, result *services.Result[T]) {
	switch {
	case result.Success:
		r.writeJSON(w, status, result)
	case result.NotFound():
		r.writeJSON(w, http.StatusNotFound, result)
	default:
		r.writeJSON(w, http.StatusBadRequest, result)
	}
}
