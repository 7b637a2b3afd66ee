package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/bookstore/core"
)

const (
	unauthorizedMessage = "Unauthorized: A valid API key is required."
	serverErrorMessage  = "the server encountered a problem and could not process your request"
)

func (s *Server) logError(r *http.Request, err error) {
	s.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", requestIDFrom(r.Context())),
	)
}

// errorResponse writes {"message": message}, plus any extra fields.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, extra envelope) {
	body := envelope{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	if err := writeJSON(w, status, body, nil); err != nil {
		s.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and hides it from the client.
func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, serverErrorMessage, nil)
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found", nil)
}

func (s *Server) notFoundMessage(w http.ResponseWriter, r *http.Request, message string) {
	s.errorResponse(w, r, http.StatusNotFound, message, nil)
}

func (s *Server) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource", nil)
}

func (s *Server) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (s *Server) badRequestMessage(w http.ResponseWriter, r *http.Request, message string) {
	s.errorResponse(w, r, http.StatusBadRequest, message, nil)
}

func (s *Server) unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusUnauthorized, unauthorizedMessage, nil)
}

// failedValidationResponse writes a 422 carrying the per-field problems.
func (s *Server) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var fields core.FieldErrors
	if errors.As(err, &fields) {
		s.errorResponse(w, r, http.StatusUnprocessableEntity, "Missing or invalid fields.", envelope{"errors": fields})
		return
	}
	s.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
}

func (s *Server) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
}

// mutationErrorResponse maps the errors of a create operation.
func (s *Server) mutationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		s.unauthorizedResponse(w, r)
	case errors.Is(err, core.ErrValidation):
		s.failedValidationResponse(w, r, err)
	case errors.Is(err, core.ErrNotFound):
		s.notFoundMessage(w, r, err.Error())
	default:
		s.serverErrorResponse(w, r, err)
	}
}
