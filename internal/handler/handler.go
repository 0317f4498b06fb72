// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lectio/lectio/internal/handler/dto"
	"github.com/lectio/lectio/internal/middleware"
)

// ContentTypeJSON is sent on every JSON response.
const ContentTypeJSON = "application/json; charset=UTF-8"

// Handler serves the service-level endpoints.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Hello reports the service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Lectio reading club API",
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do.
		_ = err
	}
}

// writeMessage writes a {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.MessageResponse{Message: message})
}

// writeNoContent writes a bodyless 204.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs an unexpected error with the request id.
func logFailure(logger *slog.Logger, r *http.Request, msg string, err error) {
	logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
}

// logRejection logs an expected conflict at debug level.
func logRejection(logger *slog.Logger, r *http.Request, msg string, err error) {
	logger.DebugContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"reason", err,
	)
}
