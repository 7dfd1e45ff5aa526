package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/pkg/logger"
)

// actorHeader attributes write operations to a staff member.
const actorHeader = "X-Actor-ID"

// statusFromError maps the service error taxonomy onto HTTP status
// codes. Anything unclassified is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrBusinessRule):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// newRequestContext starts request logging for a handler.
func newRequestContext(r *http.Request) *logger.RequestContext {
	return &logger.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		StartTime:  time.Now(),
	}
}

func writeJSONResponse(w http.ResponseWriter, log *logger.Logger, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error("Failed to encode JSON response", "error", err)
		}
	}
}

func writeErrorResponse(w http.ResponseWriter, log *logger.Logger, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode error response", "error", err)
	}
}

// writeServiceError classifies err, writes the response, and records
// the status on the request context.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, reqCtx *logger.RequestContext, err error) {
	statusCode := statusFromError(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		message = "internal server error"
	}
	writeErrorResponse(w, log, statusCode, message)
	reqCtx.StatusCode = statusCode
	log.LogResponse(reqCtx)
}

// parseRequestBody parses a JSON request body into target, rejecting
// unknown fields.
func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.NewValidation("invalid request body: %v", err)
	}
	return nil
}

// actorID reads the staff attribution header, falling back to a
// placeholder so created_by is never empty.
func actorID(r *http.Request) string {
	actor := strings.TrimSpace(r.Header.Get(actorHeader))
	if actor == "" {
		return "unknown"
	}
	return actor
}
