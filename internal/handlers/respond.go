package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/authz"
	"github.com/ukydev/bus-maintenance/internal/middleware"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindInvalidTransition: http.StatusConflict,
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindUnexpected:        http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.LoggerFromContext(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// writeError replies with the classified error. Unexpected errors keep their
// detail out of the body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		middleware.LoggerFromContext(r.Context()).WithError(err).Error("Unexpected error")
	}
	middleware.WriteError(w, r, StatusFor(err), string(kind), apperr.PublicMessage(err))
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.Validation("", "failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("", "invalid JSON")
	}
	return nil
}

func actorFrom(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "user context not found")
	}
	return actor, ok
}
