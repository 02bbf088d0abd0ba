package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForEngineError maps well-known engine errors to HTTP status codes.
func statusForEngineError(err error) int {
	switch {
	case engine.IsUnknownModel(err):
		return http.StatusNotFound
	case engine.IsRegistrationRejected(err):
		return http.StatusConflict
	case engine.IsBadOutputKind(err):
		return http.StatusUnprocessableEntity
	case engine.IsWaitTimeout(err):
		return http.StatusGatewayTimeout
	case engine.IsCancelled(err):
		return http.StatusConflict
	case engine.IsClosed(err):
		return http.StatusServiceUnavailable
	case engine.IsStageFailure(err):
		return http.StatusBadGateway
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error, lvl LogLevel, start time.Time) {
	status := statusForEngineError(err)
	writeJSONError(w, status, err.Error())
	logEnd(r, lvl, status, start, err)
}
