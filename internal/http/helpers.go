package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"frugal/internal/core"
	"frugal/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto the HTTP status contract:
// 400 for validation, bad time windows, duplicates and malformed ids,
// 404 for resolved-but-absent records, 500 otherwise.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr,
		})
	case errors.Is(err, core.ErrInvalidTimeRange),
		errors.Is(err, core.ErrDuplicateActiveGoal),
		errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, services.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, core.ErrHabitNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, services.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
