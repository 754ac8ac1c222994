package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/event-planner-api/internal/domain"
)

const msgInternal = "Internal server error"

// statusFor maps a domain error kind to its HTTP status. ok is false for
// errors that carry no kind.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, true
	}
	return 0, false
}

// writeServiceError answers with the client-safe message of a domain error,
// or a generic 500 for anything else.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, ok := statusFor(err)
	msg, hasMsg := domain.Message(err)
	if !ok || !hasMsg {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeError(w, status, msg)
}
