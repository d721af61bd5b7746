package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// writeDomainError maps a service error to the JSON envelope. Unknown errors
// are logged and surfaced as 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var batchErr *domain.BatchError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrAttendeeLimitReached):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "attendee limit reached")
	case errors.Is(err, domain.ErrDuplicateInvitation):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invitation already exists")
	case errors.As(err, &batchErr):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict,
			batchErr.Reason+": "+strings.Join(batchErr.FailedInviteeIDs, ", "))
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
