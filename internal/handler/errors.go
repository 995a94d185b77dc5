package handler

import (
	"errors"
	"net/http"

	"github.com/gatherpoint/gatherpoint/internal/service"
)

// writeServiceError translates a service error into a stable HTTP outcome.
// Centralized so every handler reports the same code for the same failure:
// a caller can always distinguish "already joined" from "event full" from
// "event vanished".
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	// Not found → 404
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	// Business conflicts → 409
	case errors.Is(err, service.ErrEventFull),
		errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, service.ErrTitleTaken),
		errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())

	// Authorization → 403, authentication → 401
	case errors.Is(err, service.ErrNotCreator):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	// Invalid input → 400
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrDateRequired),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrCapacityTooBig),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())

	// Store contention after bounded retries → 503
	case errors.Is(err, service.ErrContention):
		writeError(w, http.StatusServiceUnavailable, service.ErrContention.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
