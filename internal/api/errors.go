package api

import (
	"errors"
	"net/http"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/service/review"
	"github.com/retentlabs/retent/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, review.ErrCardStateNotFound),
		errors.Is(err, store.ErrMemoryStateNotFound),
		errors.Is(err, store.ErrParametersNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrConcurrentOptimization),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrValidationFailed),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not enough review history to analyze
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity

	// Special cases
	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrCardStateNotFound),
		errors.Is(err, store.ErrMemoryStateNotFound):
		return "Card memory state not found"

	case errors.Is(err, store.ErrParametersNotFound):
		return "Learner parameters not found"

	case errors.Is(err, domain.ErrConcurrentOptimization),
		errors.Is(err, store.ErrVersionConflict):
		return "A concurrent optimization committed first"

	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be between 1 (Again) and 4 (Easy)"

	case errors.Is(err, domain.ErrInvalidInput):
		return "Invalid review input"

	case errors.Is(err, domain.ErrValidationFailed):
		return "Entity failed validation"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrInsufficientData):
		return "Not enough review history to analyze"

	default:
		return "An unexpected error occurred"
	}
}
