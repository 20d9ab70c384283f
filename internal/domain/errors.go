package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidInput is returned when a model function receives malformed
	// numeric arguments (NaN, negative elapsed days, out-of-domain state).
	// The call is fatal and must not be retried: silently clamping bad
	// input would corrupt downstream scheduling.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData is returned when a learner's review log is too
	// short to analyze. Callers should skip optimization; this is not a
	// user-facing failure.
	ErrInsufficientData = errors.New("insufficient review data")

	// ErrValidationFailed is returned when a candidate parameter vector is
	// out of domain. The commit is aborted and the prior vector remains
	// authoritative.
	ErrValidationFailed = errors.New("parameter validation failed")

	// ErrConcurrentOptimization is returned when a parameter commit loses
	// the compare-and-set race against another optimization pass for the
	// same learner. The caller may retry the whole pass once.
	ErrConcurrentOptimization = errors.New("concurrent optimization detected")

	// ErrInvalidRating is returned when a rating is outside the 1-4 scale.
	ErrInvalidRating = errors.New("invalid rating")
)
