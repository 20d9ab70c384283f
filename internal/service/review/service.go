// Package review exposes the review-submission service: it drives the
// scheduling state machine for a single card review and appends the
// resulting event to the learner's immutable review log, atomically.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
)

// ReviewService processes card reviews with the spaced-repetition
// scheduling model.
type ReviewService interface {
	// SubmitReview applies a rating to a card, persists the new memory
	// state, and appends the review event — all in one transaction. A
	// card never seen before starts from the New state.
	//
	// Returns ErrInvalidRating for ratings outside the 1-4 scale.
	// Model-layer errors (domain.ErrInvalidInput) are propagated, never
	// swallowed: bad elapsed-time data is a data-quality bug that must
	// not silently mis-schedule a card.
	SubmitReview(
		ctx context.Context,
		learnerID, cardID uuid.UUID,
		rating domain.Rating,
		responseTime time.Duration,
	) (*domain.CardMemoryState, error)

	// NextDueCard returns the learner's most overdue card, or
	// ErrNoCardsDue when nothing is due.
	NextDueCard(ctx context.Context, learnerID uuid.UUID) (*domain.CardMemoryState, error)

	// PreviewSchedule returns the would-be outcome of each rating for a
	// card without committing anything.
	PreviewSchedule(
		ctx context.Context,
		learnerID, cardID uuid.UUID,
	) (map[domain.Rating]*domain.CardMemoryState, error)
}

// Common error types for ReviewService.
var (
	// ErrNoCardsDue indicates the learner has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardStateNotFound indicates the card has no memory state yet.
	ErrCardStateNotFound = errors.New("card memory state not found")

	// ErrInvalidRating indicates an out-of-scale rating was submitted.
	ErrInvalidRating = errors.New("invalid rating")
)

// ServiceError wraps review-service failures with operation context so
// consumers can differentiate them with errors.As instead of string
// matching.
type ServiceError struct {
	Operation string // e.g. "submit_review"
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
