package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewEvent.
var (
	ErrEmptyEventLearnerID = errors.New("review event learner ID cannot be empty")
	ErrEmptyEventCardID    = errors.New("review event card ID cannot be empty")
	ErrNegativeElapsed     = errors.New("elapsed days cannot be negative")
)

// ReviewEvent is one immutable entry in a learner's review log. The
// ordered sequence of events per learner is the sole input to the
// performance analyzer; events are append-only and never mutated, and
// all derived metrics are recomputed from the log rather than stored.
type ReviewEvent struct {
	ID               uuid.UUID     `json:"id"`
	LearnerID        uuid.UUID     `json:"learner_id"`
	CardID           uuid.UUID     `json:"card_id"`
	Rating           Rating        `json:"rating"`
	ElapsedDays      float64       `json:"elapsed_days"`   // time since previous review, >= 0
	ScheduledDays    float64       `json:"scheduled_days"` // interval that had been predicted
	StabilityBefore  float64       `json:"stability_before"`
	StabilityAfter   float64       `json:"stability_after"`
	DifficultyBefore float64       `json:"difficulty_before"`
	DifficultyAfter  float64       `json:"difficulty_after"`
	ResponseTime     time.Duration `json:"response_time"`
	ReviewedAt       time.Time     `json:"reviewed_at"`
}

// Validate checks a review event before it is appended to the log.
func (e *ReviewEvent) Validate() error {
	if e.LearnerID == uuid.Nil {
		return ErrEmptyEventLearnerID
	}
	if e.CardID == uuid.Nil {
		return ErrEmptyEventCardID
	}
	if !e.Rating.IsValid() {
		return ErrInvalidRating
	}
	if e.ElapsedDays < 0 {
		return ErrNegativeElapsed
	}
	return nil
}
