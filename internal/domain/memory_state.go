package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CardState identifies where a card sits in the scheduling state machine.
type CardState string

// Possible card states. Cards move New -> Learning -> Review and cycle
// between Review and Relearning on lapses; there is no terminal state.
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// Common validation errors for CardMemoryState.
var (
	ErrEmptyStateLearnerID = errors.New("memory state learner ID cannot be empty")
	ErrEmptyStateCardID    = errors.New("memory state card ID cannot be empty")
	ErrInvalidStability    = errors.New("stability must be greater than 0")
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 10")
	ErrInvalidCardState    = errors.New("invalid card state")
)

// CardMemoryState tracks a learner's memory of a specific card: the
// stability/difficulty pair the forgetting-curve model operates on plus
// the scheduling state and next due time. Created on first exposure,
// mutated on every review, never deleted while the card exists.
type CardMemoryState struct {
	LearnerID  uuid.UUID `json:"learner_id"`
	CardID     uuid.UUID `json:"card_id"`
	Stability  float64   `json:"stability"`  // days until recall decays to desired retention
	Difficulty float64   `json:"difficulty"` // intrinsic resistance to stability growth, [1,10]
	State      CardState `json:"state"`
	Step       int       `json:"step"` // current learning/relearning step index
	DueAt      time.Time `json:"due_at"`
	LastReview time.Time `json:"last_review"` // zero for cards never reviewed
	ReviewCount int      `json:"review_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCardMemoryState creates the initial state for a card the learner has
// never seen. The card is due immediately.
func NewCardMemoryState(learnerID, cardID uuid.UUID, now time.Time) (*CardMemoryState, error) {
	state := &CardMemoryState{
		LearnerID:  learnerID,
		CardID:     cardID,
		Stability:  0, // seeded by the model on first review
		Difficulty: 0,
		State:      CardStateNew,
		DueAt:      now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if state.LearnerID == uuid.Nil {
		return nil, ErrEmptyStateLearnerID
	}
	if state.CardID == uuid.Nil {
		return nil, ErrEmptyStateCardID
	}

	return state, nil
}

// Validate checks the invariants on a reviewed card's state.
// New cards are exempt from the stability/difficulty checks because the
// model has not seeded them yet.
func (s *CardMemoryState) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptyStateLearnerID
	}
	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}

	switch s.State {
	case CardStateNew:
		return nil
	case CardStateLearning, CardStateReview, CardStateRelearning:
	default:
		return ErrInvalidCardState
	}

	if s.Stability <= 0 {
		return ErrInvalidStability
	}
	if s.Difficulty < 1 || s.Difficulty > 10 {
		return ErrInvalidDifficulty
	}

	return nil
}

// Clone returns a deep copy so scheduling can follow the immutable-update
// pattern: callers receive a new state rather than a mutated one.
func (s *CardMemoryState) Clone() *CardMemoryState {
	c := *s
	return &c
}
