package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardMemoryState(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("new card is due immediately", func(t *testing.T) {
		t.Parallel()
		state, err := NewCardMemoryState(uuid.New(), uuid.New(), now)
		require.NoError(t, err)

		assert.Equal(t, CardStateNew, state.State)
		assert.Equal(t, now, state.DueAt)
		assert.True(t, state.LastReview.IsZero())
		assert.Zero(t, state.ReviewCount)
	})

	t.Run("requires identifiers", func(t *testing.T) {
		t.Parallel()
		_, err := NewCardMemoryState(uuid.Nil, uuid.New(), now)
		assert.ErrorIs(t, err, ErrEmptyStateLearnerID)

		_, err = NewCardMemoryState(uuid.New(), uuid.Nil, now)
		assert.ErrorIs(t, err, ErrEmptyStateCardID)
	})
}

func TestCardMemoryStateValidate(t *testing.T) {
	t.Parallel()

	valid := func() *CardMemoryState {
		return &CardMemoryState{
			LearnerID:  uuid.New(),
			CardID:     uuid.New(),
			Stability:  5,
			Difficulty: 5,
			State:      CardStateReview,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(s *CardMemoryState)
		wantErr error
	}{
		{"valid review state", func(s *CardMemoryState) {}, nil},
		{
			"new card skips memory checks",
			func(s *CardMemoryState) { s.State = CardStateNew; s.Stability = 0; s.Difficulty = 0 },
			nil,
		},
		{
			"missing learner",
			func(s *CardMemoryState) { s.LearnerID = uuid.Nil },
			ErrEmptyStateLearnerID,
		},
		{
			"missing card",
			func(s *CardMemoryState) { s.CardID = uuid.Nil },
			ErrEmptyStateCardID,
		},
		{
			"unknown state",
			func(s *CardMemoryState) { s.State = CardState("suspended") },
			ErrInvalidCardState,
		},
		{
			"non-positive stability",
			func(s *CardMemoryState) { s.Stability = 0 },
			ErrInvalidStability,
		},
		{
			"difficulty below range",
			func(s *CardMemoryState) { s.Difficulty = 0.9 },
			ErrInvalidDifficulty,
		},
		{
			"difficulty above range",
			func(s *CardMemoryState) { s.Difficulty = 10.1 },
			ErrInvalidDifficulty,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := valid()
			tc.mutate(state)

			err := state.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCardMemoryStateClone(t *testing.T) {
	t.Parallel()

	original := &CardMemoryState{
		LearnerID:  uuid.New(),
		CardID:     uuid.New(),
		Stability:  5,
		Difficulty: 5,
		State:      CardStateReview,
	}

	clone := original.Clone()
	clone.Stability = 99
	clone.State = CardStateRelearning

	assert.Equal(t, 5.0, original.Stability)
	assert.Equal(t, CardStateReview, original.State)
}

func TestReviewEventValidate(t *testing.T) {
	t.Parallel()

	valid := func() *ReviewEvent {
		return &ReviewEvent{
			ID:          uuid.New(),
			LearnerID:   uuid.New(),
			CardID:      uuid.New(),
			Rating:      Good,
			ElapsedDays: 3,
			ReviewedAt:  time.Now().UTC(),
		}
	}

	assert.NoError(t, valid().Validate())

	e := valid()
	e.LearnerID = uuid.Nil
	assert.ErrorIs(t, e.Validate(), ErrEmptyEventLearnerID)

	e = valid()
	e.CardID = uuid.Nil
	assert.ErrorIs(t, e.Validate(), ErrEmptyEventCardID)

	e = valid()
	e.Rating = Rating(9)
	assert.ErrorIs(t, e.Validate(), ErrInvalidRating)

	e = valid()
	e.ElapsedDays = -1
	assert.ErrorIs(t, e.Validate(), ErrNegativeElapsed)
}
