package fsrs

import (
	"fmt"
	"time"

	"github.com/retentlabs/retent/internal/domain"
)

// SchedulerConfig configures a Scheduler. Zero values produce the
// documented defaults.
type SchedulerConfig struct {
	DesiredRetention float64         // zero -> 0.9
	LearningSteps    []time.Duration // nil -> [1m, 10m]; empty -> no steps
	RelearningSteps  []time.Duration // nil -> [10m]; empty -> no steps
	MaximumInterval  int             // zero -> 36500 days
}

// Scheduler drives the card scheduling state machine on top of the
// forgetting-curve model. It is immutable after construction and safe
// for concurrent use.
type Scheduler struct {
	model            *Model
	desiredRetention float64
	learningSteps    []time.Duration
	relearningSteps  []time.Duration
	maximumInterval  int
}

// NewScheduler creates a Scheduler from a validated parameter vector and
// config. Zero-value config fields are filled with defaults; invalid
// values return an error.
func NewScheduler(w Parameters, cfg SchedulerConfig) (*Scheduler, error) {
	model, err := NewModel(w)
	if err != nil {
		return nil, err
	}

	dr := cfg.DesiredRetention
	if dr == 0 {
		dr = 0.9
	}
	if dr <= 0 || dr >= 1 {
		return nil, fmt.Errorf("%w: desired retention %f out of range (0, 1)",
			domain.ErrInvalidInput, dr)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 1 {
		return nil, fmt.Errorf("%w: maximum interval %d must be positive",
			domain.ErrInvalidInput, maxIvl)
	}

	ls := cfg.LearningSteps
	if ls == nil {
		ls = []time.Duration{time.Minute, 10 * time.Minute}
	}
	rs := cfg.RelearningSteps
	if rs == nil {
		rs = []time.Duration{10 * time.Minute}
	}

	return &Scheduler{
		model:            model,
		desiredRetention: dr,
		learningSteps:    ls,
		relearningSteps:  rs,
		maximumInterval:  maxIvl,
	}, nil
}

// Model returns the underlying forgetting-curve model.
func (s *Scheduler) Model() *Model {
	return s.model
}

// ReviewCard processes a rating for the card at the given time. It
// returns the updated memory state and the review event to append to the
// learner's log. The input state is not mutated.
func (s *Scheduler) ReviewCard(
	state *domain.CardMemoryState,
	rating domain.Rating,
	now time.Time,
) (*domain.CardMemoryState, *domain.ReviewEvent, error) {
	if state == nil {
		return nil, nil, fmt.Errorf("%w: nil memory state", domain.ErrInvalidInput)
	}
	if !rating.IsValid() {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}

	next := state.Clone()

	var elapsedDays float64
	if !next.LastReview.IsZero() {
		elapsedDays = now.Sub(next.LastReview).Hours() / 24.0
		if elapsedDays < 0 {
			return nil, nil, fmt.Errorf("%w: review at %v precedes last review %v",
				domain.ErrInvalidInput, now, next.LastReview)
		}
	}
	var scheduledDays float64
	if !next.LastReview.IsZero() {
		scheduledDays = next.DueAt.Sub(next.LastReview).Hours() / 24.0
		if scheduledDays < 0 {
			scheduledDays = 0
		}
	}

	stabilityBefore := next.Stability
	difficultyBefore := next.Difficulty

	if err := s.updateMemory(next, rating, elapsedDays); err != nil {
		return nil, nil, err
	}

	interval, err := s.transition(next, rating)
	if err != nil {
		return nil, nil, err
	}

	next.DueAt = now.Add(interval)
	next.LastReview = now
	next.ReviewCount++
	next.UpdatedAt = now

	event := &domain.ReviewEvent{
		LearnerID:        next.LearnerID,
		CardID:           next.CardID,
		Rating:           rating,
		ElapsedDays:      elapsedDays,
		ScheduledDays:    scheduledDays,
		StabilityBefore:  stabilityBefore,
		StabilityAfter:   next.Stability,
		DifficultyBefore: difficultyBefore,
		DifficultyAfter:  next.Difficulty,
		ReviewedAt:       now,
	}

	return next, event, nil
}

// Retrievability returns the card's current recall probability. Cards
// never reviewed have no memory trace and report 0.
func (s *Scheduler) Retrievability(state *domain.CardMemoryState, now time.Time) (float64, error) {
	if state == nil || state.LastReview.IsZero() || state.Stability <= 0 {
		return 0, nil
	}
	elapsed := now.Sub(state.LastReview).Hours() / 24.0
	if elapsed < 0 {
		elapsed = 0
	}
	return s.model.Retrievability(elapsed, state.Stability)
}

// updateMemory applies the forgetting-curve model to the card's
// stability and difficulty.
func (s *Scheduler) updateMemory(c *domain.CardMemoryState, rating domain.Rating, elapsedDays float64) error {
	if c.State == domain.CardStateNew {
		stability, err := s.model.InitialStability(rating)
		if err != nil {
			return err
		}
		difficulty, err := s.model.InitialDifficulty(rating)
		if err != nil {
			return err
		}
		c.Stability = stability
		c.Difficulty = difficulty
		return nil
	}

	r, err := s.model.Retrievability(elapsedDays, c.Stability)
	if err != nil {
		return err
	}
	stability, err := s.model.NextStability(rating, c.Stability, c.Difficulty, r)
	if err != nil {
		return err
	}
	difficulty, err := s.model.NextDifficulty(rating, c.Difficulty)
	if err != nil {
		return err
	}
	c.Stability = stability
	c.Difficulty = difficulty
	return nil
}

// transition applies the state machine and returns the next interval.
func (s *Scheduler) transition(c *domain.CardMemoryState, rating domain.Rating) (time.Duration, error) {
	switch c.State {
	case domain.CardStateNew:
		// Easy graduates straight to Review; every other rating enters
		// the learning sequence.
		if rating == domain.Easy {
			return s.graduate(c)
		}
		c.State = domain.CardStateLearning
		c.Step = 0
		if len(s.learningSteps) == 0 {
			return s.graduate(c)
		}
		return s.learningSteps[0], nil

	case domain.CardStateLearning:
		return s.stepThrough(c, rating, s.learningSteps)

	case domain.CardStateRelearning:
		return s.stepThrough(c, rating, s.relearningSteps)

	case domain.CardStateReview:
		if rating == domain.Again && len(s.relearningSteps) > 0 {
			// The lapse formula has already reset stability; the reduced
			// value carries through relearning as the penalty.
			c.State = domain.CardStateRelearning
			c.Step = 0
			return s.relearningSteps[0], nil
		}
		return s.reviewInterval(c)

	default:
		return 0, fmt.Errorf("%w: card state %q", domain.ErrInvalidInput, c.State)
	}
}

// stepThrough advances a card within its learning or relearning steps.
// A lapse restarts the sequence; a success on the final step graduates.
func (s *Scheduler) stepThrough(c *domain.CardMemoryState, rating domain.Rating, steps []time.Duration) (time.Duration, error) {
	if len(steps) == 0 || c.Step >= len(steps) {
		return s.graduate(c)
	}

	switch rating {
	case domain.Again:
		c.Step = 0
		return steps[0], nil

	case domain.Hard:
		// Hard holds the card at its current step, splitting the
		// difference with the next step when one exists.
		if c.Step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2, nil
		}
		if c.Step == 0 {
			return time.Duration(float64(steps[0]) * 1.5), nil
		}
		return steps[c.Step], nil

	case domain.Good:
		next := c.Step + 1
		if next >= len(steps) {
			return s.graduate(c)
		}
		c.Step = next
		return steps[next], nil

	default: // Easy
		return s.graduate(c)
	}
}

// graduate moves the card to steady-state Review and derives its
// interval from stability.
func (s *Scheduler) graduate(c *domain.CardMemoryState) (time.Duration, error) {
	c.State = domain.CardStateReview
	c.Step = 0
	return s.reviewInterval(c)
}

func (s *Scheduler) reviewInterval(c *domain.CardMemoryState) (time.Duration, error) {
	c.State = domain.CardStateReview
	c.Step = 0
	days, err := s.model.NextInterval(c.Stability, s.desiredRetention, s.maximumInterval)
	if err != nil {
		return 0, err
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
