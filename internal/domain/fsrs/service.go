package fsrs

import (
	"time"

	"github.com/retentlabs/retent/internal/domain"
)

// Service is the scheduling entry point consumed by the review service.
// Parameter vectors are per learner, so they are passed per call rather
// than fixed at construction; the step and retention configuration is
// shared across learners.
type Service interface {
	// Schedule computes the card's next memory state and the review
	// event for the given rating, using the learner's committed
	// parameter vector.
	Schedule(
		state *domain.CardMemoryState,
		rating domain.Rating,
		params Parameters,
		now time.Time,
	) (*domain.CardMemoryState, *domain.ReviewEvent, error)

	// Preview returns the outcome of each possible rating without
	// committing anything, for "show me the intervals" UIs.
	Preview(
		state *domain.CardMemoryState,
		params Parameters,
		now time.Time,
	) (map[domain.Rating]*domain.CardMemoryState, error)
}

type defaultService struct {
	cfg SchedulerConfig
}

// NewService creates the standard Service implementation with the given
// scheduler configuration.
func NewService(cfg SchedulerConfig) Service {
	return &defaultService{cfg: cfg}
}

func (s *defaultService) Schedule(
	state *domain.CardMemoryState,
	rating domain.Rating,
	params Parameters,
	now time.Time,
) (*domain.CardMemoryState, *domain.ReviewEvent, error) {
	sched, err := NewScheduler(params, s.cfg)
	if err != nil {
		return nil, nil, err
	}
	return sched.ReviewCard(state, rating, now)
}

func (s *defaultService) Preview(
	state *domain.CardMemoryState,
	params Parameters,
	now time.Time,
) (map[domain.Rating]*domain.CardMemoryState, error) {
	sched, err := NewScheduler(params, s.cfg)
	if err != nil {
		return nil, err
	}

	result := make(map[domain.Rating]*domain.CardMemoryState, 4)
	for _, r := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		next, _, err := sched.ReviewCard(state, r, now)
		if err != nil {
			return nil, err
		}
		result[r] = next
	}
	return result, nil
}
