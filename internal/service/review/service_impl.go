package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
	"github.com/retentlabs/retent/internal/platform/logger"
	"github.com/retentlabs/retent/internal/store"
)

// Verify interface compliance at compile time.
var _ ReviewService = (*reviewServiceImpl)(nil)

type reviewServiceImpl struct {
	db           *sql.DB
	memoryStates store.MemoryStateStore
	reviewLog    store.ReviewLogStore
	params       store.ParameterStore
	srs          fsrs.Service
	logger       *slog.Logger
}

// NewReviewService creates the standard ReviewService implementation.
func NewReviewService(
	db *sql.DB,
	memoryStates store.MemoryStateStore,
	reviewLog store.ReviewLogStore,
	params store.ParameterStore,
	srs fsrs.Service,
	log *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if memoryStates == nil {
		panic("memoryStates cannot be nil")
	}
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if params == nil {
		panic("params cannot be nil")
	}
	if srs == nil {
		panic("srs cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &reviewServiceImpl{
		db:           db,
		memoryStates: memoryStates,
		reviewLog:    reviewLog,
		params:       params,
		srs:          srs,
		logger:       log.With(slog.String("component", "review_service")),
	}
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	rating domain.Rating,
	responseTime time.Duration,
) (*domain.CardMemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !rating.IsValid() {
		log.Warn("invalid rating submitted",
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()),
			slog.Int("rating", int(rating)))
		return nil, ErrInvalidRating
	}

	now := time.Now().UTC()

	weights, err := s.learnerParameters(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	var updated *domain.CardMemoryState
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		states := s.memoryStates.WithTx(tx)
		events := s.reviewLog.WithTx(tx)

		state, err := states.Get(ctx, learnerID, cardID)
		if err != nil {
			if !errors.Is(err, store.ErrMemoryStateNotFound) {
				return fmt.Errorf("failed to get memory state: %w", err)
			}
			state, err = domain.NewCardMemoryState(learnerID, cardID, now)
			if err != nil {
				return fmt.Errorf("failed to create memory state: %w", err)
			}
		}

		next, event, err := s.srs.Schedule(state, rating, weights, now)
		if err != nil {
			return fmt.Errorf("failed to schedule review: %w", err)
		}

		event.ID = uuid.New()
		event.ResponseTime = responseTime

		if err := states.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save memory state: %w", err)
		}
		if err := events.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to append review event: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		// Model-layer errors surface unchanged; data-quality bugs must
		// be loud.
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidRating) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("card_id", cardID.String()))
		return nil, &ServiceError{Operation: "submit_review", Message: "transaction failed", Err: err}
	}

	log.Debug("processed review",
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("rating", rating.String()),
		slog.Float64("stability", updated.Stability),
		slog.Float64("difficulty", updated.Difficulty),
		slog.String("state", string(updated.State)),
		slog.Time("due_at", updated.DueAt))

	return updated, nil
}

// NextDueCard implements ReviewService.NextDueCard.
func (s *reviewServiceImpl) NextDueCard(ctx context.Context, learnerID uuid.UUID) (*domain.CardMemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.memoryStates.ListDue(ctx, learnerID, time.Now().UTC(), 1)
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, &ServiceError{Operation: "next_due_card", Message: "store query failed", Err: err}
	}
	if len(due) == 0 {
		return nil, ErrNoCardsDue
	}
	return &due[0], nil
}

// PreviewSchedule implements ReviewService.PreviewSchedule.
func (s *reviewServiceImpl) PreviewSchedule(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (map[domain.Rating]*domain.CardMemoryState, error) {
	state, err := s.memoryStates.Get(ctx, learnerID, cardID)
	if err != nil {
		if errors.Is(err, store.ErrMemoryStateNotFound) {
			return nil, ErrCardStateNotFound
		}
		return nil, &ServiceError{Operation: "preview_schedule", Message: "store query failed", Err: err}
	}

	weights, err := s.learnerParameters(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return s.srs.Preview(state, weights, time.Now().UTC())
}

// learnerParameters loads the learner's committed vector, falling back
// to the population defaults for learners the optimizer has not touched
// yet.
func (s *reviewServiceImpl) learnerParameters(ctx context.Context, learnerID uuid.UUID) (fsrs.Parameters, error) {
	current, err := s.params.Get(ctx, learnerID)
	if err != nil {
		if errors.Is(err, store.ErrParametersNotFound) {
			return fsrs.DefaultParameters, nil
		}
		return fsrs.Parameters{}, &ServiceError{
			Operation: "load_parameters", Message: "store query failed", Err: err,
		}
	}
	return current.Weights, nil
}
