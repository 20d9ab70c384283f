package task

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
	"github.com/retentlabs/retent/internal/optimizer"
	"github.com/retentlabs/retent/internal/service/optimization"
	"github.com/retentlabs/retent/internal/store"
)

// sweepReviewLog stubs store.ReviewLogStore for sweep tests; only
// ListLearners matters here.
type sweepReviewLog struct {
	learners    []uuid.UUID
	learnersErr error
}

func (s *sweepReviewLog) Append(ctx context.Context, event *domain.ReviewEvent) error {
	return nil
}

func (s *sweepReviewLog) ListByLearner(
	ctx context.Context, learnerID uuid.UUID, since time.Time,
) ([]domain.ReviewEvent, error) {
	return nil, nil
}

func (s *sweepReviewLog) CountByLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *sweepReviewLog) ListLearners(ctx context.Context) ([]uuid.UUID, error) {
	return s.learners, s.learnersErr
}

func (s *sweepReviewLog) WithTx(tx *sql.Tx) store.ReviewLogStore { return s }

type sweepParams struct{}

func (sweepParams) Get(ctx context.Context, learnerID uuid.UUID) (*store.VersionedParameters, error) {
	return nil, store.ErrParametersNotFound
}

func (sweepParams) Create(
	ctx context.Context, learnerID uuid.UUID, weights fsrs.Parameters, now time.Time,
) error {
	return nil
}

func (sweepParams) CompareAndSet(
	ctx context.Context, learnerID uuid.UUID, version int64, weights fsrs.Parameters, now time.Time,
) error {
	return nil
}

type sweepRuns struct{}

func (sweepRuns) Create(ctx context.Context, run *domain.OptimizationRun) error { return nil }

func (sweepRuns) ListByLearner(
	ctx context.Context, learnerID uuid.UUID, limit int,
) ([]domain.OptimizationRun, error) {
	return nil, nil
}

func newSweepOrchestrator(t *testing.T, reviewLog store.ReviewLogStore) *optimization.Orchestrator {
	t.Helper()
	return optimization.NewOrchestrator(
		reviewLog, sweepParams{}, sweepRuns{},
		optimizer.New(optimizer.DefaultConfig()), nil, slog.Default())
}

func TestSweeperSweep(t *testing.T) {
	t.Parallel()

	t.Run("enqueues one task per learner", func(t *testing.T) {
		t.Parallel()
		reviewLog := &sweepReviewLog{learners: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
		queue := NewQueue(8, nil)
		defer queue.Close()

		s := NewSweeper(reviewLog, newSweepOrchestrator(t, reviewLog), queue, time.Hour, slog.Default())
		s.sweep()

		assert.Len(t, queue.GetChannel(), 3)
	})

	t.Run("no learners enqueues nothing", func(t *testing.T) {
		t.Parallel()
		reviewLog := &sweepReviewLog{}
		queue := NewQueue(8, nil)
		defer queue.Close()

		s := NewSweeper(reviewLog, newSweepOrchestrator(t, reviewLog), queue, time.Hour, slog.Default())
		s.sweep()

		assert.Empty(t, queue.GetChannel())
	})

	t.Run("listing failure enqueues nothing", func(t *testing.T) {
		t.Parallel()
		reviewLog := &sweepReviewLog{learnersErr: errors.New("connection refused")}
		queue := NewQueue(8, nil)
		defer queue.Close()

		s := NewSweeper(reviewLog, newSweepOrchestrator(t, reviewLog), queue, time.Hour, slog.Default())
		s.sweep()

		assert.Empty(t, queue.GetChannel())
	})

	t.Run("full queue skips the remainder", func(t *testing.T) {
		t.Parallel()
		reviewLog := &sweepReviewLog{learners: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
		queue := NewQueue(1, nil)
		defer queue.Close()

		s := NewSweeper(reviewLog, newSweepOrchestrator(t, reviewLog), queue, time.Hour, slog.Default())
		s.sweep()

		assert.Len(t, queue.GetChannel(), 1)
	})
}

func TestNewSweeper(t *testing.T) {
	t.Parallel()

	reviewLog := &sweepReviewLog{}
	orch := newSweepOrchestrator(t, reviewLog)
	queue := NewQueue(1, nil)
	defer queue.Close()

	t.Run("raises sub-minute intervals", func(t *testing.T) {
		t.Parallel()
		s := NewSweeper(reviewLog, orch, queue, time.Second, slog.Default())
		assert.Equal(t, time.Minute, s.interval)
	})

	t.Run("keeps longer intervals", func(t *testing.T) {
		t.Parallel()
		s := NewSweeper(reviewLog, orch, queue, 6*time.Hour, slog.Default())
		assert.Equal(t, 6*time.Hour, s.interval)
	})

	t.Run("rejects nil dependencies", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() { NewSweeper(nil, orch, queue, time.Hour, nil) })
		require.Panics(t, func() { NewSweeper(reviewLog, nil, queue, time.Hour, nil) })
		require.Panics(t, func() { NewSweeper(reviewLog, orch, nil, time.Hour, nil) })
	})
}
