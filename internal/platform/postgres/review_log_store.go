package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/store"
)

// ReviewLogStore implements store.ReviewLogStore on PostgreSQL. The
// review_events table is append-only; this type exposes no update or
// delete path.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a PostgreSQL-backed ReviewLogStore.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure ReviewLogStore implements store.ReviewLogStore.
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append.
func (s *ReviewLogStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO review_events (
			id, learner_id, card_id, rating, elapsed_days, scheduled_days,
			stability_before, stability_after, difficulty_before, difficulty_after,
			response_time_ns, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.LearnerID, event.CardID, int(event.Rating),
		event.ElapsedDays, event.ScheduledDays,
		event.StabilityBefore, event.StabilityAfter,
		event.DifficultyBefore, event.DifficultyAfter,
		event.ResponseTime.Nanoseconds(), event.ReviewedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: review event %s", store.ErrDuplicate, event.ID)
		}
		return store.NewStoreError("review_event", "append", "insert failed", err)
	}
	return nil
}

// ListByLearner implements store.ReviewLogStore.ListByLearner, returning
// events ordered oldest first.
func (s *ReviewLogStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]domain.ReviewEvent, error) {
	query := `SELECT id, learner_id, card_id, rating, elapsed_days, scheduled_days,
			stability_before, stability_after, difficulty_before, difficulty_after,
			response_time_ns, reviewed_at
		FROM review_events
		WHERE learner_id = $1 AND reviewed_at >= $2
		ORDER BY reviewed_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, learnerID, since)
	if err != nil {
		return nil, store.NewStoreError("review_event", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.ReviewEvent
	for rows.Next() {
		var (
			e          domain.ReviewEvent
			rating     int
			responseNs int64
		)
		err := rows.Scan(
			&e.ID, &e.LearnerID, &e.CardID, &rating, &e.ElapsedDays, &e.ScheduledDays,
			&e.StabilityBefore, &e.StabilityAfter, &e.DifficultyBefore, &e.DifficultyAfter,
			&responseNs, &e.ReviewedAt)
		if err != nil {
			return nil, store.NewStoreError("review_event", "list", "scan failed", err)
		}
		e.Rating = domain.Rating(rating)
		e.ResponseTime = time.Duration(responseNs)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_event", "list", "iteration failed", err)
	}
	return events, nil
}

// CountByLearner implements store.ReviewLogStore.CountByLearner.
func (s *ReviewLogStore) CountByLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_events WHERE learner_id = $1`, learnerID,
	).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("review_event", "count", "query failed", err)
	}
	return count, nil
}

// ListLearners implements store.ReviewLogStore.ListLearners.
func (s *ReviewLogStore) ListLearners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT learner_id FROM review_events`)
	if err != nil {
		return nil, store.NewStoreError("review_event", "list_learners", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var learners []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("review_event", "list_learners", "scan failed", err)
		}
		learners = append(learners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_event", "list_learners", "iteration failed", err)
	}
	return learners, nil
}

// WithTx implements store.ReviewLogStore.WithTx.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{db: tx, logger: s.logger}
}
