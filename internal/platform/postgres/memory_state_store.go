package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/store"
)

// MemoryStateStore implements store.MemoryStateStore on PostgreSQL.
type MemoryStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMemoryStateStore creates a PostgreSQL-backed MemoryStateStore. The
// connection (or transaction) is managed by the caller. A nil logger
// falls back to slog's default.
func NewMemoryStateStore(db store.DBTX, logger *slog.Logger) *MemoryStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_state_store")),
	}
}

// Ensure MemoryStateStore implements store.MemoryStateStore.
var _ store.MemoryStateStore = (*MemoryStateStore)(nil)

const memoryStateColumns = `learner_id, card_id, stability, difficulty, state, step,
	due_at, last_review, review_count, created_at, updated_at`

// Get implements store.MemoryStateStore.Get.
func (s *MemoryStateStore) Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardMemoryState, error) {
	query := `SELECT ` + memoryStateColumns + `
		FROM card_memory_states
		WHERE learner_id = $1 AND card_id = $2`

	state, err := scanMemoryState(s.db.QueryRowContext(ctx, query, learnerID, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMemoryStateNotFound
		}
		return nil, store.NewStoreError("memory_state", "get", "query failed", err)
	}
	return state, nil
}

// Save implements store.MemoryStateStore.Save as an upsert keyed on
// (learner_id, card_id).
func (s *MemoryStateStore) Save(ctx context.Context, state *domain.CardMemoryState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO card_memory_states (` + memoryStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (learner_id, card_id) DO UPDATE SET
			stability = EXCLUDED.stability,
			difficulty = EXCLUDED.difficulty,
			state = EXCLUDED.state,
			step = EXCLUDED.step,
			due_at = EXCLUDED.due_at,
			last_review = EXCLUDED.last_review,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at`

	var lastReview *time.Time
	if !state.LastReview.IsZero() {
		lastReview = &state.LastReview
	}

	_, err := s.db.ExecContext(ctx, query,
		state.LearnerID, state.CardID, state.Stability, state.Difficulty,
		string(state.State), state.Step, state.DueAt, lastReview,
		state.ReviewCount, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		return store.NewStoreError("memory_state", "save", "upsert failed", err)
	}
	return nil
}

// ListDue implements store.MemoryStateStore.ListDue.
func (s *MemoryStateStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	due time.Time,
	limit int,
) ([]domain.CardMemoryState, error) {
	query := `SELECT ` + memoryStateColumns + `
		FROM card_memory_states
		WHERE learner_id = $1 AND due_at <= $2
		ORDER BY due_at ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, learnerID, due, limit)
	if err != nil {
		return nil, store.NewStoreError("memory_state", "list_due", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var states []domain.CardMemoryState
	for rows.Next() {
		state, err := scanMemoryState(rows)
		if err != nil {
			return nil, store.NewStoreError("memory_state", "list_due", "scan failed", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("memory_state", "list_due", "iteration failed", err)
	}
	return states, nil
}

// WithTx implements store.MemoryStateStore.WithTx.
func (s *MemoryStateStore) WithTx(tx *sql.Tx) store.MemoryStateStore {
	return &MemoryStateStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemoryState(row rowScanner) (*domain.CardMemoryState, error) {
	var (
		state      domain.CardMemoryState
		stateName  string
		lastReview sql.NullTime
	)
	err := row.Scan(
		&state.LearnerID, &state.CardID, &state.Stability, &state.Difficulty,
		&stateName, &state.Step, &state.DueAt, &lastReview,
		&state.ReviewCount, &state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		return nil, err
	}
	state.State = domain.CardState(stateName)
	if lastReview.Valid {
		state.LastReview = lastReview.Time
	}
	return &state, nil
}
