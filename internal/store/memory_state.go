package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
)

// MemoryStateStore persists per-(learner, card) memory states.
type MemoryStateStore interface {
	// Get retrieves the memory state for a learner/card pair.
	// Returns ErrMemoryStateNotFound if none exists.
	Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardMemoryState, error)

	// Save upserts the state. Domain validation errors are wrapped in
	// ErrInvalidEntity.
	Save(ctx context.Context, state *domain.CardMemoryState) error

	// ListDue returns the learner's states due at or before the given
	// time, ordered by due time.
	ListDue(ctx context.Context, learnerID uuid.UUID, due time.Time, limit int) ([]domain.CardMemoryState, error)

	// WithTx returns a MemoryStateStore bound to the given transaction.
	WithTx(tx *sql.Tx) MemoryStateStore
}
