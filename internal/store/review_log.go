package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
)

// ReviewLogStore persists the append-only review log. Events are
// immutable once written; there is deliberately no update or delete.
type ReviewLogStore interface {
	// Append writes a new review event. The event is validated first;
	// validation errors are wrapped in ErrInvalidEntity.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByLearner returns the learner's events ordered by review time,
	// oldest first. A zero since returns the full log.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]domain.ReviewEvent, error)

	// CountByLearner returns the learner's total review count, used for
	// optimization cadence decisions.
	CountByLearner(ctx context.Context, learnerID uuid.UUID) (int, error)

	// ListLearners returns the distinct learner IDs present in the log,
	// used by the periodic optimization sweep.
	ListLearners(ctx context.Context) ([]uuid.UUID, error)

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
