package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
)

// OptimizationRunStore persists the write-once audit records of
// parameter commits. Audit writes are fire-and-forget for the
// orchestrator: a failure here must never roll back a committed vector.
type OptimizationRunStore interface {
	// Create writes a new audit record.
	Create(ctx context.Context, run *domain.OptimizationRun) error

	// ListByLearner returns the learner's runs, newest first.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.OptimizationRun, error)
}
