package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain/fsrs"
)

// VersionedParameters is a learner's committed parameter vector together
// with the optimistic-concurrency version and the commit timestamp used
// for cadence decisions.
type VersionedParameters struct {
	LearnerID uuid.UUID
	Weights   fsrs.Parameters
	Version   int64
	UpdatedAt time.Time
}

// ParameterStore persists per-learner parameter vectors. Vectors are
// mutated only through CompareAndSet so that two concurrent optimization
// passes for the same learner cannot both commit.
type ParameterStore interface {
	// Get returns the learner's committed vector. Returns
	// ErrParametersNotFound when the learner has none yet; callers then
	// fall back to fsrs.DefaultParameters or call Create.
	Get(ctx context.Context, learnerID uuid.UUID) (*VersionedParameters, error)

	// Create stores the learner's first vector at version 1.
	// Returns ErrDuplicate if a vector already exists.
	Create(ctx context.Context, learnerID uuid.UUID, weights fsrs.Parameters, now time.Time) error

	// CompareAndSet replaces the vector only if the stored version still
	// equals version. On a lost race it returns ErrVersionConflict and
	// leaves the stored vector untouched; the caller must not retry
	// silently. Stored floats round-trip bit-identical.
	CompareAndSet(
		ctx context.Context,
		learnerID uuid.UUID,
		version int64,
		weights fsrs.Parameters,
		now time.Time,
	) error
}
