package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain/fsrs"
	"github.com/retentlabs/retent/internal/store"
)

// ParameterStore implements store.ParameterStore on PostgreSQL with an
// optimistic-concurrency version column. Weights are stored as JSON;
// encoding/json uses the shortest round-trip float representation, so
// reads return bit-identical values.
type ParameterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewParameterStore creates a PostgreSQL-backed ParameterStore.
func NewParameterStore(db store.DBTX, logger *slog.Logger) *ParameterStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ParameterStore{
		db:     db,
		logger: logger.With(slog.String("component", "parameter_store")),
	}
}

// Ensure ParameterStore implements store.ParameterStore.
var _ store.ParameterStore = (*ParameterStore)(nil)

// Get implements store.ParameterStore.Get.
func (s *ParameterStore) Get(ctx context.Context, learnerID uuid.UUID) (*store.VersionedParameters, error) {
	query := `SELECT weights, version, updated_at
		FROM learner_parameters
		WHERE learner_id = $1`

	var (
		raw       []byte
		version   int64
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, query, learnerID).Scan(&raw, &version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrParametersNotFound
		}
		return nil, store.NewStoreError("parameters", "get", "query failed", err)
	}

	weights, err := decodeWeights(raw)
	if err != nil {
		return nil, store.NewStoreError("parameters", "get", "decode failed", err)
	}

	return &store.VersionedParameters{
		LearnerID: learnerID,
		Weights:   weights,
		Version:   version,
		UpdatedAt: updatedAt,
	}, nil
}

// Create implements store.ParameterStore.Create, storing the first
// vector at version 1.
func (s *ParameterStore) Create(
	ctx context.Context,
	learnerID uuid.UUID,
	weights fsrs.Parameters,
	now time.Time,
) error {
	raw, err := encodeWeights(weights)
	if err != nil {
		return store.NewStoreError("parameters", "create", "encode failed", err)
	}

	query := `INSERT INTO learner_parameters (learner_id, weights, version, updated_at)
		VALUES ($1, $2, 1, $3)`

	if _, err := s.db.ExecContext(ctx, query, learnerID, raw, now); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: parameters for learner %s", store.ErrDuplicate, learnerID)
		}
		return store.NewStoreError("parameters", "create", "insert failed", err)
	}
	return nil
}

// CompareAndSet implements store.ParameterStore.CompareAndSet. The
// update only applies while the stored version still matches; a lost
// race returns ErrVersionConflict with the row untouched.
func (s *ParameterStore) CompareAndSet(
	ctx context.Context,
	learnerID uuid.UUID,
	version int64,
	weights fsrs.Parameters,
	now time.Time,
) error {
	raw, err := encodeWeights(weights)
	if err != nil {
		return store.NewStoreError("parameters", "compare_and_set", "encode failed", err)
	}

	query := `UPDATE learner_parameters
		SET weights = $1, version = version + 1, updated_at = $2
		WHERE learner_id = $3 AND version = $4`

	result, err := s.db.ExecContext(ctx, query, raw, now, learnerID, version)
	if err != nil {
		return store.NewStoreError("parameters", "compare_and_set", "update failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("parameters", "compare_and_set", "rows affected unavailable", err)
	}
	if affected == 0 {
		// Distinguish a missing row from a lost race.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM learner_parameters WHERE learner_id = $1)`,
			learnerID,
		).Scan(&exists)
		if err != nil {
			return store.NewStoreError("parameters", "compare_and_set", "existence check failed", err)
		}
		if !exists {
			return store.ErrParametersNotFound
		}
		return fmt.Errorf("%w: learner %s at version %d", store.ErrVersionConflict, learnerID, version)
	}
	return nil
}

func encodeWeights(w fsrs.Parameters) ([]byte, error) {
	return json.Marshal(w[:])
}

func decodeWeights(raw []byte) (fsrs.Parameters, error) {
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fsrs.Parameters{}, err
	}
	if len(vals) != fsrs.NumParameters {
		return fsrs.Parameters{}, fmt.Errorf("expected %d weights, got %d", fsrs.NumParameters, len(vals))
	}
	var w fsrs.Parameters
	copy(w[:], vals)
	return w, nil
}
