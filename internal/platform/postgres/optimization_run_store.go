package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/store"
)

// OptimizationRunStore implements store.OptimizationRunStore on
// PostgreSQL. Runs are write-once audit records.
type OptimizationRunStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOptimizationRunStore creates a PostgreSQL-backed
// OptimizationRunStore.
func NewOptimizationRunStore(db store.DBTX, logger *slog.Logger) *OptimizationRunStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OptimizationRunStore{
		db:     db,
		logger: logger.With(slog.String("component", "optimization_run_store")),
	}
}

// Ensure OptimizationRunStore implements store.OptimizationRunStore.
var _ store.OptimizationRunStore = (*OptimizationRunStore)(nil)

// Create implements store.OptimizationRunStore.Create.
func (s *OptimizationRunStore) Create(ctx context.Context, run *domain.OptimizationRun) error {
	previous, err := json.Marshal(run.PreviousParameters[:])
	if err != nil {
		return store.NewStoreError("optimization_run", "create", "encode previous failed", err)
	}
	proposed, err := json.Marshal(run.ProposedParameters[:])
	if err != nil {
		return store.NewStoreError("optimization_run", "create", "encode proposed failed", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return store.NewStoreError("optimization_run", "create", "encode metrics failed", err)
	}
	analysis, err := json.Marshal(run.Analysis)
	if err != nil {
		return store.NewStoreError("optimization_run", "create", "encode analysis failed", err)
	}
	reasons, err := json.Marshal(run.Reasons)
	if err != nil {
		return store.NewStoreError("optimization_run", "create", "encode reasons failed", err)
	}

	query := `INSERT INTO optimization_runs (
			id, learner_id, previous_parameters, proposed_parameters,
			metrics, analysis, reasons, priority, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.LearnerID, previous, proposed,
		metrics, analysis, reasons, run.Priority, run.Confidence, run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: optimization run %s", store.ErrDuplicate, run.ID)
		}
		return store.NewStoreError("optimization_run", "create", "insert failed", err)
	}
	return nil
}

// ListByLearner implements store.OptimizationRunStore.ListByLearner,
// newest first.
func (s *OptimizationRunStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]domain.OptimizationRun, error) {
	query := `SELECT id, learner_id, previous_parameters, proposed_parameters,
			metrics, analysis, reasons, priority, confidence, created_at
		FROM optimization_runs
		WHERE learner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, learnerID, limit)
	if err != nil {
		return nil, store.NewStoreError("optimization_run", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []domain.OptimizationRun
	for rows.Next() {
		var (
			run                           domain.OptimizationRun
			previous, proposed            []byte
			metricsRaw, analysisRaw       []byte
			reasonsRaw                    []byte
		)
		err := rows.Scan(&run.ID, &run.LearnerID, &previous, &proposed,
			&metricsRaw, &analysisRaw, &reasonsRaw, &run.Priority,
			&run.Confidence, &run.CreatedAt)
		if err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "scan failed", err)
		}

		if err := decodeWeightsInto(previous, &run.PreviousParameters); err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "decode previous failed", err)
		}
		if err := decodeWeightsInto(proposed, &run.ProposedParameters); err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "decode proposed failed", err)
		}
		if err := json.Unmarshal(metricsRaw, &run.Metrics); err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "decode metrics failed", err)
		}
		if err := json.Unmarshal(analysisRaw, &run.Analysis); err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "decode analysis failed", err)
		}
		if err := json.Unmarshal(reasonsRaw, &run.Reasons); err != nil {
			return nil, store.NewStoreError("optimization_run", "list", "decode reasons failed", err)
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("optimization_run", "list", "iteration failed", err)
	}
	return runs, nil
}

func decodeWeightsInto(raw []byte, dst *[17]float64) error {
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return err
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("expected %d weights, got %d", len(dst), len(vals))
	}
	copy(dst[:], vals)
	return nil
}
