package task

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/service/optimization"
)

// TaskTypeOptimization identifies parameter-optimization tasks.
const TaskTypeOptimization = "parameter_optimization"

// OptimizationTask runs one optimization pass for one learner in the
// background. Concurrent passes for the same learner are harmless: the
// orchestrator's compare-and-set lets exactly one commit.
type OptimizationTask struct {
	id           uuid.UUID
	learnerID    uuid.UUID
	orchestrator *optimization.Orchestrator
	force        bool
}

// NewOptimizationTask creates a task that optimizes the given learner.
// When force is false the orchestrator's cadence rules apply.
func NewOptimizationTask(learnerID uuid.UUID, orch *optimization.Orchestrator, force bool) *OptimizationTask {
	return &OptimizationTask{
		id:           uuid.New(),
		learnerID:    learnerID,
		orchestrator: orch,
		force:        force,
	}
}

// ID implements Task.ID.
func (t *OptimizationTask) ID() uuid.UUID { return t.id }

// Type implements Task.Type.
func (t *OptimizationTask) Type() string { return TaskTypeOptimization }

// Execute implements Task.Execute. Insufficient data and lost
// optimization races are expected outcomes, not failures.
func (t *OptimizationTask) Execute(ctx context.Context) error {
	var err error
	if t.force {
		_, err = t.orchestrator.Run(ctx, t.learnerID)
	} else {
		_, err = t.orchestrator.MaybeOptimize(ctx, t.learnerID)
	}
	if errors.Is(err, domain.ErrInsufficientData) ||
		errors.Is(err, domain.ErrConcurrentOptimization) {
		return nil
	}
	return err
}
