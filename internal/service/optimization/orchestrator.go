// Package optimization orchestrates a learner's parameter-optimization
// lifecycle: deciding when to run, feeding the analyzer's output through
// the rule-based optimizer, validating the candidate vector, committing
// it behind an optimistic-concurrency guard, and writing the audit
// trail.
package optimization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/analyzer"
	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
	"github.com/retentlabs/retent/internal/optimizer"
	"github.com/retentlabs/retent/internal/platform/logger"
	"github.com/retentlabs/retent/internal/store"
)

// Cadence constants for ShouldOptimize.
const (
	// MinReviews is the review count below which optimization never runs.
	MinReviews = 50

	// StaleParameterDays triggers optimization when the committed vector
	// is older than this many days.
	StaleParameterDays = 30
)

// reviewMilestones are the total-review counts at which optimization is
// triggered regardless of parameter age.
var reviewMilestones = map[int]bool{
	100: true, 250: true, 500: true, 1000: true, 2000: true,
}

// Clock supplies the current time, injectable for cadence tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// ShouldOptimize reports whether a learner with the given review count
// and parameter age is due for an optimization pass: at least MinReviews
// reviews AND (a review-count milestone or stale parameters).
func ShouldOptimize(totalReviews int, daysSinceLastUpdate float64) bool {
	if totalReviews < MinReviews {
		return false
	}
	return reviewMilestones[totalReviews] || daysSinceLastUpdate >= StaleParameterDays
}

// Result reports the outcome of a completed optimization pass.
type Result struct {
	Run        *domain.OptimizationRun
	Previous   fsrs.Parameters
	Committed  fsrs.Parameters
	Confidence float64
}

// Orchestrator runs optimization passes. It is stateless apart from its
// injected collaborators and safe for concurrent use across learners;
// concurrent passes for the same learner are serialized by the
// parameter store's compare-and-set.
type Orchestrator struct {
	reviewLog store.ReviewLogStore
	params    store.ParameterStore
	audits    store.OptimizationRunStore
	opt       *optimizer.Optimizer
	clock     Clock
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil clock defaults to the
// system clock; a nil logger to slog's default.
func NewOrchestrator(
	reviewLog store.ReviewLogStore,
	params store.ParameterStore,
	audits store.OptimizationRunStore,
	opt *optimizer.Optimizer,
	clock Clock,
	log *slog.Logger,
) *Orchestrator {
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if params == nil {
		panic("params cannot be nil")
	}
	if audits == nil {
		panic("audits cannot be nil")
	}
	if opt == nil {
		panic("opt cannot be nil")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		reviewLog: reviewLog,
		params:    params,
		audits:    audits,
		opt:       opt,
		clock:     clock,
		logger:    log.With(slog.String("component", "optimization_orchestrator")),
	}
}

// MaybeOptimize runs a pass only if the learner meets the cadence
// criteria. Returns (nil, nil) when the learner is not due.
func (o *Orchestrator) MaybeOptimize(ctx context.Context, learnerID uuid.UUID) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, o.logger)

	total, err := o.reviewLog.CountByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	current, err := o.currentParameters(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	days := o.clock.Now().Sub(current.UpdatedAt).Hours() / 24.0
	if !ShouldOptimize(total, days) {
		log.Debug("learner not due for optimization",
			slog.String("learner_id", learnerID.String()),
			slog.Int("total_reviews", total),
			slog.Float64("days_since_update", days))
		return nil, nil
	}

	return o.run(ctx, learnerID, current, total)
}

// Run executes an optimization pass unconditionally (cadence aside).
// Returns domain.ErrInsufficientData when the learner's log is too
// short; callers should treat that as "skip", not as a failure.
func (o *Orchestrator) Run(ctx context.Context, learnerID uuid.UUID) (*Result, error) {
	total, err := o.reviewLog.CountByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	current, err := o.currentParameters(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	return o.run(ctx, learnerID, current, total)
}

func (o *Orchestrator) run(
	ctx context.Context,
	learnerID uuid.UUID,
	current *store.VersionedParameters,
	totalReviews int,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, o.logger)
	now := o.clock.Now()

	events, err := o.reviewLog.ListByLearner(ctx, learnerID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	model, err := fsrs.NewModel(current.Weights)
	if err != nil {
		return nil, fmt.Errorf("stored parameters failed validation: %w", err)
	}

	an := analyzer.New(model)
	metrics, err := an.Analyze(events)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			log.Debug("skipping optimization",
				slog.String("learner_id", learnerID.String()),
				slog.String("reason", err.Error()))
		}
		return nil, err
	}
	analysis := an.AnalyzePredictions(events)

	suggestion := o.opt.Suggest(metrics, analysis)
	if suggestion.Empty() {
		log.Info("no parameter adjustments suggested",
			slog.String("learner_id", learnerID.String()))
		return nil, nil
	}

	candidate := o.opt.Apply(current.Weights, suggestion)
	if err := candidate.Validate(); err != nil {
		// Abort with no mutation; the prior vector stays authoritative.
		log.Warn("candidate parameters rejected",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	err = o.params.CompareAndSet(ctx, learnerID, current.Version, candidate, now)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			log.Warn("lost optimization race",
				slog.String("learner_id", learnerID.String()),
				slog.Int64("version", current.Version))
			return nil, fmt.Errorf("%w: learner %s", domain.ErrConcurrentOptimization, learnerID)
		}
		return nil, fmt.Errorf("failed to commit parameters: %w", err)
	}

	confidence := computeConfidence(totalReviews, metrics.RetentionRate, analysis.ConsistencyScore)

	run := &domain.OptimizationRun{
		ID:                 uuid.New(),
		LearnerID:          learnerID,
		PreviousParameters: current.Weights,
		ProposedParameters: candidate,
		Metrics:            metrics,
		Analysis:           analysis,
		Reasons:            suggestion.Reasons,
		Priority:           string(suggestion.Priority),
		Confidence:         confidence,
		CreatedAt:          now,
	}

	// Audit is fire-and-forget: the commit above already succeeded and
	// must not be rolled back if the audit write fails.
	if auditErr := o.audits.Create(ctx, run); auditErr != nil {
		log.Error("failed to record optimization run",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", auditErr.Error()))
	}

	log.Info("committed optimized parameters",
		slog.String("learner_id", learnerID.String()),
		slog.Int("total_reviews", totalReviews),
		slog.String("priority", string(suggestion.Priority)),
		slog.Float64("confidence", confidence))

	return &Result{
		Run:        run,
		Previous:   current.Weights,
		Committed:  candidate,
		Confidence: confidence,
	}, nil
}

// Metrics computes the learner's current performance metrics and
// prediction analysis without mutating anything. Learners with no
// committed vector are analyzed against the default parameters.
// Returns domain.ErrInsufficientData when the review log is too short.
func (o *Orchestrator) Metrics(
	ctx context.Context,
	learnerID uuid.UUID,
) (domain.PerformanceMetrics, domain.PredictionAnalysis, error) {
	weights := fsrs.DefaultParameters
	current, err := o.params.Get(ctx, learnerID)
	switch {
	case err == nil:
		weights = current.Weights
	case !errors.Is(err, store.ErrParametersNotFound):
		return domain.PerformanceMetrics{}, domain.PredictionAnalysis{},
			fmt.Errorf("failed to load parameters: %w", err)
	}

	events, err := o.reviewLog.ListByLearner(ctx, learnerID, time.Time{})
	if err != nil {
		return domain.PerformanceMetrics{}, domain.PredictionAnalysis{},
			fmt.Errorf("failed to list reviews: %w", err)
	}

	model, err := fsrs.NewModel(weights)
	if err != nil {
		return domain.PerformanceMetrics{}, domain.PredictionAnalysis{},
			fmt.Errorf("stored parameters failed validation: %w", err)
	}

	an := analyzer.New(model)
	metrics, err := an.Analyze(events)
	if err != nil {
		return domain.PerformanceMetrics{}, domain.PredictionAnalysis{}, err
	}
	return metrics, an.AnalyzePredictions(events), nil
}

// currentParameters returns the learner's committed vector, creating the
// default vector on first touch so there is always a version to guard
// the commit with.
func (o *Orchestrator) currentParameters(ctx context.Context, learnerID uuid.UUID) (*store.VersionedParameters, error) {
	current, err := o.params.Get(ctx, learnerID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, store.ErrParametersNotFound) {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}

	now := o.clock.Now()
	if createErr := o.params.Create(ctx, learnerID, fsrs.DefaultParameters, now); createErr != nil {
		// A concurrent creator is fine; re-read either way.
		if !errors.Is(createErr, store.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create default parameters: %w", createErr)
		}
	}
	return o.params.Get(ctx, learnerID)
}

// computeConfidence blends data volume with observed retention and
// prediction consistency:
// (min(total/200, 1) + (retention + consistency)/2) / 2.
func computeConfidence(totalReviews int, retentionRate, consistencyScore float64) float64 {
	volume := float64(totalReviews) / 200.0
	if volume > 1 {
		volume = 1
	}
	return (volume + (retentionRate+consistencyScore)/2) / 2
}
