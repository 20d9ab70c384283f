package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/retentlabs/retent/internal/api/shared"
	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/platform/logger"
	"github.com/retentlabs/retent/internal/service/optimization"
	"github.com/retentlabs/retent/internal/store"
	"github.com/retentlabs/retent/internal/task"
)

// defaultRunHistoryLimit bounds the optimization-history listing.
const defaultRunHistoryLimit = 20

// OptimizationHandler handles optimization and metrics HTTP requests.
type OptimizationHandler struct {
	orchestrator *optimization.Orchestrator
	runs         store.OptimizationRunStore
	taskQueue    task.QueueWriter
	logger       *slog.Logger
}

// NewOptimizationHandler creates a new OptimizationHandler. The task
// queue may be nil, in which case async optimization is unavailable.
func NewOptimizationHandler(
	orchestrator *optimization.Orchestrator,
	runs store.OptimizationRunStore,
	taskQueue task.QueueWriter,
	log *slog.Logger,
) *OptimizationHandler {
	if orchestrator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("orchestrator cannot be nil for OptimizationHandler")
	}
	if runs == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("runs cannot be nil for OptimizationHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OptimizationHandler")
	}
	return &OptimizationHandler{
		orchestrator: orchestrator,
		runs:         runs,
		taskQueue:    taskQueue,
		logger:       log.With(slog.String("component", "optimization_handler")),
	}
}

// Optimize handles POST /learners/{learnerID}/optimize requests. By
// default it runs a pass synchronously, skipping the cadence gate. With
// ?async=true the pass is enqueued for a background worker and the
// handler returns 202.
func (h *OptimizationHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := parseUUIDParam(w, r, "learnerID")
	if !ok {
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if h.taskQueue == nil {
			shared.RespondWithError(w, r, http.StatusNotImplemented, "Async optimization is not enabled")
			return
		}
		t := task.NewOptimizationTask(learnerID, h.orchestrator, true)
		if err := h.taskQueue.Enqueue(t); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				"Optimization queue unavailable", err)
			return
		}
		log.Info("optimization enqueued", slog.String("learner_id", learnerID.String()))
		w.WriteHeader(http.StatusAccepted)
		return
	}

	result, err := h.orchestrator.Run(r.Context(), learnerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := OptimizationResponse{LearnerID: learnerID}
	if result != nil {
		resp.Committed = true
		resp.Previous = result.Previous[:]
		resp.Proposed = result.Committed[:]
		resp.Reasons = result.Run.Reasons
		resp.Priority = result.Run.Priority
		resp.Confidence = result.Confidence
		runID := result.Run.ID
		resp.RunID = &runID
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Metrics handles GET /learners/{learnerID}/metrics requests.
func (h *OptimizationHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := parseUUIDParam(w, r, "learnerID")
	if !ok {
		return
	}

	metrics, analysis, err := h.orchestrator.Metrics(r.Context(), learnerID)
	if err != nil {
		// Too little history is an expected state for new learners, not a
		// server fault.
		if errors.Is(err, domain.ErrInsufficientData) {
			shared.RespondWithError(w, r, http.StatusUnprocessableEntity, GetSafeErrorMessage(err))
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MetricsResponse{
		LearnerID: learnerID,
		Metrics:   metrics,
		Analysis:  analysis,
	})
}

// History handles GET /learners/{learnerID}/optimizations requests,
// returning the learner's optimization audit trail, newest first.
func (h *OptimizationHandler) History(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := parseUUIDParam(w, r, "learnerID")
	if !ok {
		return
	}

	limit := defaultRunHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListByLearner(r.Context(), learnerID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if runs == nil {
		runs = []domain.OptimizationRun{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, runs)
}
