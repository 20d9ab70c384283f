package domain

import (
	"time"

	"github.com/google/uuid"
)

// OptimizationRun is the write-once audit record of a committed
// parameter change: the vector before and after, the evidence that
// produced it, and a confidence score for downstream trust-weighting.
type OptimizationRun struct {
	ID                 uuid.UUID          `json:"id"`
	LearnerID          uuid.UUID          `json:"learner_id"`
	PreviousParameters [17]float64        `json:"previous_parameters"`
	ProposedParameters [17]float64        `json:"proposed_parameters"`
	Metrics            PerformanceMetrics `json:"metrics"`
	Analysis           PredictionAnalysis `json:"analysis"`
	Reasons            []string           `json:"reasons"`
	Priority           string             `json:"priority"`
	Confidence         float64            `json:"confidence"`
	CreatedAt          time.Time          `json:"created_at"`
}
