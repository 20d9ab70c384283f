package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/domain"
)

// Common request/response structures

// SubmitReviewRequest defines the payload for the review submission
// endpoint. ResponseTimeMs is optional; zero means "not measured".
type SubmitReviewRequest struct {
	LearnerID      uuid.UUID `json:"learner_id"       validate:"required"`
	CardID         uuid.UUID `json:"card_id"          validate:"required"`
	Rating         int       `json:"rating"           validate:"required,min=1,max=4"`
	ResponseTimeMs int64     `json:"response_time_ms" validate:"min=0"`
}

// MemoryStateResponse represents a card's scheduling state.
type MemoryStateResponse struct {
	LearnerID   uuid.UUID  `json:"learner_id"`
	CardID      uuid.UUID  `json:"card_id"`
	Stability   float64    `json:"stability"`
	Difficulty  float64    `json:"difficulty"`
	State       string     `json:"state"`
	Step        int        `json:"step"`
	DueAt       time.Time  `json:"due_at"`
	LastReview  *time.Time `json:"last_review,omitempty"`
	ReviewCount int        `json:"review_count"`
}

// SchedulePreviewResponse maps each rating name to the memory state that
// rating would produce, without committing anything.
type SchedulePreviewResponse struct {
	CardID   uuid.UUID                      `json:"card_id"`
	Outcomes map[string]MemoryStateResponse `json:"outcomes"`
}

// MetricsResponse bundles a learner's performance metrics with the
// model's prediction-accuracy analysis.
type MetricsResponse struct {
	LearnerID uuid.UUID                 `json:"learner_id"`
	Metrics   domain.PerformanceMetrics `json:"metrics"`
	Analysis  domain.PredictionAnalysis `json:"analysis"`
}

// OptimizationResponse reports the outcome of a forced optimization
// pass.
type OptimizationResponse struct {
	LearnerID  uuid.UUID   `json:"learner_id"`
	Committed  bool        `json:"committed"`
	Previous   []float64   `json:"previous_parameters,omitempty"`
	Proposed   []float64   `json:"proposed_parameters,omitempty"`
	Reasons    []string    `json:"reasons,omitempty"`
	Priority   string      `json:"priority,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	RunID      *uuid.UUID  `json:"run_id,omitempty"`
}

// memoryStateToResponse converts a domain memory state to its API shape.
func memoryStateToResponse(s *domain.CardMemoryState) MemoryStateResponse {
	resp := MemoryStateResponse{
		LearnerID:   s.LearnerID,
		CardID:      s.CardID,
		Stability:   s.Stability,
		Difficulty:  s.Difficulty,
		State:       string(s.State),
		Step:        s.Step,
		DueAt:       s.DueAt,
		ReviewCount: s.ReviewCount,
	}
	if !s.LastReview.IsZero() {
		lr := s.LastReview
		resp.LastReview = &lr
	}
	return resp
}
