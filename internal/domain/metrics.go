package domain

import "time"

// PerformanceMetrics is a projection over a learner's review log,
// recomputed for every optimization run and never treated as
// authoritative state.
type PerformanceMetrics struct {
	TotalReviews        int                `json:"total_reviews"`
	CorrectRate         float64            `json:"correct_rate"`
	AverageResponseTime time.Duration      `json:"average_response_time"`
	RatingDistribution  map[Rating]float64 `json:"rating_distribution"`

	// Trend metrics compare the chronologically earlier half of the
	// window against the later half: a positive StabilityTrend means
	// stability grew over time.
	StabilityTrend  float64 `json:"stability_trend"`
	DifficultyTrend float64 `json:"difficulty_trend"`

	// RetentionRate is the success fraction among events that were real
	// scheduled reviews (elapsed and scheduled both positive).
	RetentionRate float64 `json:"retention_rate"`

	// LearningEfficiency is the mean stability gained per review,
	// counting only gains.
	LearningEfficiency float64 `json:"learning_efficiency"`
}

// PredictionAnalysis measures how well the forgetting-curve model's
// predicted retrievability matched actual recall outcomes.
type PredictionAnalysis struct {
	SampleSize          int     `json:"sample_size"`
	MeanAbsoluteError   float64 `json:"mean_absolute_error"`
	Correlation         float64 `json:"correlation"` // Pearson, predicted vs actual
	OverestimationBias  float64 `json:"overestimation_bias"`
	UnderestimationBias float64 `json:"underestimation_bias"`
	ConsistencyScore    float64 `json:"consistency_score"` // 1 / (1 + error variance)
}

// Neutral reports whether the analysis carries no signal, either because
// too few events qualified or because the analyzer was skipped.
func (p PredictionAnalysis) Neutral() bool {
	return p.SampleSize == 0
}
