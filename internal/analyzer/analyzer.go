// Package analyzer computes aggregate performance metrics and
// prediction-accuracy statistics from a learner's ordered review log.
// Both computations are pure projections: running them twice over an
// unchanged log yields identical results.
package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
)

// MinReviewsForAnalysis is the minimum log length below which the
// analyzer refuses to report statistics (they would be degenerate).
const MinReviewsForAnalysis = 50

// MinPredictionSamples is the minimum number of qualifying events needed
// for a prediction analysis; below it a neutral zero analysis is
// returned rather than an error.
const MinPredictionSamples = 10

// Analyzer derives metrics from review logs. It is stateless and safe
// for concurrent use.
type Analyzer struct {
	model *fsrs.Model
}

// New creates an Analyzer that scores predictions with the given model.
func New(model *fsrs.Model) *Analyzer {
	return &Analyzer{model: model}
}

// Analyze computes performance metrics over the full provided window.
// Events must be ordered chronologically (oldest first). Returns
// domain.ErrInsufficientData when fewer than MinReviewsForAnalysis
// events are provided.
func (a *Analyzer) Analyze(events []domain.ReviewEvent) (domain.PerformanceMetrics, error) {
	if len(events) < MinReviewsForAnalysis {
		return domain.PerformanceMetrics{}, fmt.Errorf(
			"%w: %d reviews, need %d", domain.ErrInsufficientData, len(events), MinReviewsForAnalysis)
	}

	metrics := domain.PerformanceMetrics{
		TotalReviews:       len(events),
		RatingDistribution: make(map[domain.Rating]float64, 4),
	}

	var (
		successes      int
		totalResponse  time.Duration
		retentionTried int
		retentionHit   int
		efficiencySum  float64
	)
	counts := make(map[domain.Rating]int, 4)

	for _, e := range events {
		counts[e.Rating]++
		totalResponse += e.ResponseTime
		if e.Rating.IsSuccess() {
			successes++
		}
		if e.ElapsedDays > 0 && e.ScheduledDays > 0 {
			retentionTried++
			if e.Rating.IsSuccess() {
				retentionHit++
			}
		}
		efficiencySum += math.Max(0, e.StabilityAfter-e.StabilityBefore)
	}

	n := float64(len(events))
	metrics.CorrectRate = float64(successes) / n
	metrics.AverageResponseTime = totalResponse / time.Duration(len(events))
	for r, c := range counts {
		metrics.RatingDistribution[r] = float64(c) / n
	}
	if retentionTried > 0 {
		metrics.RetentionRate = float64(retentionHit) / float64(retentionTried)
	}
	metrics.LearningEfficiency = efficiencySum / n

	// Trend: chronologically earlier half vs later half. A positive
	// value means the quantity grew over the window.
	mid := len(events) / 2
	metrics.StabilityTrend = relativeChange(
		meanOf(events[:mid], stabilityAfter),
		meanOf(events[mid:], stabilityAfter),
	)
	metrics.DifficultyTrend = relativeChange(
		meanOf(events[:mid], difficultyAfter),
		meanOf(events[mid:], difficultyAfter),
	)

	return metrics, nil
}

// AnalyzePredictions scores the model's retrievability predictions
// against actual outcomes. Only events with positive elapsed time and a
// positive prior stability qualify; with fewer than
// MinPredictionSamples qualifying events a neutral analysis is returned.
func (a *Analyzer) AnalyzePredictions(events []domain.ReviewEvent) domain.PredictionAnalysis {
	var predicted, actual []float64
	for _, e := range events {
		if e.ElapsedDays <= 0 || e.StabilityBefore <= 0 {
			continue
		}
		p, err := a.model.Retrievability(e.ElapsedDays, e.StabilityBefore)
		if err != nil {
			continue
		}
		predicted = append(predicted, p)
		if e.Rating.IsSuccess() {
			actual = append(actual, 1)
		} else {
			actual = append(actual, 0)
		}
	}

	if len(predicted) < MinPredictionSamples {
		return domain.PredictionAnalysis{}
	}

	analysis := domain.PredictionAnalysis{SampleSize: len(predicted)}

	errs := make([]float64, len(predicted))
	var absSum, overSum, underSum float64
	var overN, underN int
	for i := range predicted {
		diff := predicted[i] - actual[i]
		errs[i] = diff
		absSum += math.Abs(diff)
		if diff > 0 {
			overSum += diff
			overN++
		} else if diff < 0 {
			underSum += -diff
			underN++
		}
	}

	n := float64(len(predicted))
	analysis.MeanAbsoluteError = absSum / n
	if overN > 0 {
		analysis.OverestimationBias = overSum / float64(overN)
	}
	if underN > 0 {
		analysis.UnderestimationBias = underSum / float64(underN)
	}
	analysis.Correlation = pearson(predicted, actual)
	analysis.ConsistencyScore = 1 / (1 + variance(errs))

	return analysis
}

func stabilityAfter(e domain.ReviewEvent) float64  { return e.StabilityAfter }
func difficultyAfter(e domain.ReviewEvent) float64 { return e.DifficultyAfter }

func meanOf(events []domain.ReviewEvent, f func(domain.ReviewEvent) float64) float64 {
	if len(events) == 0 {
		return 0
	}
	var sum float64
	for _, e := range events {
		sum += f(e)
	}
	return sum / float64(len(events))
}

// relativeChange reports (later - earlier) / earlier, or 0 when the
// earlier mean carries no signal.
func relativeChange(earlier, later float64) float64 {
	if earlier == 0 {
		return 0
	}
	return (later - earlier) / earlier
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// pearson computes the Pearson correlation coefficient, returning 0 when
// either series has zero variance.
func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}
