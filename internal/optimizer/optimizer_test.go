package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
)

// healthyMetrics triggers no rule.
func healthyMetrics() domain.PerformanceMetrics {
	return domain.PerformanceMetrics{
		TotalReviews:       100,
		CorrectRate:        0.90,
		RetentionRate:      0.90,
		LearningEfficiency: 0.50,
	}
}

func TestSuggestNoRuleFires(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	s := o.Suggest(healthyMetrics(), domain.PredictionAnalysis{})
	assert.True(t, s.Empty())
	assert.Empty(t, s.Reasons)
	assert.Equal(t, PriorityLow, s.Priority)
}

func TestSuggestSingleRules(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	testCases := []struct {
		name       string
		metrics    func() domain.PerformanceMetrics
		analysis   domain.PredictionAnalysis
		wantDeltas map[int]float64
	}{
		{
			name: "low correct rate softens difficulty",
			metrics: func() domain.PerformanceMetrics {
				m := healthyMetrics()
				m.CorrectRate = 0.70
				return m
			},
			wantDeltas: map[int]float64{
				ParamDifficultyImpact: -0.05,
				ParamDifficultyDecay:  +0.02,
			},
		},
		{
			name: "high correct rate increases challenge",
			metrics: func() domain.PerformanceMetrics {
				m := healthyMetrics()
				m.CorrectRate = 0.98
				return m
			},
			wantDeltas: map[int]float64{
				ParamDifficultyImpact: +0.05,
				ParamEasyBonus:        -0.05,
			},
		},
		{
			name:     "overestimation tempers stability growth",
			metrics:  healthyMetrics,
			analysis: domain.PredictionAnalysis{OverestimationBias: 0.30},
			wantDeltas: map[int]float64{
				ParamSuccessBonus:    -0.05,
				ParamStabilityFactor: -0.03,
			},
		},
		{
			name:     "underestimation boosts stability growth",
			metrics:  healthyMetrics,
			analysis: domain.PredictionAnalysis{UnderestimationBias: 0.30},
			wantDeltas: map[int]float64{
				ParamSuccessBonus:    +0.05,
				ParamStabilityFactor: +0.03,
			},
		},
		{
			name: "low learning efficiency accelerates early learning",
			metrics: func() domain.PerformanceMetrics {
				m := healthyMetrics()
				m.LearningEfficiency = 0.05
				return m
			},
			wantDeltas: map[int]float64{
				ParamInitialStabilityAgain: +0.05,
				ParamInitialStabilityHard:  +0.05,
				ParamInitialStabilityGood:  +0.05,
				ParamInitialStabilityEasy:  +0.05,
				ParamSuccessBonus:          +0.03,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := o.Suggest(tc.metrics(), tc.analysis)
			assert.Equal(t, tc.wantDeltas, s.Deltas)
			assert.Len(t, s.Reasons, 1)
			assert.Equal(t, PriorityLow, s.Priority)
		})
	}
}

func TestSuggestThresholdsAreExclusive(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	// Exactly at a threshold no rule fires.
	m := healthyMetrics()
	m.CorrectRate = 0.80
	assert.True(t, o.Suggest(m, domain.PredictionAnalysis{}).Empty())

	m.CorrectRate = 0.95
	assert.True(t, o.Suggest(m, domain.PredictionAnalysis{}).Empty())

	m = healthyMetrics()
	m.LearningEfficiency = 0.10
	assert.True(t, o.Suggest(m, domain.PredictionAnalysis{}).Empty())

	assert.True(t, o.Suggest(healthyMetrics(),
		domain.PredictionAnalysis{OverestimationBias: 0.20}).Empty())
}

func TestSuggestMergesOverlappingDeltas(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	// Underestimation and low efficiency both touch the success bonus;
	// their deltas accumulate.
	m := healthyMetrics()
	m.LearningEfficiency = 0.05
	s := o.Suggest(m, domain.PredictionAnalysis{UnderestimationBias: 0.30})

	assert.InDelta(t, 0.08, s.Deltas[ParamSuccessBonus], 1e-12)
	assert.Equal(t, PriorityMedium, s.Priority)
	assert.Len(t, s.Reasons, 2)
}

func TestSuggestPriorityEscalation(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	// One rule: low.
	m := healthyMetrics()
	m.CorrectRate = 0.70
	assert.Equal(t, PriorityLow, o.Suggest(m, domain.PredictionAnalysis{}).Priority)

	// Two rules: medium.
	m.LearningEfficiency = 0.05
	assert.Equal(t, PriorityMedium, o.Suggest(m, domain.PredictionAnalysis{}).Priority)

	// Three rules: high.
	s := o.Suggest(m, domain.PredictionAnalysis{UnderestimationBias: 0.30})
	assert.Equal(t, PriorityHigh, s.Priority)
}

func TestSuggestStrugglingLearnerScenario(t *testing.T) {
	t.Parallel()
	o := New(DefaultConfig())

	// A learner at the analysis minimum with 60% correct: the optimizer
	// must soften difficulty with at least medium urgency. Concentrated
	// failures also depress learning efficiency, firing a second rule.
	m := domain.PerformanceMetrics{
		TotalReviews:       50,
		CorrectRate:        0.60,
		RetentionRate:      0.60,
		LearningEfficiency: 0.02,
	}

	s := o.Suggest(m, domain.PredictionAnalysis{})
	require.False(t, s.Empty())

	assert.Negative(t, s.Deltas[ParamDifficultyImpact])
	assert.Positive(t, s.Deltas[ParamDifficultyDecay])
	assert.Contains(t, []Priority{PriorityMedium, PriorityHigh}, s.Priority)
}

func TestApplyConservativeScalingAndClamp(t *testing.T) {
	t.Parallel()

	current := fsrs.DefaultParameters

	t.Run("conservative mode halves deltas", func(t *testing.T) {
		t.Parallel()
		o := New(DefaultConfig())
		s := Suggestion{Deltas: map[int]float64{ParamDifficultyImpact: -0.05}}

		next := o.Apply(current, s)
		assert.InDelta(t, current[ParamDifficultyImpact]-0.025, next[ParamDifficultyImpact], 1e-12)
	})

	t.Run("non-conservative mode applies raw deltas", func(t *testing.T) {
		t.Parallel()
		o := New(Config{Conservative: false})
		s := Suggestion{Deltas: map[int]float64{ParamDifficultyImpact: -0.05}}

		next := o.Apply(current, s)
		assert.InDelta(t, current[ParamDifficultyImpact]-0.05, next[ParamDifficultyImpact], 1e-12)
	})

	t.Run("deltas are clamped to the maximum change", func(t *testing.T) {
		t.Parallel()
		o := New(Config{Conservative: false})
		s := Suggestion{Deltas: map[int]float64{
			ParamSuccessBonus:     5.0,
			ParamDifficultyImpact: -5.0,
		}}

		next := o.Apply(current, s)
		assert.InDelta(t, current[ParamSuccessBonus]+0.1, next[ParamSuccessBonus], 1e-12)
		assert.InDelta(t, current[ParamDifficultyImpact]-0.1, next[ParamDifficultyImpact], 1e-12)
	})

	t.Run("no delta ever exceeds the cap", func(t *testing.T) {
		t.Parallel()
		o := New(DefaultConfig())
		s := Suggestion{Deltas: map[int]float64{0: 100, 5: -100, 16: 0.3}}

		next := o.Apply(current, s)
		for i := 0; i < fsrs.NumParameters; i++ {
			diff := next[i] - current[i]
			assert.LessOrEqual(t, diff, 0.1+1e-12)
			assert.GreaterOrEqual(t, diff, -0.1-1e-12)
		}
	})

	t.Run("unknown indices are ignored", func(t *testing.T) {
		t.Parallel()
		o := New(DefaultConfig())
		s := Suggestion{Deltas: map[int]float64{-1: 0.5, 17: 0.5, 99: 0.5}}

		next := o.Apply(current, s)
		assert.Equal(t, current, next)
	})

	t.Run("input vector is not mutated", func(t *testing.T) {
		t.Parallel()
		o := New(DefaultConfig())
		before := current
		_ = o.Apply(current, Suggestion{Deltas: map[int]float64{0: 0.1}})
		assert.Equal(t, before, current)
	})
}

func TestNewDefaultsZeroConfig(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	assert.Equal(t, 0.5, o.cfg.ConservativeFactor)
	assert.Equal(t, 0.1, o.cfg.MaxParamChange)
}
