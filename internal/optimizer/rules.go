package optimizer

import (
	"github.com/retentlabs/retent/internal/domain"
)

// Named parameter-vector indices the rule table adjusts. See
// fsrs.Parameters for the full layout.
const (
	ParamInitialStabilityAgain = 0
	ParamInitialStabilityHard  = 1
	ParamInitialStabilityGood  = 2
	ParamInitialStabilityEasy  = 3
	ParamDifficultyImpact      = 6
	ParamDifficultyDecay       = 7
	ParamSuccessBonus          = 8
	ParamStabilityFactor       = 10
	ParamEasyBonus             = 16
)

// Rule thresholds. These are part of the optimizer's contract, not
// tuning knobs: tests and the audit trail depend on them.
const (
	lowCorrectRate        = 0.80
	highCorrectRate       = 0.95
	biasThreshold         = 0.20
	lowLearningEfficiency = 0.10
)

// rule is one row of the suggestion table: a predicate over the
// analyzer's output, the sparse parameter deltas it proposes, and the
// human-readable reason recorded in the audit log. Rules are evaluated
// uniformly; adding behavior means adding a row, not a branch.
type rule struct {
	name    string
	reason  string
	applies func(m domain.PerformanceMetrics, p domain.PredictionAnalysis) bool
	deltas  map[int]float64
}

var ruleTable = []rule{
	{
		name:   "low_correct_rate",
		reason: "correct rate below 80%: reduce difficulty over-penalization",
		applies: func(m domain.PerformanceMetrics, _ domain.PredictionAnalysis) bool {
			return m.CorrectRate < lowCorrectRate
		},
		deltas: map[int]float64{
			ParamDifficultyImpact: -0.05,
			ParamDifficultyDecay:  +0.02,
		},
	},
	{
		name:   "high_correct_rate",
		reason: "correct rate above 95%: increase challenge",
		applies: func(m domain.PerformanceMetrics, _ domain.PredictionAnalysis) bool {
			return m.CorrectRate > highCorrectRate
		},
		deltas: map[int]float64{
			ParamDifficultyImpact: +0.05,
			ParamEasyBonus:        -0.05,
		},
	},
	{
		name:   "overestimation",
		reason: "model overestimates recall: temper stability growth",
		applies: func(_ domain.PerformanceMetrics, p domain.PredictionAnalysis) bool {
			return p.OverestimationBias > biasThreshold
		},
		deltas: map[int]float64{
			ParamSuccessBonus:    -0.05,
			ParamStabilityFactor: -0.03,
		},
	},
	{
		name:   "underestimation",
		reason: "model underestimates recall: boost stability growth",
		applies: func(_ domain.PerformanceMetrics, p domain.PredictionAnalysis) bool {
			return p.UnderestimationBias > biasThreshold
		},
		deltas: map[int]float64{
			ParamSuccessBonus:    +0.05,
			ParamStabilityFactor: +0.03,
		},
	},
	{
		name:   "low_learning_efficiency",
		reason: "stability gains too small: accelerate early learning",
		applies: func(m domain.PerformanceMetrics, _ domain.PredictionAnalysis) bool {
			return m.LearningEfficiency < lowLearningEfficiency
		},
		deltas: map[int]float64{
			ParamInitialStabilityAgain: +0.05,
			ParamInitialStabilityHard:  +0.05,
			ParamInitialStabilityGood:  +0.05,
			ParamInitialStabilityEasy:  +0.05,
			ParamSuccessBonus:          +0.03,
		},
	},
}
