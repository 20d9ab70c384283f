// Package optimizer turns analyzer output into bounded parameter-vector
// deltas via a declarative rule table, and applies them conservatively.
// It never mutates stored state; committing the result is the
// orchestrator's job.
package optimizer

import (
	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/domain/fsrs"
)

// Priority signals how urgently a suggestion should be acted on. It
// escalates with the number of triggered rules.
type Priority string

// Priority levels.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Suggestion is a sparse set of parameter deltas plus the reasons that
// produced them. Deltas are raw rule output; conservative scaling and
// clamping happen in Apply.
type Suggestion struct {
	Deltas   map[int]float64
	Reasons  []string
	Priority Priority
}

// Empty reports whether no rule fired.
func (s Suggestion) Empty() bool {
	return len(s.Deltas) == 0
}

// Config names the scaling constants that were previously magic
// literals. Zero values take the documented defaults.
type Config struct {
	// ConservativeFactor scales every delta before clamping when
	// Conservative is on. Default 0.5.
	ConservativeFactor float64
	// MaxParamChange caps the magnitude of any single applied delta.
	// Default 0.1.
	MaxParamChange float64
	// Conservative enables delta scaling. Default true via NewOptimizer.
	Conservative bool
}

// DefaultConfig returns the standard conservative configuration.
func DefaultConfig() Config {
	return Config{
		ConservativeFactor: 0.5,
		MaxParamChange:     0.1,
		Conservative:       true,
	}
}

// Optimizer evaluates the rule table and applies suggestions. Stateless
// and safe for concurrent use.
type Optimizer struct {
	cfg Config
}

// New creates an Optimizer. Zero-valued config fields are defaulted.
func New(cfg Config) *Optimizer {
	if cfg.ConservativeFactor == 0 {
		cfg.ConservativeFactor = 0.5
	}
	if cfg.MaxParamChange == 0 {
		cfg.MaxParamChange = 0.1
	}
	return &Optimizer{cfg: cfg}
}

// Suggest evaluates every rule against the metrics and analysis and
// merges the deltas of those that fire. Deltas targeting the same index
// accumulate.
func (o *Optimizer) Suggest(
	metrics domain.PerformanceMetrics,
	analysis domain.PredictionAnalysis,
) Suggestion {
	s := Suggestion{Deltas: make(map[int]float64)}

	triggered := 0
	for _, r := range ruleTable {
		if !r.applies(metrics, analysis) {
			continue
		}
		triggered++
		s.Reasons = append(s.Reasons, r.reason)
		for idx, delta := range r.deltas {
			s.Deltas[idx] += delta
		}
	}

	switch {
	case triggered >= 3:
		s.Priority = PriorityHigh
	case triggered == 2:
		s.Priority = PriorityMedium
	default:
		s.Priority = PriorityLow
	}

	return s
}

// Apply adds the suggestion's deltas to the current vector. Each delta
// is scaled by ConservativeFactor (when conservative mode is on), then
// clamped to ±MaxParamChange. Indices outside the vector are ignored,
// never an error. The result is a candidate: the orchestrator still
// validates it against the per-component bounds before committing.
func (o *Optimizer) Apply(current fsrs.Parameters, s Suggestion) fsrs.Parameters {
	next := current
	for idx, delta := range s.Deltas {
		if idx < 0 || idx >= fsrs.NumParameters {
			continue
		}
		if o.cfg.Conservative {
			delta *= o.cfg.ConservativeFactor
		}
		if delta > o.cfg.MaxParamChange {
			delta = o.cfg.MaxParamChange
		}
		if delta < -o.cfg.MaxParamChange {
			delta = -o.cfg.MaxParamChange
		}
		next[idx] += delta
	}
	return next
}
