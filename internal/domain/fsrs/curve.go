package fsrs

import (
	"fmt"
	"math"

	"github.com/retentlabs/retent/internal/domain"
)

// Forgetting-curve shape constants. With factor = 19/81 the curve is
// calibrated so that R(t = S) = 0.9 under default parameters.
const (
	decay  = -0.5
	factor = 19.0 / 81.0
)

const minStability = 0.001

// Model evaluates the forgetting-curve formulas for one parameter
// vector. It holds no mutable state and is safe for concurrent use.
type Model struct {
	w Parameters
}

// NewModel creates a Model from a validated parameter vector.
func NewModel(w Parameters) (*Model, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Model{w: w}, nil
}

// Parameters returns the weight vector the model was built from.
func (m *Model) Parameters() Parameters {
	return m.w
}

// Retrievability computes the probability of recall after elapsedDays
// given the card's stability: R(t, S) = (1 + factor*t/S)^decay.
//
// R(0, S) = 1 for every valid S, R decreases monotonically in t and
// approaches 0 asymptotically without ever going negative.
func (m *Model) Retrievability(elapsedDays, stability float64) (float64, error) {
	if math.IsNaN(elapsedDays) || elapsedDays < 0 {
		return 0, fmt.Errorf("%w: elapsed days %f", domain.ErrInvalidInput, elapsedDays)
	}
	if math.IsNaN(stability) || stability <= 0 {
		return 0, fmt.Errorf("%w: stability %f", domain.ErrInvalidInput, stability)
	}
	return math.Pow(1+factor*elapsedDays/stability, decay), nil
}

// InitialStability returns the seed stability for a card's first review,
// selected from the parameter vector by rating: S0(G) = w[G-1].
func (m *Model) InitialStability(rating domain.Rating) (float64, error) {
	if !rating.IsValid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}
	return clampStability(m.w[rating-1]), nil
}

// InitialDifficulty returns the seed difficulty for a card's first
// review: D0(G) = w4 - e^(w5*(G-1)) + 1, clamped to [1, 10].
func (m *Model) InitialDifficulty(rating domain.Rating) (float64, error) {
	if !rating.IsValid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}
	return clampDifficulty(m.initialDifficultyRaw(rating)), nil
}

// initialDifficultyRaw is the unclamped D0, used as the mean-reversion
// target in NextDifficulty.
func (m *Model) initialDifficultyRaw(rating domain.Rating) float64 {
	return m.w[4] - math.Exp(m.w[5]*float64(rating-1)) + 1
}

// NextStability computes the card's stability after a review. Success
// ratings grow stability; the growth factor depends on difficulty (harder
// cards grow slower), current stability (diminishing returns), and
// retrievability at review time (reviews near the forgetting point grow
// stability faster). A lapse resets stability downward via a distinct
// formula and never increases it. The result is strictly positive.
func (m *Model) NextStability(
	rating domain.Rating,
	stability, difficulty, retrievability float64,
) (float64, error) {
	if !rating.IsValid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}
	if math.IsNaN(stability) || stability <= 0 {
		return 0, fmt.Errorf("%w: stability %f", domain.ErrInvalidInput, stability)
	}
	if math.IsNaN(difficulty) || difficulty < 1 || difficulty > 10 {
		return 0, fmt.Errorf("%w: difficulty %f", domain.ErrInvalidInput, difficulty)
	}
	if math.IsNaN(retrievability) || retrievability < 0 || retrievability > 1 {
		return 0, fmt.Errorf("%w: retrievability %f", domain.ErrInvalidInput, retrievability)
	}

	if rating == domain.Again {
		return m.forgetStability(stability, difficulty, retrievability), nil
	}
	return m.recallStability(rating, stability, difficulty, retrievability), nil
}

// recallStability implements the success regime:
// S' = S * (1 + e^w8 * (11-D) * S^(-w9) * (e^((1-R)*w10) - 1) * penalty * bonus)
func (m *Model) recallStability(
	rating domain.Rating,
	s, d, r float64,
) float64 {
	hardPenalty := 1.0
	if rating == domain.Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == domain.Easy {
		easyBonus = m.w[16]
	}
	grown := s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-r)*m.w[10])-1)*
		hardPenalty*easyBonus)
	// Success never shrinks stability.
	return clampStability(math.Max(grown, s))
}

// forgetStability implements the lapse regime:
// S' = w11 * D^(-w12) * ((S+1)^w13 - 1) * e^((1-R)*w14), capped at S.
func (m *Model) forgetStability(s, d, r float64) float64 {
	reset := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	// A lapse never increases stability.
	return clampStability(math.Min(reset, s))
}

// NextDifficulty computes the card's difficulty after a review.
// Difficulty moves opposite to rating quality, with linear damping near
// the 10 ceiling and mean reversion toward D0(Easy) so repeated easy
// reviews pull difficulty back to baseline. Clamped to [1, 10].
func (m *Model) NextDifficulty(rating domain.Rating, difficulty float64) (float64, error) {
	if !rating.IsValid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}
	if math.IsNaN(difficulty) || difficulty < 1 || difficulty > 10 {
		return 0, fmt.Errorf("%w: difficulty %f", domain.ErrInvalidInput, difficulty)
	}

	deltaD := -m.w[6] * float64(rating-3)
	damped := difficulty + (10-difficulty)*deltaD/9
	reverted := m.w[7]*m.initialDifficultyRaw(domain.Easy) + (1-m.w[7])*damped
	return clampDifficulty(reverted), nil
}

// NextInterval inverts the forgetting curve: the elapsed time at which
// predicted retrievability equals desiredRetention, rounded to whole
// days and clamped to [1, maxInterval].
func (m *Model) NextInterval(stability, desiredRetention float64, maxInterval int) (int, error) {
	if math.IsNaN(stability) || stability <= 0 {
		return 0, fmt.Errorf("%w: stability %f", domain.ErrInvalidInput, stability)
	}
	if math.IsNaN(desiredRetention) || desiredRetention <= 0 || desiredRetention >= 1 {
		return 0, fmt.Errorf("%w: desired retention %f", domain.ErrInvalidInput, desiredRetention)
	}

	ivl := stability / factor * (math.Pow(desiredRetention, 1.0/decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > maxInterval {
		days = maxInterval
	}
	return days, nil
}

func clampStability(s float64) float64 {
	return math.Max(s, minStability)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
