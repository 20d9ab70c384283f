package fsrs

import (
	"fmt"
	"math"

	"github.com/retentlabs/retent/internal/domain"
)

// NumParameters is the length of the weight vector.
const NumParameters = 17

// Parameters is the ordered weight vector w0..w16 governing every
// stability and difficulty transition:
//
//	w0..w3   initial stability per rating (Again, Hard, Good, Easy)
//	w4, w5   initial difficulty base and rating slope
//	w6       difficulty impact of a rating
//	w7       difficulty mean-reversion weight
//	w8..w10  recall stability growth (scale, stability decay, retrievability gain)
//	w11..w14 lapse stability reset
//	w15      hard penalty
//	w16      easy bonus
//
// Owned per learner and mutated only through the optimization
// orchestrator, which validates and commits vectors atomically.
type Parameters [NumParameters]float64

// DefaultParameters are population-level weights used until a learner
// has enough history to optimize their own.
var DefaultParameters = Parameters{
	0.40255, 1.18385, 3.173, 15.69105,
	7.1949, 0.5345, 1.4604, 0.0046,
	1.54575, 0.1192, 1.01925, 1.9395,
	0.11, 0.29605, 2.2698, 0.2315,
	2.9898,
}

// LowerBounds is the minimum allowed value for each weight.
var LowerBounds = Parameters{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0,
}

// UpperBounds is the maximum allowed value for each weight.
var UpperBounds = Parameters{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0,
}

// Validate checks that every weight is within its bounded domain.
// Returns domain.ErrValidationFailed (wrapped with the offending index)
// on the first violation.
func (p Parameters) Validate() error {
	for i := 0; i < NumParameters; i++ {
		if math.IsNaN(p[i]) || p[i] < LowerBounds[i] || p[i] > UpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				domain.ErrValidationFailed, i, p[i], LowerBounds[i], UpperBounds[i])
		}
	}
	return nil
}
