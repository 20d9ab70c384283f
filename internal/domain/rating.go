package domain

import "fmt"

// Rating is a learner's graded response to a card review on the 1-4
// Again/Hard/Good/Easy scale. This is the single rating convention for
// the whole engine; every call site uses this enum rather than raw ints.
//
// The success subset is {Hard, Good, Easy}: any rating other than Again
// counts as a recall. Again is the only lapse.
type Rating int

// Possible rating values.
const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// IsSuccess reports whether the rating counts as a successful recall.
func (r Rating) IsSuccess() bool {
	return r != Again && r.IsValid()
}

// String returns the lowercase name of the rating.
func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}

// ParseRating converts a wire-format rating name to a Rating.
// Returns ErrInvalidRating for unknown names.
func ParseRating(s string) (Rating, error) {
	switch s {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
}
