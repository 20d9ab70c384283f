// Package fsrs implements the forgetting-curve scheduling model: a
// 17-weight parameter vector, pure stability/difficulty transition
// functions, and the New/Learning/Review/Relearning state machine that
// turns a rating into the card's next due date.
//
// All model functions are pure and safe for concurrent use. Out-of-domain
// numeric input (NaN, negative elapsed time) is rejected with
// domain.ErrInvalidInput instead of being clamped, because a silently
// corrected input would mis-schedule every subsequent review.
package fsrs
