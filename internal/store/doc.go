// Package store defines the persistence boundary of the scheduling
// engine: interfaces for the review log, per-learner parameter vectors,
// card memory states, and optimization audit records, plus the
// transaction helper shared by their implementations. Concrete
// implementations live in internal/platform.
package store
