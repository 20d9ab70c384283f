// Package domain defines the core business entities of the adaptive
// scheduling engine: ratings, per-card memory state, the append-only
// review log, derived performance metrics, and optimization audit
// records. It has no dependencies on storage or transport.
package domain
