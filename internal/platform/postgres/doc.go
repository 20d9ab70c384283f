// Package postgres implements the store interfaces on PostgreSQL via
// database/sql with the pgx stdlib driver. Parameter vectors and derived
// metrics are stored as JSON: float64 values are encoded with the
// shortest round-trip representation, so a committed vector reads back
// bit-identical.
package postgres
