// Package store provides SQLite-backed storage for rule evaluations.
//
// The store is an append-only log with two tables:
//   - rules: rule expressions keyed by content hash
//   - evaluations: one row per (rule, actor, cell) evaluation and its outcome
//
// Ordering uses the seq column, a logical clock, never timestamps. Every read
// orders by seq so repeated runs list evaluations identically.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: evaluations must reference a stored rule
//
// Rule hashes come from internal/canonical: RFC 8785 canonical JSON and
// SHA-256 with domain separation.
package store
