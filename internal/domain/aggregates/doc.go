// Package aggregates declares the goal engine's write boundaries: the baseline checklist,
// weekly counters, onboarding materialization and the audit trail reader.
//
// Implementations live in internal/data/aggregates.
package aggregates
