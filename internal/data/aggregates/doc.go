// Package aggregates implements the goal engine's aggregates on top of the goal repos.
//
// Each write runs its primary change through executeWrite. Audit appends, realtime
// notifications and the baseline all-complete recount run afterwards through secondary,
// which logs and counts failures instead of returning them.
package aggregates
