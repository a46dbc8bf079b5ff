package aggregates

import "slices"

// TxScope says how many transactions the primary write of an operation spans.
type TxScope string

const (
	// TxSingle commits the whole primary write at once.
	TxSingle TxScope = "single"
	// TxPerStep commits each replace step on its own. A failed step leaves earlier steps committed.
	TxPerStep TxScope = "per_step"
)

// Post-commit steps. Their failures are logged and counted, never returned to the caller.
const (
	StepEventLog      = "event_log"
	StepNotify        = "notify"
	StepRecompute     = "recompute_all_complete"
	StepTouch         = "touch_aggregate"
	StepReadAggregate = "read_aggregate"
)

// Contract describes a goal aggregate's write boundaries.
type Contract struct {
	Name      string
	Tx        TxScope
	Secondary []string
	Notes     string
}

// Aggregate is implemented by every goal aggregate.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) HasSecondary(step string) bool {
	return slices.Contains(c.Secondary, step)
}
