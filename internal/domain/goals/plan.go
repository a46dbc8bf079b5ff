package goals

import (
	"strings"
	"time"
)

// GeneratedPlan is the shape of an externally generated onboarding plan.
// Only the structure is consumed here; content is owned by the plan generator.
type GeneratedPlan struct {
	Summary         string            `json:"summary"`
	BaselineActions []BaselineSection `json:"baselineActions"`
	WeeklyGoals     WeeklyGoalsBrief  `json:"weeklyGoals"`
}

type BaselineSection struct {
	Title   string       `json:"title"`
	Actions []PlanAction `json:"actions"`
}

type PlanAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type WeeklyGoalsBrief struct {
	Description string `json:"description"`
}

// ConfirmedGoal is a weekly goal the user accepted during onboarding.
// Target is optional; a missing target means 0.
type ConfirmedGoal struct {
	GoalID string `json:"goalId"`
	Label  string `json:"label"`
	Target *int   `json:"target,omitempty"`
}

// ActionCount returns the number of actions across all sections.
func (p GeneratedPlan) ActionCount() int {
	n := 0
	for _, s := range p.BaselineActions {
		n += len(s.Actions)
	}
	return n
}

const (
	Timeline1Month   = "1_month"
	Timeline3Months  = "3_months"
	Timeline6Months  = "6_months"
	Timeline12Months = "12_months"
)

var timelineMonths = map[string]int{
	Timeline1Month:   1,
	Timeline3Months:  3,
	Timeline6Months:  6,
	Timeline12Months: 12,
}

// TargetDate derives the plan's target date from a timeline selection.
// Unknown selections have no target date.
func TargetDate(timeline string, now time.Time) *time.Time {
	months, ok := timelineMonths[strings.TrimSpace(strings.ToLower(timeline))]
	if !ok {
		return nil
	}
	t := now.AddDate(0, months, 0).UTC()
	return &t
}
