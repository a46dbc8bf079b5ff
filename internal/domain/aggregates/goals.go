package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/domain/goals"
)

var BaselineActionsAggregateContract = Contract{
	Name:      "Goals.BaselineActionsAggregate",
	Tx:        TxSingle,
	Secondary: []string{StepTouch, StepRecompute, StepReadAggregate, StepEventLog, StepNotify},
	Notes:     "The completion write is primary; the all-complete recount runs after commit in its own transaction.",
}

var WeeklyGoalsAggregateContract = Contract{
	Name:      "Goals.WeeklyGoalsAggregate",
	Tx:        TxSingle,
	Secondary: []string{StepEventLog, StepNotify},
	Notes:     "Increments are one clamped UPDATE per goal. Week rollover is lazy.",
}

var OnboardingAggregateContract = Contract{
	Name:      "Goals.OnboardingAggregate",
	Tx:        TxPerStep,
	Secondary: []string{StepEventLog, StepNotify},
	Notes:     "Plan snapshot, baseline rows and weekly rows are each replaced in their own transaction.",
}

// BaselineActionsAggregate tracks the one-shot onboarding checklist.
//
// Write failures return *Error with CodeNotFound (ManualToggle only), CodeValidation,
// or a storage code (CodeInternal, CodeRetryable, CodeConflict).
type BaselineActionsAggregate interface {
	Aggregate

	// MarkComplete flips every incomplete action the trigger maps to. Unknown triggers are a no-op.
	MarkComplete(ctx context.Context, in MarkCompleteInput) (MarkCompleteResult, error)

	// ManualToggle sets one action to the requested state in either direction.
	ManualToggle(ctx context.Context, in ManualToggleInput) (UpdatedAction, error)

	// GetStatus is a read-only projection of the checklist.
	// A user with no baseline actions is never all-complete.
	GetStatus(ctx context.Context, userID uuid.UUID) (BaselineStatus, error)
}

type MarkCompleteInput struct {
	UserID  uuid.UUID
	Trigger string
}

type MarkCompleteResult struct {
	ActionsCompletedCount int
	ActionIDs             []string
	AllComplete           bool
}

type ManualToggleInput struct {
	UserID      uuid.UUID
	ActionID    string
	IsCompleted bool
}

type UpdatedAction struct {
	ActionID     string     `json:"action_id"`
	Label        string     `json:"label"`
	SectionTitle string     `json:"section_title"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	AllComplete  bool       `json:"all_complete"`
}

type BaselineActionView struct {
	ActionID     string     `json:"action_id"`
	Label        string     `json:"label"`
	SectionTitle string     `json:"section_title"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type PlanSnapshot struct {
	Summary                string     `json:"summary"`
	TargetRole             string     `json:"target_role"`
	Timeline               string     `json:"timeline"`
	TargetDate             *time.Time `json:"target_date,omitempty"`
	WeeklyGoalsDescription string     `json:"weekly_goals_description"`
}

type BaselineStatus struct {
	Actions          []BaselineActionView `json:"actions"`
	AllComplete      bool                 `json:"all_complete"`
	TotalActions     int                  `json:"total_actions"`
	CompletedActions int                  `json:"completed_actions"`
	Plan             *PlanSnapshot        `json:"plan,omitempty"`
}

// WeeklyGoalsAggregate tracks recurring per-week goal counters.
type WeeklyGoalsAggregate interface {
	Aggregate

	// IncrementProgress advances every enabled goal the trigger maps to, clamped at the week's target.
	IncrementProgress(ctx context.Context, in IncrementProgressInput) (IncrementProgressResult, error)

	// GetProgress joins enabled definitions with the current week's counters.
	GetProgress(ctx context.Context, userID uuid.UUID) (WeeklyProgress, error)

	// SetGoalEnabled turns a weekly goal off or back on without touching its progress rows.
	SetGoalEnabled(ctx context.Context, in SetGoalEnabledInput) error
}

type SetGoalEnabledInput struct {
	UserID  uuid.UUID
	GoalID  string
	Enabled bool
}

type IncrementProgressInput struct {
	UserID  uuid.UUID
	Trigger string
	// IncrementBy defaults to 1 when zero.
	IncrementBy int
}

type IncrementProgressResult struct {
	GoalsUpdatedCount int
	GoalIDs           []string
	WeekStart         string
	// Counts holds current_count after the increment, per updated goal.
	Counts map[string]int
}

type WeeklyGoalView struct {
	GoalID       string `json:"goal_id"`
	Label        string `json:"label"`
	TargetCount  int    `json:"target_count"`
	CurrentCount int    `json:"current_count"`
	IsComplete   bool   `json:"is_complete"`
}

type WeeklyProgress struct {
	Goals     []WeeklyGoalView `json:"goals"`
	WeekStart string           `json:"week_start"`
}

// OnboardingAggregate (re)seeds a user's tracking state from a generated plan.
type OnboardingAggregate interface {
	Aggregate

	Materialize(ctx context.Context, in MaterializeInput) (MaterializeResult, error)
}

type MaterializeInput struct {
	UserID         uuid.UUID
	Plan           goals.GeneratedPlan
	ConfirmedGoals []goals.ConfirmedGoal
	TargetRole     string
	Timeline       string
}

type MaterializeResult struct {
	BaselineActionCount int
	WeeklyGoalCount     int
	WeekStart           string
	TargetDate          *time.Time
}

// GoalEventReader exposes the audit trail for display and support tooling.
type GoalEventReader interface {
	ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*goals.GoalEventLog, error)
}
