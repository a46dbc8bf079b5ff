package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventBaselineActionCompleted    = "baseline_action_completed"
	EventBaselineActionManualToggle = "baseline_action_manual_toggle"
	EventBaselineAllComplete        = "baseline_all_complete"
	EventWeeklyGoalProgress         = "weekly_goal_progress"
	EventWeeklyGoalToggled          = "weekly_goal_toggled"
	EventPlanCreated                = "plan_created"
)

// Goal ids used on log rows that are not about a single trigger or action.
const (
	LogGoalBaseline   = "baseline"
	LogGoalOnboarding = "onboarding"
)

// GoalEventLog is the append-only audit trail. Rows are never updated or deleted.
type GoalEventLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_goal_event_user_time,priority:1;index:idx_goal_event_user_type,priority:1" json:"user_id"`
	EventType string         `gorm:"column:event_type;size:64;not null;index:idx_goal_event_user_type,priority:2" json:"event_type"`
	GoalID    string         `gorm:"column:goal_id;size:128" json:"goal_id"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;index:idx_goal_event_user_time,priority:2" json:"created_at"`
}

func (GoalEventLog) TableName() string { return "goal_event_log" }
