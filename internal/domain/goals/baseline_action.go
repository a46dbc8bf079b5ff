package goals

import (
	"time"

	"github.com/google/uuid"
)

// BaselineActionState is one row of a user's one-shot onboarding checklist.
type BaselineActionState struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_baseline_action_user_action,priority:1" json:"user_id"`
	ActionID     string     `gorm:"column:action_id;size:128;not null;uniqueIndex:idx_baseline_action_user_action,priority:2" json:"action_id"`
	Label        string     `gorm:"column:label;not null" json:"label"`
	SectionTitle string     `gorm:"column:section_title;not null" json:"section_title"`
	SectionIndex int        `gorm:"column:section_index;not null;default:0" json:"section_index"`
	ActionIndex  int        `gorm:"column:action_index;not null;default:0" json:"action_index"`
	IsCompleted  bool       `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (BaselineActionState) TableName() string { return "baseline_action_state" }

// BaselinePlanAggregate is the per-user plan snapshot plus the derived all-complete flag.
type BaselinePlanAggregate struct {
	UserID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Summary                string     `gorm:"column:summary;type:text" json:"summary"`
	TargetRole             string     `gorm:"column:target_role" json:"target_role"`
	Timeline               string     `gorm:"column:timeline;size:32" json:"timeline"`
	TargetDate             *time.Time `gorm:"column:target_date" json:"target_date,omitempty"`
	WeeklyGoalsDescription string     `gorm:"column:weekly_goals_description;type:text" json:"weekly_goals_description"`
	BaselineAllComplete    bool       `gorm:"column:baseline_all_complete;not null;default:false" json:"baseline_all_complete"`
	AllCompleteAt          *time.Time `gorm:"column:all_complete_at" json:"all_complete_at,omitempty"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null" json:"updated_at"`
}

func (BaselinePlanAggregate) TableName() string { return "baseline_plan_aggregate" }
