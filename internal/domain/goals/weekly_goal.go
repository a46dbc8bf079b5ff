package goals

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyGoalDefinition says what is tracked for a user, independent of any week.
type WeeklyGoalDefinition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_weekly_goal_def_user_goal,priority:1" json:"user_id"`
	GoalID      string    `gorm:"column:goal_id;size:128;not null;uniqueIndex:idx_weekly_goal_def_user_goal,priority:2" json:"goal_id"`
	Label       string    `gorm:"column:label;not null" json:"label"`
	TargetCount int       `gorm:"column:target_count;not null;default:0" json:"target_count"`
	IsEnabled   bool      `gorm:"column:is_enabled;not null" json:"is_enabled"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (WeeklyGoalDefinition) TableName() string { return "weekly_goal_definition" }

// WeeklyGoalProgress is a per-week counter. TargetCount is frozen when the row is created.
type WeeklyGoalProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_weekly_goal_progress_key,priority:1" json:"user_id"`
	GoalID       string    `gorm:"column:goal_id;size:128;not null;uniqueIndex:idx_weekly_goal_progress_key,priority:2" json:"goal_id"`
	WeekStart    string    `gorm:"column:week_start;size:10;not null;uniqueIndex:idx_weekly_goal_progress_key,priority:3" json:"week_start"`
	CurrentCount int       `gorm:"column:current_count;not null;default:0" json:"current_count"`
	TargetCount  int       `gorm:"column:target_count;not null;default:0" json:"target_count"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (WeeklyGoalProgress) TableName() string { return "weekly_goal_progress" }
