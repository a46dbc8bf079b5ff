package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/careercoach-backend/internal/data/repos/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

type BaselineActionStateRepo = goals.BaselineActionStateRepo
type BaselinePlanAggregateRepo = goals.BaselinePlanAggregateRepo
type WeeklyGoalDefinitionRepo = goals.WeeklyGoalDefinitionRepo
type WeeklyGoalProgressRepo = goals.WeeklyGoalProgressRepo
type GoalEventLogRepo = goals.GoalEventLogRepo

func NewBaselineActionStateRepo(db *gorm.DB, baseLog *logger.Logger) BaselineActionStateRepo {
	return goals.NewBaselineActionStateRepo(db, baseLog)
}
func NewBaselinePlanAggregateRepo(db *gorm.DB, baseLog *logger.Logger) BaselinePlanAggregateRepo {
	return goals.NewBaselinePlanAggregateRepo(db, baseLog)
}
func NewWeeklyGoalDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyGoalDefinitionRepo {
	return goals.NewWeeklyGoalDefinitionRepo(db, baseLog)
}
func NewWeeklyGoalProgressRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyGoalProgressRepo {
	return goals.NewWeeklyGoalProgressRepo(db, baseLog)
}
func NewGoalEventLogRepo(db *gorm.DB, baseLog *logger.Logger) GoalEventLogRepo {
	return goals.NewGoalEventLogRepo(db, baseLog)
}

// Goals groups the goal-engine repos for wiring.
type Goals struct {
	BaselineActions BaselineActionStateRepo
	BaselineAggs    BaselinePlanAggregateRepo
	WeeklyDefs      WeeklyGoalDefinitionRepo
	WeeklyProgress  WeeklyGoalProgressRepo
	GoalEvents      GoalEventLogRepo
}

func NewGoals(db *gorm.DB, baseLog *logger.Logger) Goals {
	return Goals{
		BaselineActions: NewBaselineActionStateRepo(db, baseLog),
		BaselineAggs:    NewBaselinePlanAggregateRepo(db, baseLog),
		WeeklyDefs:      NewWeeklyGoalDefinitionRepo(db, baseLog),
		WeeklyProgress:  NewWeeklyGoalProgressRepo(db, baseLog),
		GoalEvents:      NewGoalEventLogRepo(db, baseLog),
	}
}
