package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
)

// Models lists every table owned by the goals engine, in migration order.
func Models() []interface{} {
	return []interface{}{
		// =========================
		// Baseline checklist
		// =========================
		&types.BaselinePlanAggregate{},
		&types.BaselineActionState{},

		// =========================
		// Weekly goals
		// =========================
		&types.WeeklyGoalDefinition{},
		&types.WeeklyGoalProgress{},

		// =========================
		// Audit
		// =========================
		&types.GoalEventLog{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func EnsureGoalIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_weekly_goal_progress_user_week ON weekly_goal_progress(user_id, week_start);`).Error; err != nil {
		return fmt.Errorf("create idx_weekly_goal_progress_user_week: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_baseline_action_user_open ON baseline_action_state(user_id, is_completed);`).Error; err != nil {
		return fmt.Errorf("create idx_baseline_action_user_open: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating goal tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := EnsureGoalIndexes(s.db); err != nil {
		return fmt.Errorf("ensure goal indexes: %w", err)
	}
	return nil
}
