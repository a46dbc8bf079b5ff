package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
)

// SeedBaselineActions inserts one incomplete action per id, all in a single section.
func SeedBaselineActions(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, actionIDs ...string) []*types.BaselineActionState {
	tb.Helper()
	now := time.Now().UTC()
	rows := make([]*types.BaselineActionState, 0, len(actionIDs))
	for i, id := range actionIDs {
		rows = append(rows, &types.BaselineActionState{
			ID:           uuid.New(),
			UserID:       userID,
			ActionID:     id,
			Label:        fmt.Sprintf("label %s", id),
			SectionTitle: "Profile",
			SectionIndex: 0,
			ActionIndex:  i,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if len(rows) == 0 {
		return rows
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		tb.Fatalf("seed baseline actions: %v", err)
	}
	return rows
}

func SeedBaselineAggregate(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.BaselinePlanAggregate {
	tb.Helper()
	now := time.Now().UTC()
	row := &types.BaselinePlanAggregate{
		UserID:     userID,
		Summary:    "summary",
		TargetRole: "Staff Engineer",
		Timeline:   types.Timeline3Months,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed baseline aggregate: %v", err)
	}
	return row
}

func SeedWeeklyGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, goalID string, target int, enabled bool) *types.WeeklyGoalDefinition {
	tb.Helper()
	now := time.Now().UTC()
	row := &types.WeeklyGoalDefinition{
		ID:          uuid.New(),
		UserID:      userID,
		GoalID:      goalID,
		Label:       "label " + goalID,
		TargetCount: target,
		IsEnabled:   enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed weekly goal: %v", err)
	}
	return row
}

func SeedWeeklyProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, goalID, weekStart string, current, target int) *types.WeeklyGoalProgress {
	tb.Helper()
	now := time.Now().UTC()
	row := &types.WeeklyGoalProgress{
		ID:           uuid.New(),
		UserID:       userID,
		GoalID:       goalID,
		WeekStart:    weekStart,
		CurrentCount: current,
		TargetCount:  target,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed weekly progress: %v", err)
	}
	return row
}

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
