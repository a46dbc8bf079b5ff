package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

type WeeklyGoalProgressRepo interface {
	Create(dbc dbctx.Context, rows []*types.WeeklyGoalProgress) ([]*types.WeeklyGoalProgress, error)
	// EnsureRow inserts the (user, goal, week) row if it is missing. An existing row,
	// including its frozen target, is left untouched.
	EnsureRow(dbc dbctx.Context, row *types.WeeklyGoalProgress) error
	// IncrementClamped adds by to current_count without exceeding target_count,
	// as one UPDATE statement.
	IncrementClamped(dbc dbctx.Context, userID uuid.UUID, goalID, weekStart string, by int, at time.Time) (int64, error)
	Get(dbc dbctx.Context, userID uuid.UUID, goalID, weekStart string) (*types.WeeklyGoalProgress, error)
	ListByUserAndWeek(dbc dbctx.Context, userID uuid.UUID, weekStart string) ([]*types.WeeklyGoalProgress, error)
	DeleteByUserAndWeek(dbc dbctx.Context, userID uuid.UUID, weekStart string) (int64, error)
}

type weeklyGoalProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyGoalProgressRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyGoalProgressRepo {
	return &weeklyGoalProgressRepo{db: db, log: baseLog.With("repo", "WeeklyGoalProgressRepo")}
}

func (r *weeklyGoalProgressRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *weeklyGoalProgressRepo) Create(dbc dbctx.Context, rows []*types.WeeklyGoalProgress) ([]*types.WeeklyGoalProgress, error) {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return []*types.WeeklyGoalProgress{}, nil
	}
	now := time.Now().UTC()
	for _, x := range rows {
		if x == nil {
			continue
		}
		fillProgressDefaults(x, now)
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *weeklyGoalProgressRepo) EnsureRow(dbc dbctx.Context, row *types.WeeklyGoalProgress) error {
	t := r.dbx(dbc)
	if row == nil || row.UserID == uuid.Nil || row.GoalID == "" || row.WeekStart == "" {
		return nil
	}
	fillProgressDefaults(row, time.Now().UTC())
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "goal_id"}, {Name: "week_start"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *weeklyGoalProgressRepo) IncrementClamped(dbc dbctx.Context, userID uuid.UUID, goalID, weekStart string, by int, at time.Time) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || goalID == "" || weekStart == "" {
		return 0, nil
	}
	if by < 0 {
		by = 0
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.WeeklyGoalProgress{}).
		Where("user_id = ? AND goal_id = ? AND week_start = ?", userID, goalID, weekStart).
		Updates(map[string]interface{}{
			"current_count": gorm.Expr(clampFunc(t)+"(current_count + ?, target_count)", by),
			"updated_at":    at.UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *weeklyGoalProgressRepo) Get(dbc dbctx.Context, userID uuid.UUID, goalID, weekStart string) (*types.WeeklyGoalProgress, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || goalID == "" || weekStart == "" {
		return nil, nil
	}
	var row types.WeeklyGoalProgress
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND goal_id = ? AND week_start = ?", userID, goalID, weekStart).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *weeklyGoalProgressRepo) ListByUserAndWeek(dbc dbctx.Context, userID uuid.UUID, weekStart string) ([]*types.WeeklyGoalProgress, error) {
	t := r.dbx(dbc)
	out := []*types.WeeklyGoalProgress{}
	if userID == uuid.Nil || weekStart == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Order("goal_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weeklyGoalProgressRepo) DeleteByUserAndWeek(dbc dbctx.Context, userID uuid.UUID, weekStart string) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || weekStart == "" {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Delete(&types.WeeklyGoalProgress{})
	return res.RowsAffected, res.Error
}

func fillProgressDefaults(x *types.WeeklyGoalProgress, now time.Time) {
	if x.ID == uuid.Nil {
		x.ID = uuid.New()
	}
	if x.TargetCount < 0 {
		x.TargetCount = 0
	}
	if x.CreatedAt.IsZero() {
		x.CreatedAt = now
	}
	if x.UpdatedAt.IsZero() {
		x.UpdatedAt = now
	}
}

// sqlite spells the two-argument minimum MIN; postgres only has LEAST.
func clampFunc(t *gorm.DB) string {
	if t != nil && t.Dialector != nil && t.Dialector.Name() == "sqlite" {
		return "MIN"
	}
	return "LEAST"
}
