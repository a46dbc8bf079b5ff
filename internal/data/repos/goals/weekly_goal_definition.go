package goals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

type WeeklyGoalDefinitionRepo interface {
	Create(dbc dbctx.Context, rows []*types.WeeklyGoalDefinition) ([]*types.WeeklyGoalDefinition, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WeeklyGoalDefinition, error)
	ListEnabledByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WeeklyGoalDefinition, error)
	ListEnabledByUserAndGoalIDs(dbc dbctx.Context, userID uuid.UUID, goalIDs []string) ([]*types.WeeklyGoalDefinition, error)
	SetEnabled(dbc dbctx.Context, userID uuid.UUID, goalID string, enabled bool, at time.Time) (int64, error)
}

type weeklyGoalDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyGoalDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyGoalDefinitionRepo {
	return &weeklyGoalDefinitionRepo{db: db, log: baseLog.With("repo", "WeeklyGoalDefinitionRepo")}
}

func (r *weeklyGoalDefinitionRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *weeklyGoalDefinitionRepo) Create(dbc dbctx.Context, rows []*types.WeeklyGoalDefinition) ([]*types.WeeklyGoalDefinition, error) {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return []*types.WeeklyGoalDefinition{}, nil
	}
	now := time.Now().UTC()
	for _, x := range rows {
		if x == nil {
			continue
		}
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
		if x.CreatedAt.IsZero() {
			x.CreatedAt = now
		}
		x.UpdatedAt = now
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *weeklyGoalDefinitionRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&types.WeeklyGoalDefinition{})
	return res.RowsAffected, res.Error
}

func (r *weeklyGoalDefinitionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WeeklyGoalDefinition, error) {
	t := r.dbx(dbc)
	out := []*types.WeeklyGoalDefinition{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, goal_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weeklyGoalDefinitionRepo) ListEnabledByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WeeklyGoalDefinition, error) {
	t := r.dbx(dbc)
	out := []*types.WeeklyGoalDefinition{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_enabled = ?", userID, true).
		Order("created_at ASC, goal_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weeklyGoalDefinitionRepo) ListEnabledByUserAndGoalIDs(dbc dbctx.Context, userID uuid.UUID, goalIDs []string) ([]*types.WeeklyGoalDefinition, error) {
	t := r.dbx(dbc)
	out := []*types.WeeklyGoalDefinition{}
	if userID == uuid.Nil || len(goalIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND goal_id IN ? AND is_enabled = ?", userID, goalIDs, true).
		Order("goal_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weeklyGoalDefinitionRepo) SetEnabled(dbc dbctx.Context, userID uuid.UUID, goalID string, enabled bool, at time.Time) (int64, error) {
	t := r.dbx(dbc)
	goalID = strings.TrimSpace(goalID)
	if userID == uuid.Nil || goalID == "" {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.WeeklyGoalDefinition{}).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Updates(map[string]interface{}{
			"is_enabled": enabled,
			"updated_at": at.UTC(),
		})
	return res.RowsAffected, res.Error
}
