package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

type BaselineActionStateRepo interface {
	Create(dbc dbctx.Context, rows []*types.BaselineActionState) ([]*types.BaselineActionState, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BaselineActionState, error)
	GetByUserAndActionID(dbc dbctx.Context, userID uuid.UUID, actionID string) (*types.BaselineActionState, error)
	// CompleteIncomplete flips is_completed false->true for the listed actions and
	// returns how many rows this call actually changed.
	CompleteIncomplete(dbc dbctx.Context, userID uuid.UUID, actionIDs []string, at time.Time) (int64, error)
	SetCompletion(dbc dbctx.Context, userID uuid.UUID, actionID string, completed bool, at time.Time) (int64, error)
}

type baselineActionStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselineActionStateRepo(db *gorm.DB, baseLog *logger.Logger) BaselineActionStateRepo {
	return &baselineActionStateRepo{db: db, log: baseLog.With("repo", "BaselineActionStateRepo")}
}

func (r *baselineActionStateRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *baselineActionStateRepo) Create(dbc dbctx.Context, rows []*types.BaselineActionState) ([]*types.BaselineActionState, error) {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return []*types.BaselineActionState{}, nil
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

func (r *baselineActionStateRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&types.BaselineActionState{})
	return res.RowsAffected, res.Error
}

func (r *baselineActionStateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BaselineActionState, error) {
	t := r.dbx(dbc)
	out := []*types.BaselineActionState{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("section_index ASC, action_index ASC, action_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *baselineActionStateRepo) GetByUserAndActionID(dbc dbctx.Context, userID uuid.UUID, actionID string) (*types.BaselineActionState, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || actionID == "" {
		return nil, nil
	}
	var row types.BaselineActionState
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND action_id = ?", userID, actionID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *baselineActionStateRepo) CompleteIncomplete(dbc dbctx.Context, userID uuid.UUID, actionIDs []string, at time.Time) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || len(actionIDs) == 0 {
		return 0, nil
	}
	at = at.UTC()
	res := t.WithContext(dbc.Ctx).
		Model(&types.BaselineActionState{}).
		Where("user_id = ? AND action_id IN ? AND is_completed = ?", userID, actionIDs, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
			"updated_at":   at,
		})
	return res.RowsAffected, res.Error
}

func (r *baselineActionStateRepo) SetCompletion(dbc dbctx.Context, userID uuid.UUID, actionID string, completed bool, at time.Time) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || actionID == "" {
		return 0, nil
	}
	at = at.UTC()
	var completedAt interface{}
	if completed {
		completedAt = at
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.BaselineActionState{}).
		Where("user_id = ? AND action_id = ?", userID, actionID).
		Updates(map[string]interface{}{
			"is_completed": completed,
			"completed_at": completedAt,
			"updated_at":   at,
		})
	return res.RowsAffected, res.Error
}
