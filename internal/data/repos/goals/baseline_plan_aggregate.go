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

type BaselinePlanAggregateRepo interface {
	// Upsert writes the plan snapshot and resets the all-complete flag.
	Upsert(dbc dbctx.Context, row *types.BaselinePlanAggregate) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.BaselinePlanAggregate, error)
	// RecomputeAllComplete brings baseline_all_complete in line with the user's action rows
	// (true iff at least one row exists and none is incomplete). It reports the resulting
	// flag and whether this call changed it. A user without an aggregate row reports false.
	RecomputeAllComplete(dbc dbctx.Context, userID uuid.UUID, at time.Time) (complete bool, flipped bool, err error)
	Touch(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type baselinePlanAggregateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselinePlanAggregateRepo(db *gorm.DB, baseLog *logger.Logger) BaselinePlanAggregateRepo {
	return &baselinePlanAggregateRepo{db: db, log: baseLog.With("repo", "BaselinePlanAggregateRepo")}
}

func (r *baselinePlanAggregateRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *baselinePlanAggregateRepo) Upsert(dbc dbctx.Context, row *types.BaselinePlanAggregate) error {
	t := r.dbx(dbc)
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}
	row.BaselineAllComplete = false
	row.AllCompleteAt = nil
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"summary",
				"target_role",
				"timeline",
				"target_date",
				"weekly_goals_description",
				"baseline_all_complete",
				"all_complete_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *baselinePlanAggregateRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.BaselinePlanAggregate, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.BaselinePlanAggregate
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// Flips the flag only where it disagrees with the action rows.
const flipAllCompleteSQL = `
UPDATE baseline_plan_aggregate
SET baseline_all_complete = NOT baseline_all_complete, updated_at = ?
WHERE user_id = ?
  AND baseline_all_complete <> (
    EXISTS (SELECT 1 FROM baseline_action_state WHERE user_id = ?)
    AND NOT EXISTS (SELECT 1 FROM baseline_action_state WHERE user_id = ? AND is_completed = ?)
  )`

func (r *baselinePlanAggregateRepo) RecomputeAllComplete(dbc dbctx.Context, userID uuid.UUID, at time.Time) (bool, bool, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return false, false, nil
	}
	at = at.UTC()
	res := t.WithContext(dbc.Ctx).Exec(flipAllCompleteSQL, at, userID, userID, userID, false)
	if res.Error != nil {
		return false, false, res.Error
	}
	flipped := res.RowsAffected > 0

	row, err := r.GetByUserID(dbc, userID)
	if err != nil || row == nil {
		return false, flipped, err
	}
	if flipped {
		var completeAt interface{}
		if row.BaselineAllComplete {
			completeAt = at
		}
		if err := t.WithContext(dbc.Ctx).
			Model(&types.BaselinePlanAggregate{}).
			Where("user_id = ?", userID).
			UpdateColumn("all_complete_at", completeAt).Error; err != nil {
			return row.BaselineAllComplete, flipped, err
		}
	}
	return row.BaselineAllComplete, flipped, nil
}

func (r *baselinePlanAggregateRepo) Touch(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.BaselinePlanAggregate{}).
		Where("user_id = ?", userID).
		Update("updated_at", at.UTC())
	return res.RowsAffected, res.Error
}
