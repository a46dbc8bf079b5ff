package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

const maxEventListLimit = 500

type GoalEventLogRepo interface {
	Append(dbc dbctx.Context, rows ...*types.GoalEventLog) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.GoalEventLog, error)
	CountByUserAndType(dbc dbctx.Context, userID uuid.UUID, eventType string) (int64, error)
}

type goalEventLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalEventLogRepo(db *gorm.DB, baseLog *logger.Logger) GoalEventLogRepo {
	return &goalEventLogRepo{db: db, log: baseLog.With("repo", "GoalEventLogRepo")}
}

func (r *goalEventLogRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *goalEventLogRepo) Append(dbc dbctx.Context, rows ...*types.GoalEventLog) error {
	t := r.dbx(dbc)
	batch := make([]*types.GoalEventLog, 0, len(rows))
	now := time.Now().UTC()
	for _, x := range rows {
		if x == nil || x.UserID == uuid.Nil || x.EventType == "" {
			continue
		}
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
		if x.CreatedAt.IsZero() {
			x.CreatedAt = now
		}
		batch = append(batch, x)
	}
	if len(batch) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Create(&batch).Error
}

// ListByUser returns the newest events first.
func (r *goalEventLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.GoalEventLog, error) {
	t := r.dbx(dbc)
	out := []*types.GoalEventLog{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > maxEventListLimit {
		limit = maxEventListLimit
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *goalEventLogRepo) CountByUserAndType(dbc dbctx.Context, userID uuid.UUID, eventType string) (int64, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil {
		return 0, nil
	}
	var n int64
	q := t.WithContext(dbc.Ctx).Model(&types.GoalEventLog{}).Where("user_id = ?", userID)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
