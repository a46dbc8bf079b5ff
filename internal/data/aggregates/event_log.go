package aggregates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type GoalEventReaderDeps struct {
	Base BaseDeps

	Events repos.GoalEventLogRepo
}

type goalEventReader struct {
	deps GoalEventReaderDeps
}

func NewGoalEventReader(deps GoalEventReaderDeps) domainagg.GoalEventReader {
	deps.Base = deps.Base.withDefaults()
	return &goalEventReader{deps: deps}
}

func (r *goalEventReader) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*goals.GoalEventLog, error) {
	const op = "Goals.Events.ListEvents"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if err := requireConfigured(op, r.deps.Events != nil, "event log repo"); err != nil {
		return nil, err
	}
	var out []*goals.GoalEventLog
	err := executeRead(ctx, r.deps.Base, op, func(dbc dbctx.Context) error {
		rows, err := r.deps.Events.ListByUser(dbc, userID, limit)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

func newEventRow(userID uuid.UUID, eventType, goalID string, meta map[string]any, at time.Time) *goals.GoalEventLog {
	raw, err := json.Marshal(meta)
	if err != nil || meta == nil {
		raw = []byte("{}")
	}
	return &goals.GoalEventLog{
		UserID:    userID,
		EventType: eventType,
		GoalID:    goalID,
		Metadata:  datatypes.JSON(raw),
		CreatedAt: at.UTC(),
	}
}

// appendEvents writes audit rows after the primary commit. Failures are swallowed.
func appendEvents(ctx context.Context, deps BaseDeps, events repos.GoalEventLogRepo, op string, userID uuid.UUID, rows ...*goals.GoalEventLog) {
	if events == nil || len(rows) == 0 {
		return
	}
	secondary(ctx, deps, op, domainagg.StepEventLog, userID, func(ctx context.Context) error {
		return events.Append(dbctx.Context{Ctx: ctx}, rows...)
	})
}

// notify publishes a per-user realtime message. Failures are swallowed.
func notify(ctx context.Context, deps BaseDeps, op string, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if deps.Bus == nil {
		return
	}
	secondary(ctx, deps, op, domainagg.StepNotify, userID, func(ctx context.Context) error {
		return deps.Bus.Publish(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   event,
			Data:    data,
		})
	})
}
