package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type BaselineActionsAggregateDeps struct {
	Base     BaseDeps
	Registry *triggers.Registry

	Actions repos.BaselineActionStateRepo
	Aggs    repos.BaselinePlanAggregateRepo
	Events  repos.GoalEventLogRepo
}

type baselineActionsAggregate struct {
	deps BaselineActionsAggregateDeps
}

func NewBaselineActionsAggregate(deps BaselineActionsAggregateDeps) domainagg.BaselineActionsAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "BaselineActionsAggregate")
	return &baselineActionsAggregate{deps: deps}
}

func (a *baselineActionsAggregate) Contract() domainagg.Contract {
	return domainagg.BaselineActionsAggregateContract
}

func (a *baselineActionsAggregate) configured() bool {
	return a.deps.Actions != nil && a.deps.Aggs != nil
}

func (a *baselineActionsAggregate) MarkComplete(ctx context.Context, in domainagg.MarkCompleteInput) (domainagg.MarkCompleteResult, error) {
	const op = "Goals.Baseline.MarkComplete"
	var out domainagg.MarkCompleteResult
	if err := requireUser(op, in.UserID); err != nil {
		return out, err
	}
	if err := requireConfigured(op, a.configured(), "baseline aggregate repos"); err != nil {
		return out, err
	}

	trigger := triggers.Normalize(in.Trigger)
	actionIDs := a.deps.Registry.BaselineActions(trigger)
	if len(actionIDs) == 0 {
		return out, nil
	}
	out.ActionIDs = actionIDs

	now := a.deps.Base.Now().UTC()
	var changed int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Actions.CompleteIncomplete(dbc, in.UserID, actionIDs, now)
		if err != nil {
			return err
		}
		changed = n
		return nil
	})
	if err != nil {
		return domainagg.MarkCompleteResult{}, err
	}
	out.ActionsCompletedCount = int(changed)

	if changed == 0 {
		out.AllComplete = a.readAllComplete(ctx, op, in.UserID)
		return out, nil
	}

	complete, flipped := a.recompute(ctx, op, in.UserID, now)
	out.AllComplete = complete

	rows := []*goals.GoalEventLog{
		newEventRow(in.UserID, goals.EventBaselineActionCompleted, trigger, map[string]any{
			"trigger":    trigger,
			"action_ids": actionIDs,
			"count":      changed,
		}, now),
	}
	if flipped && complete {
		rows = append(rows, newEventRow(in.UserID, goals.EventBaselineAllComplete, goals.LogGoalBaseline, map[string]any{
			"trigger": trigger,
			"manual":  false,
		}, now))
	}
	appendEvents(ctx, a.deps.Base, a.deps.Events, op, in.UserID, rows...)
	a.notifyChange(ctx, op, in.UserID, complete, flipped)
	return out, nil
}

func (a *baselineActionsAggregate) ManualToggle(ctx context.Context, in domainagg.ManualToggleInput) (domainagg.UpdatedAction, error) {
	const op = "Goals.Baseline.ManualToggle"
	var out domainagg.UpdatedAction
	actionID := strings.TrimSpace(in.ActionID)
	if err := requireUser(op, in.UserID); err != nil {
		return out, err
	}
	if err := requireID(op, "action_id", actionID); err != nil {
		return out, err
	}
	if err := requireConfigured(op, a.configured(), "baseline aggregate repos"); err != nil {
		return out, err
	}

	now := a.deps.Base.Now().UTC()
	var (
		row *goals.BaselineActionState
		was bool
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		cur, err := a.deps.Actions.GetByUserAndActionID(dbc, in.UserID, actionID)
		if err != nil {
			return err
		}
		if err := requireFound(op, cur != nil, "baseline action", actionID); err != nil {
			return err
		}
		n, err := a.deps.Actions.SetCompletion(dbc, in.UserID, actionID, in.IsCompleted, now)
		if err != nil {
			return err
		}
		if err := requireRowsChanged(n, "baseline action vanished mid-toggle"); err != nil {
			return err
		}
		was = cur.IsCompleted
		cur.IsCompleted = in.IsCompleted
		cur.CompletedAt = nil
		if in.IsCompleted {
			at := now
			cur.CompletedAt = &at
		}
		cur.UpdatedAt = now
		row = cur
		return nil
	})
	if err != nil {
		return out, err
	}

	complete, flipped := a.recompute(ctx, op, in.UserID, now)
	if !flipped {
		secondary(ctx, a.deps.Base, op, domainagg.StepTouch, in.UserID, func(ctx context.Context) error {
			_, err := a.deps.Aggs.Touch(dbctx.Context{Ctx: ctx}, in.UserID, now)
			return err
		})
	}

	rows := []*goals.GoalEventLog{
		newEventRow(in.UserID, goals.EventBaselineActionManualToggle, actionID, map[string]any{
			"action_id":     actionID,
			"is_completed":  in.IsCompleted,
			"was_completed": was,
			"manual":        true,
		}, now),
	}
	if flipped && complete {
		rows = append(rows, newEventRow(in.UserID, goals.EventBaselineAllComplete, goals.LogGoalBaseline, map[string]any{
			"action_id": actionID,
			"manual":    true,
		}, now))
	}
	appendEvents(ctx, a.deps.Base, a.deps.Events, op, in.UserID, rows...)
	a.notifyChange(ctx, op, in.UserID, complete, flipped)

	return domainagg.UpdatedAction{
		ActionID:     row.ActionID,
		Label:        row.Label,
		SectionTitle: row.SectionTitle,
		IsCompleted:  row.IsCompleted,
		CompletedAt:  row.CompletedAt,
		AllComplete:  complete,
	}, nil
}

func (a *baselineActionsAggregate) GetStatus(ctx context.Context, userID uuid.UUID) (domainagg.BaselineStatus, error) {
	const op = "Goals.Baseline.GetStatus"
	out := domainagg.BaselineStatus{Actions: []domainagg.BaselineActionView{}}
	if err := requireUser(op, userID); err != nil {
		return out, err
	}
	if err := requireConfigured(op, a.configured(), "baseline aggregate repos"); err != nil {
		return out, err
	}

	var (
		actions []*goals.BaselineActionState
		agg     *goals.BaselinePlanAggregate
	)
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		g, gctx := errgroup.WithContext(dbc.Ctx)
		g.Go(func() error {
			rows, err := a.deps.Actions.ListByUser(dbctx.Context{Ctx: gctx}, userID)
			actions = rows
			return err
		})
		g.Go(func() error {
			row, err := a.deps.Aggs.GetByUserID(dbctx.Context{Ctx: gctx}, userID)
			agg = row
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return out, err
	}

	for _, x := range actions {
		if x == nil {
			continue
		}
		out.Actions = append(out.Actions, domainagg.BaselineActionView{
			ActionID:     x.ActionID,
			Label:        x.Label,
			SectionTitle: x.SectionTitle,
			IsCompleted:  x.IsCompleted,
			CompletedAt:  x.CompletedAt,
		})
		if x.IsCompleted {
			out.CompletedActions++
		}
	}
	out.TotalActions = len(out.Actions)
	out.AllComplete = out.TotalActions > 0 && out.CompletedActions == out.TotalActions
	if agg != nil {
		out.Plan = &domainagg.PlanSnapshot{
			Summary:                agg.Summary,
			TargetRole:             agg.TargetRole,
			Timeline:               agg.Timeline,
			TargetDate:             agg.TargetDate,
			WeeklyGoalsDescription: agg.WeeklyGoalsDescription,
		}
	}
	return out, nil
}

// recompute refreshes baseline_all_complete after a committed completion change.
// A failure leaves the flag stale until the next change and reports (false, false).
func (a *baselineActionsAggregate) recompute(ctx context.Context, op string, userID uuid.UUID, at time.Time) (complete, flipped bool) {
	secondary(ctx, a.deps.Base, op, domainagg.StepRecompute, userID, func(ctx context.Context) error {
		return a.deps.Base.Runner.InTx(ctx, func(dbc dbctx.Context) error {
			c, f, err := a.deps.Aggs.RecomputeAllComplete(dbc, userID, at)
			if err != nil {
				return err
			}
			complete, flipped = c, f
			return nil
		})
	})
	return complete, flipped
}

func (a *baselineActionsAggregate) readAllComplete(ctx context.Context, op string, userID uuid.UUID) bool {
	var complete bool
	secondary(ctx, a.deps.Base, op, domainagg.StepReadAggregate, userID, func(ctx context.Context) error {
		row, err := a.deps.Aggs.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
		if row != nil {
			complete = row.BaselineAllComplete
		}
		return err
	})
	return complete
}

func (a *baselineActionsAggregate) notifyChange(ctx context.Context, op string, userID uuid.UUID, complete, flipped bool) {
	event := realtime.SSEEventGoalsUpdated
	if flipped && complete {
		event = realtime.SSEEventBaselineComplete
	}
	notify(ctx, a.deps.Base, op, userID, event, map[string]any{
		"scope":        "baseline",
		"all_complete": complete,
	})
}
