package aggregates

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type WeeklyGoalsAggregateDeps struct {
	Base     BaseDeps
	Registry *triggers.Registry

	Defs     repos.WeeklyGoalDefinitionRepo
	Progress repos.WeeklyGoalProgressRepo
	Events   repos.GoalEventLogRepo
}

type weeklyGoalsAggregate struct {
	deps WeeklyGoalsAggregateDeps
}

func NewWeeklyGoalsAggregate(deps WeeklyGoalsAggregateDeps) domainagg.WeeklyGoalsAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "WeeklyGoalsAggregate")
	return &weeklyGoalsAggregate{deps: deps}
}

func (a *weeklyGoalsAggregate) Contract() domainagg.Contract {
	return domainagg.WeeklyGoalsAggregateContract
}

func (a *weeklyGoalsAggregate) configured() bool {
	return a.deps.Defs != nil && a.deps.Progress != nil
}

func (a *weeklyGoalsAggregate) IncrementProgress(ctx context.Context, in domainagg.IncrementProgressInput) (domainagg.IncrementProgressResult, error) {
	const op = "Goals.Weekly.IncrementProgress"
	now := a.deps.Base.Now().UTC()
	week := goals.WeekKey(now, a.deps.Base.Location)
	out := domainagg.IncrementProgressResult{WeekStart: week, Counts: map[string]int{}}

	if err := requireUser(op, in.UserID); err != nil {
		return out, err
	}
	by := in.IncrementBy
	if err := requireNonNegative(op, "increment_by", by); err != nil {
		return out, err
	}
	if by == 0 {
		by = 1
	}
	if err := requireConfigured(op, a.configured(), "weekly goal repos"); err != nil {
		return out, err
	}

	trigger := triggers.Normalize(in.Trigger)
	goalIDs := a.deps.Registry.WeeklyGoals(trigger)
	if len(goalIDs) == 0 {
		return out, nil
	}

	var (
		updated []string
		counts  = map[string]int{}
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		updated, counts = nil, map[string]int{}
		defs, err := a.deps.Defs.ListEnabledByUserAndGoalIDs(dbc, in.UserID, goalIDs)
		if err != nil {
			return err
		}
		for _, def := range defs {
			if def == nil {
				continue
			}
			// first touch of the week freezes the live target onto the row
			if err := a.deps.Progress.EnsureRow(dbc, &goals.WeeklyGoalProgress{
				UserID:       in.UserID,
				GoalID:       def.GoalID,
				WeekStart:    week,
				CurrentCount: 0,
				TargetCount:  def.TargetCount,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return err
			}
			n, err := a.deps.Progress.IncrementClamped(dbc, in.UserID, def.GoalID, week, by, now)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			row, err := a.deps.Progress.Get(dbc, in.UserID, def.GoalID, week)
			if err != nil {
				return err
			}
			if row != nil {
				counts[def.GoalID] = row.CurrentCount
			}
			updated = append(updated, def.GoalID)
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	out.GoalsUpdatedCount = len(updated)
	out.GoalIDs = updated
	out.Counts = counts
	if len(updated) == 0 {
		return out, nil
	}

	appendEvents(ctx, a.deps.Base, a.deps.Events, op, in.UserID,
		newEventRow(in.UserID, goals.EventWeeklyGoalProgress, trigger, map[string]any{
			"trigger":       trigger,
			"goal_ids":      updated,
			"increment_by":  by,
			"goals_updated": len(updated),
			"week_start":    week,
			"counts":        counts,
		}, now),
	)
	notify(ctx, a.deps.Base, op, in.UserID, realtime.SSEEventGoalsUpdated, map[string]any{
		"scope":      "weekly",
		"week_start": week,
		"counts":     counts,
	})
	return out, nil
}

func (a *weeklyGoalsAggregate) GetProgress(ctx context.Context, userID uuid.UUID) (domainagg.WeeklyProgress, error) {
	const op = "Goals.Weekly.GetProgress"
	week := goals.WeekKey(a.deps.Base.Now(), a.deps.Base.Location)
	out := domainagg.WeeklyProgress{Goals: []domainagg.WeeklyGoalView{}, WeekStart: week}
	if err := requireUser(op, userID); err != nil {
		return out, err
	}
	if err := requireConfigured(op, a.configured(), "weekly goal repos"); err != nil {
		return out, err
	}

	var (
		defs     []*goals.WeeklyGoalDefinition
		progress []*goals.WeeklyGoalProgress
	)
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		g, gctx := errgroup.WithContext(dbc.Ctx)
		g.Go(func() error {
			rows, err := a.deps.Defs.ListEnabledByUser(dbctx.Context{Ctx: gctx}, userID)
			defs = rows
			return err
		})
		g.Go(func() error {
			rows, err := a.deps.Progress.ListByUserAndWeek(dbctx.Context{Ctx: gctx}, userID, week)
			progress = rows
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return out, err
	}

	byGoal := make(map[string]*goals.WeeklyGoalProgress, len(progress))
	for _, p := range progress {
		if p != nil {
			byGoal[p.GoalID] = p
		}
	}
	for _, def := range defs {
		if def == nil {
			continue
		}
		view := domainagg.WeeklyGoalView{
			GoalID:      def.GoalID,
			Label:       def.Label,
			TargetCount: def.TargetCount,
		}
		if p, ok := byGoal[def.GoalID]; ok {
			view.TargetCount = p.TargetCount
			view.CurrentCount = p.CurrentCount
		}
		view.IsComplete = view.CurrentCount >= view.TargetCount
		out.Goals = append(out.Goals, view)
	}
	sort.SliceStable(out.Goals, func(i, j int) bool { return out.Goals[i].GoalID < out.Goals[j].GoalID })
	return out, nil
}

func (a *weeklyGoalsAggregate) SetGoalEnabled(ctx context.Context, in domainagg.SetGoalEnabledInput) error {
	const op = "Goals.Weekly.SetGoalEnabled"
	goalID := strings.TrimSpace(in.GoalID)
	if err := requireUser(op, in.UserID); err != nil {
		return err
	}
	if err := requireID(op, "goal_id", goalID); err != nil {
		return err
	}
	if err := requireConfigured(op, a.configured(), "weekly goal repos"); err != nil {
		return err
	}

	now := a.deps.Base.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Defs.SetEnabled(dbc, in.UserID, goalID, in.Enabled, now)
		if err != nil {
			return err
		}
		return requireFound(op, n > 0, "weekly goal", goalID)
	})
	if err != nil {
		return err
	}

	appendEvents(ctx, a.deps.Base, a.deps.Events, op, in.UserID,
		newEventRow(in.UserID, goals.EventWeeklyGoalToggled, goalID, map[string]any{
			"goal_id":    goalID,
			"is_enabled": in.Enabled,
		}, now),
	)
	notify(ctx, a.deps.Base, op, in.UserID, realtime.SSEEventGoalsUpdated, map[string]any{
		"scope":      "weekly",
		"goal_id":    goalID,
		"is_enabled": in.Enabled,
	})
	return nil
}
