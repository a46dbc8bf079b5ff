package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type OnboardingAggregateDeps struct {
	Base BaseDeps

	Actions  repos.BaselineActionStateRepo
	Aggs     repos.BaselinePlanAggregateRepo
	Defs     repos.WeeklyGoalDefinitionRepo
	Progress repos.WeeklyGoalProgressRepo
	Events   repos.GoalEventLogRepo
}

type onboardingAggregate struct {
	deps OnboardingAggregateDeps
}

func NewOnboardingAggregate(deps OnboardingAggregateDeps) domainagg.OnboardingAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "OnboardingAggregate")
	return &onboardingAggregate{deps: deps}
}

func (a *onboardingAggregate) Contract() domainagg.Contract {
	return domainagg.OnboardingAggregateContract
}

// Materialize replaces the user's tracking state with the given plan.
//
// The plan snapshot, the baseline checklist and the weekly goals are each
// replaced in their own transaction. A failed step returns its error and
// leaves earlier steps committed.
func (a *onboardingAggregate) Materialize(ctx context.Context, in domainagg.MaterializeInput) (domainagg.MaterializeResult, error) {
	const op = "Goals.Onboarding.Materialize"
	var out domainagg.MaterializeResult
	if err := requireUser(op, in.UserID); err != nil {
		return out, err
	}
	configured := a.deps.Actions != nil && a.deps.Aggs != nil && a.deps.Defs != nil && a.deps.Progress != nil
	if err := requireConfigured(op, configured, "onboarding repos"); err != nil {
		return out, err
	}

	now := a.deps.Base.Now().UTC()
	week := goals.WeekKey(now, a.deps.Base.Location)
	timeline := strings.TrimSpace(strings.ToLower(in.Timeline))
	targetDate := goals.TargetDate(timeline, now)
	actions := planActionRows(in.UserID, in.Plan, now)
	defs, progress := confirmedGoalRows(in.UserID, in.ConfirmedGoals, week, now)

	out.WeekStart = week
	out.TargetDate = targetDate

	err := executeWrite(ctx, a.deps.Base, op+".plan", func(dbc dbctx.Context) error {
		return a.deps.Aggs.Upsert(dbc, &goals.BaselinePlanAggregate{
			UserID:                 in.UserID,
			Summary:                strings.TrimSpace(in.Plan.Summary),
			TargetRole:             strings.TrimSpace(in.TargetRole),
			Timeline:               timeline,
			TargetDate:             targetDate,
			WeeklyGoalsDescription: strings.TrimSpace(in.Plan.WeeklyGoals.Description),
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	})
	if err != nil {
		return out, err
	}

	err = executeWrite(ctx, a.deps.Base, op+".baseline", func(dbc dbctx.Context) error {
		if _, err := a.deps.Actions.DeleteByUser(dbc, in.UserID); err != nil {
			return err
		}
		_, err := a.deps.Actions.Create(dbc, actions)
		return err
	})
	if err != nil {
		return out, err
	}
	out.BaselineActionCount = len(actions)

	if len(defs) > 0 {
		err = executeWrite(ctx, a.deps.Base, op+".weekly", func(dbc dbctx.Context) error {
			if _, err := a.deps.Defs.DeleteByUser(dbc, in.UserID); err != nil {
				return err
			}
			if _, err := a.deps.Defs.Create(dbc, defs); err != nil {
				return err
			}
			if _, err := a.deps.Progress.DeleteByUserAndWeek(dbc, in.UserID, week); err != nil {
				return err
			}
			_, err := a.deps.Progress.Create(dbc, progress)
			return err
		})
		if err != nil {
			return out, err
		}
		out.WeeklyGoalCount = len(defs)
	}

	appendEvents(ctx, a.deps.Base, a.deps.Events, op, in.UserID,
		newEventRow(in.UserID, goals.EventPlanCreated, goals.LogGoalOnboarding, map[string]any{
			"baseline_action_count": out.BaselineActionCount,
			"weekly_goal_count":     out.WeeklyGoalCount,
			"target_role":           strings.TrimSpace(in.TargetRole),
			"timeline":              timeline,
			"week_start":            week,
		}, now),
	)
	notify(ctx, a.deps.Base, op, in.UserID, realtime.SSEEventPlanMaterialized, map[string]any{
		"baseline_action_count": out.BaselineActionCount,
		"weekly_goal_count":     out.WeeklyGoalCount,
		"week_start":            week,
	})
	return out, nil
}

// planActionRows flattens sections into checklist rows. Empty ids are skipped
// and the first occurrence of a duplicate id wins.
func planActionRows(userID uuid.UUID, plan goals.GeneratedPlan, now time.Time) []*goals.BaselineActionState {
	out := make([]*goals.BaselineActionState, 0, plan.ActionCount())
	seen := make(map[string]bool, plan.ActionCount())
	for si, section := range plan.BaselineActions {
		title := strings.TrimSpace(section.Title)
		for ai, action := range section.Actions {
			id := strings.TrimSpace(action.ID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, &goals.BaselineActionState{
				UserID:       userID,
				ActionID:     id,
				Label:        strings.TrimSpace(action.Label),
				SectionTitle: title,
				SectionIndex: si,
				ActionIndex:  ai,
				IsCompleted:  false,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}
	return out
}

func confirmedGoalRows(userID uuid.UUID, confirmed []goals.ConfirmedGoal, week string, now time.Time) ([]*goals.WeeklyGoalDefinition, []*goals.WeeklyGoalProgress) {
	defs := make([]*goals.WeeklyGoalDefinition, 0, len(confirmed))
	progress := make([]*goals.WeeklyGoalProgress, 0, len(confirmed))
	seen := make(map[string]bool, len(confirmed))
	for _, g := range confirmed {
		id := strings.TrimSpace(g.GoalID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		target := 0
		if g.Target != nil && *g.Target > 0 {
			target = *g.Target
		}
		defs = append(defs, &goals.WeeklyGoalDefinition{
			UserID:      userID,
			GoalID:      id,
			Label:       strings.TrimSpace(g.Label),
			TargetCount: target,
			IsEnabled:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		progress = append(progress, &goals.WeeklyGoalProgress{
			UserID:       userID,
			GoalID:       id,
			WeekStart:    week,
			CurrentCount: 0,
			TargetCount:  target,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return defs, progress
}
