package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/careercoach-backend/internal/data/aggregates"
	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/services"
)

// Goals is the wired goal engine: the trackers, the materializer, the audit reader,
// and the dispatcher event emitters call into.
type Goals struct {
	Registry   *triggers.Registry
	Repos      repos.Goals
	Baseline   domainagg.BaselineActionsAggregate
	Weekly     domainagg.WeeklyGoalsAggregate
	Onboarding domainagg.OnboardingAggregate
	Events     domainagg.GoalEventReader
	Dispatcher services.GoalTriggerDispatcher
}

type GoalsDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Metrics  *observability.Metrics
	Bus      aggregates.Publisher
	Registry *triggers.Registry
	Location *time.Location
	Now      func() time.Time
	Dispatch services.GoalDispatcherConfig
}

func NewGoals(deps GoalsDeps) Goals {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log.Info("Wiring goal engine...")
	reg := deps.Registry
	if reg == nil {
		reg = triggers.Default()
	}
	rs := repos.NewGoals(deps.DB, log)
	base := aggregates.BaseDeps{
		DB:       deps.DB,
		Log:      log,
		Hooks:    aggregates.NewObservabilityHooks(deps.Metrics),
		Bus:      deps.Bus,
		Now:      deps.Now,
		Location: deps.Location,
	}

	baseline := aggregates.NewBaselineActionsAggregate(aggregates.BaselineActionsAggregateDeps{
		Base:     base,
		Registry: reg,
		Actions:  rs.BaselineActions,
		Aggs:     rs.BaselineAggs,
		Events:   rs.GoalEvents,
	})
	weekly := aggregates.NewWeeklyGoalsAggregate(aggregates.WeeklyGoalsAggregateDeps{
		Base:     base,
		Registry: reg,
		Defs:     rs.WeeklyDefs,
		Progress: rs.WeeklyProgress,
		Events:   rs.GoalEvents,
	})
	return Goals{
		Registry: reg,
		Repos:    rs,
		Baseline: baseline,
		Weekly:   weekly,
		Onboarding: aggregates.NewOnboardingAggregate(aggregates.OnboardingAggregateDeps{
			Base:     base,
			Actions:  rs.BaselineActions,
			Aggs:     rs.BaselineAggs,
			Defs:     rs.WeeklyDefs,
			Progress: rs.WeeklyProgress,
			Events:   rs.GoalEvents,
		}),
		Events:     aggregates.NewGoalEventReader(aggregates.GoalEventReaderDeps{Base: base, Events: rs.GoalEvents}),
		Dispatcher: services.NewGoalTriggerDispatcher(log, baseline, weekly, deps.Metrics, deps.Dispatch),
	}
}
