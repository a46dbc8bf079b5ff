package aggregates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	repotest "github.com/yungbote/careercoach-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type spyBus struct {
	mu   sync.Mutex
	err  error
	msgs []realtime.SSEMessage
}

func (b *spyBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return b.err
}

func (b *spyBus) events() []realtime.SSEEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(b.msgs))
	for _, m := range b.msgs {
		out = append(out, m.Event)
	}
	return out
}

type goalsHarness struct {
	ctx   context.Context
	db    *gorm.DB
	repos repos.Goals
	hooks *spyHooks
	bus   *spyBus
	clock *fakeClock
	base  BaseDeps

	baseline   domainagg.BaselineActionsAggregate
	weekly     domainagg.WeeklyGoalsAggregate
	onboarding domainagg.OnboardingAggregate
	events     domainagg.GoalEventReader
}

// Wednesday, so neighbouring days stay in the same week.
var harnessStart = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

func newGoalsHarness(t *testing.T) *goalsHarness {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	h := &goalsHarness{
		ctx:   context.Background(),
		db:    db,
		repos: repos.NewGoals(db, log),
		hooks: &spyHooks{},
		bus:   &spyBus{},
		clock: &fakeClock{now: harnessStart},
	}
	h.base = BaseDeps{
		DB:       db,
		Log:      log,
		Hooks:    h.hooks,
		Bus:      h.bus,
		Now:      h.clock.Now,
		Location: time.UTC,
	}
	h.rebuild(t, triggers.Default())
	return h
}

func (h *goalsHarness) rebuild(t *testing.T, reg *triggers.Registry) {
	t.Helper()
	h.baseline = NewBaselineActionsAggregate(BaselineActionsAggregateDeps{
		Base:     h.base,
		Registry: reg,
		Actions:  h.repos.BaselineActions,
		Aggs:     h.repos.BaselineAggs,
		Events:   h.repos.GoalEvents,
	})
	h.weekly = NewWeeklyGoalsAggregate(WeeklyGoalsAggregateDeps{
		Base:     h.base,
		Registry: reg,
		Defs:     h.repos.WeeklyDefs,
		Progress: h.repos.WeeklyProgress,
		Events:   h.repos.GoalEvents,
	})
	h.onboarding = NewOnboardingAggregate(OnboardingAggregateDeps{
		Base:     h.base,
		Actions:  h.repos.BaselineActions,
		Aggs:     h.repos.BaselineAggs,
		Defs:     h.repos.WeeklyDefs,
		Progress: h.repos.WeeklyProgress,
		Events:   h.repos.GoalEvents,
	})
	h.events = NewGoalEventReader(GoalEventReaderDeps{Base: h.base, Events: h.repos.GoalEvents})
}

func (h *goalsHarness) week() string {
	return goals.WeekKey(h.clock.Now(), time.UTC)
}

func (h *goalsHarness) countEvents(t *testing.T, userID uuid.UUID, eventType string) int64 {
	t.Helper()
	n, err := h.repos.GoalEvents.CountByUserAndType(dbctx.Context{Ctx: h.ctx}, userID, eventType)
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func (h *goalsHarness) aggregateRow(t *testing.T, userID uuid.UUID) *goals.BaselinePlanAggregate {
	t.Helper()
	row, err := h.repos.BaselineAggs.GetByUserID(dbctx.Context{Ctx: h.ctx}, userID)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if row == nil {
		t.Fatalf("aggregate row missing for %s", userID)
	}
	return row
}

func (h *goalsHarness) incompleteCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	rows, err := h.repos.BaselineActions.ListByUser(dbctx.Context{Ctx: h.ctx}, userID)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	var incomplete int64
	for _, r := range rows {
		if !r.IsCompleted {
			incomplete++
		}
	}
	return incomplete
}

func (h *goalsHarness) progressRow(t *testing.T, userID uuid.UUID, goalID, week string) *goals.WeeklyGoalProgress {
	t.Helper()
	row, err := h.repos.WeeklyProgress.Get(dbctx.Context{Ctx: h.ctx}, userID, goalID, week)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	return row
}

// seedPlan materializes a single-section plan with the given action ids and weekly goals.
func (h *goalsHarness) seedPlan(t *testing.T, userID uuid.UUID, actionIDs []string, weekly map[string]int) {
	t.Helper()
	plan := goals.GeneratedPlan{Summary: "Get to interviews", BaselineActions: []goals.BaselineSection{{Title: "Start"}}}
	for _, id := range actionIDs {
		plan.BaselineActions[0].Actions = append(plan.BaselineActions[0].Actions, goals.PlanAction{ID: id, Label: "do " + id})
	}
	var confirmed []goals.ConfirmedGoal
	for id, target := range weekly {
		confirmed = append(confirmed, goals.ConfirmedGoal{GoalID: id, Label: id, Target: repotest.PtrInt(target)})
	}
	if _, err := h.onboarding.Materialize(h.ctx, domainagg.MaterializeInput{
		UserID:         userID,
		Plan:           plan,
		ConfirmedGoals: confirmed,
		TargetRole:     "Backend Engineer",
		Timeline:       goals.Timeline3Months,
	}); err != nil {
		t.Fatalf("materialize: %v", err)
	}
}
