package aggregates

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

func TestMarkCompleteFlipsOnlyMappedActionsAndDetectsAllComplete(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume", "create-resume", "tailor-resume"}, nil)

	res, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_imported"})
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if res.ActionsCompletedCount != 1 || res.AllComplete {
		t.Fatalf("first completion: %+v", res)
	}
	if h.aggregateRow(t, user).BaselineAllComplete {
		t.Fatalf("aggregate flag should still be false")
	}

	if _, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_created"}); err != nil {
		t.Fatalf("MarkComplete resume_created: %v", err)
	}
	upd, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, ActionID: "tailor-resume", IsCompleted: true})
	if err != nil {
		t.Fatalf("ManualToggle: %v", err)
	}
	if !upd.AllComplete || !upd.IsCompleted || upd.CompletedAt == nil {
		t.Fatalf("toggle result: %+v", upd)
	}

	row := h.aggregateRow(t, user)
	if !row.BaselineAllComplete || row.AllCompleteAt == nil {
		t.Fatalf("aggregate not complete: %+v", row)
	}
	if n := h.countEvents(t, user, goals.EventBaselineAllComplete); n != 1 {
		t.Fatalf("baseline_all_complete entries: want=1 got=%d", n)
	}
	if n := h.countEvents(t, user, goals.EventBaselineActionCompleted); n != 2 {
		t.Fatalf("baseline_action_completed entries: want=2 got=%d", n)
	}

	again, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_tailored"})
	if err != nil {
		t.Fatalf("MarkComplete after completion: %v", err)
	}
	if again.ActionsCompletedCount != 0 || !again.AllComplete {
		t.Fatalf("no-op completion should report the stored flag: %+v", again)
	}
	if n := h.countEvents(t, user, goals.EventBaselineAllComplete); n != 1 {
		t.Fatalf("baseline_all_complete entries after no-op: want=1 got=%d", n)
	}

	var sawComplete bool
	for _, ev := range h.bus.events() {
		if ev == realtime.SSEEventBaselineComplete {
			sawComplete = true
		}
	}
	if !sawComplete {
		t.Fatalf("expected a %s notification, got %v", realtime.SSEEventBaselineComplete, h.bus.events())
	}
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"complete-profile", "upload-headshot", "save-first-job"}, nil)

	first, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "profile_completed"})
	if err != nil {
		t.Fatalf("first MarkComplete: %v", err)
	}
	if first.ActionsCompletedCount != 2 || len(first.ActionIDs) != 2 {
		t.Fatalf("1:many trigger should flip both actions: %+v", first)
	}
	second, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "profile_completed"})
	if err != nil {
		t.Fatalf("second MarkComplete: %v", err)
	}
	if second.ActionsCompletedCount != 0 {
		t.Fatalf("second call should change nothing: %+v", second)
	}
	if n := h.countEvents(t, user, goals.EventBaselineActionCompleted); n != 1 {
		t.Fatalf("log entries: want=1 got=%d", n)
	}
}

func TestMarkCompleteUnknownTriggerIsNoop(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)

	res, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "not_a_real_event"})
	if err != nil {
		t.Fatalf("unknown trigger should not error: %v", err)
	}
	if res.ActionsCompletedCount != 0 || len(res.ActionIDs) != 0 {
		t.Fatalf("unknown trigger result: %+v", res)
	}
	if n := h.countEvents(t, user, goals.EventBaselineActionCompleted); n != 0 {
		t.Fatalf("unknown trigger logged %d entries", n)
	}
}

func TestMarkCompleteTriggerForActionNotInPlan(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)

	res, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "offer_logged"})
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if res.ActionsCompletedCount != 0 {
		t.Fatalf("action absent from plan must not count: %+v", res)
	}
}

func TestMarkCompleteRejectsMissingUser(t *testing.T) {
	h := newGoalsHarness(t)
	_, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{Trigger: "resume_imported"})
	if !domainagg.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestMarkCompleteWithoutRegistryResolvesNothing(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)
	h.rebuild(t, nil)

	res, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_imported"})
	if err != nil || res.ActionsCompletedCount != 0 {
		t.Fatalf("nil registry: res=%+v err=%v", res, err)
	}
}

func TestManualToggleIsBidirectional(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)

	on, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, ActionID: "import-resume", IsCompleted: true})
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on.IsCompleted || !on.AllComplete || !h.aggregateRow(t, user).BaselineAllComplete {
		t.Fatalf("toggle on: %+v", on)
	}

	off, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, ActionID: "import-resume", IsCompleted: false})
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off.IsCompleted || off.AllComplete || off.CompletedAt != nil {
		t.Fatalf("toggle off: %+v", off)
	}
	row := h.aggregateRow(t, user)
	if row.BaselineAllComplete || row.AllCompleteAt != nil {
		t.Fatalf("aggregate should be cleared: %+v", row)
	}
	if n := h.countEvents(t, user, goals.EventBaselineActionManualToggle); n != 2 {
		t.Fatalf("manual toggle entries: want=2 got=%d", n)
	}
}

func TestManualToggleTouchesAggregateWhenFlagUnchanged(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume", "create-resume"}, nil)
	before := h.aggregateRow(t, user).UpdatedAt

	h.clock.Advance(3 * time.Second)
	if _, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, ActionID: "import-resume", IsCompleted: true}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	row := h.aggregateRow(t, user)
	if row.BaselineAllComplete {
		t.Fatalf("flag should remain false")
	}
	if !row.UpdatedAt.After(before) {
		t.Fatalf("updated_at not refreshed: before=%v after=%v", before, row.UpdatedAt)
	}
}

func TestManualToggleUnknownActionIsNotFound(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)

	_, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, ActionID: "does-not-exist", IsCompleted: true})
	if !domainagg.IsNotFound(err) {
		t.Fatalf("want not_found, got %v", err)
	}
	if _, err := h.baseline.ManualToggle(h.ctx, domainagg.ManualToggleInput{UserID: user, IsCompleted: true}); !domainagg.IsValidation(err) {
		t.Fatalf("empty action id: want validation, got %v", err)
	}
}

func TestGetStatusProjectsChecklistAndPlan(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume", "create-resume", "tailor-resume"}, nil)
	if _, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_created"}); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	st, err := h.baseline.GetStatus(h.ctx, user)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.TotalActions != 3 || st.CompletedActions != 1 || st.AllComplete {
		t.Fatalf("status counts: %+v", st)
	}
	want := []string{"import-resume", "create-resume", "tailor-resume"}
	for i, a := range st.Actions {
		if a.ActionID != want[i] {
			t.Fatalf("action order: want=%v got=%+v", want, st.Actions)
		}
	}
	if !st.Actions[1].IsCompleted || st.Actions[1].CompletedAt == nil {
		t.Fatalf("create-resume should be complete: %+v", st.Actions[1])
	}
	if st.Plan == nil || st.Plan.TargetRole != "Backend Engineer" || st.Plan.TargetDate == nil {
		t.Fatalf("plan snapshot: %+v", st.Plan)
	}
}

func TestGetStatusForUnknownUserIsEmpty(t *testing.T) {
	h := newGoalsHarness(t)
	st, err := h.baseline.GetStatus(h.ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.TotalActions != 0 || st.AllComplete || st.Plan != nil || st.Actions == nil {
		t.Fatalf("empty status: %+v", st)
	}
}

func TestGetStatusWithoutActionsIsNotAllComplete(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, nil, nil)

	st, err := h.baseline.GetStatus(h.ctx, user)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Plan == nil || st.TotalActions != 0 || st.AllComplete {
		t.Fatalf("empty checklist should not be all-complete: %+v", st)
	}
	complete, flipped, err := h.repos.BaselineAggs.RecomputeAllComplete(dbctx.Context{Ctx: h.ctx}, user, time.Now())
	if err != nil || complete || flipped {
		t.Fatalf("recompute on empty checklist: complete=%t flipped=%t err=%v", complete, flipped, err)
	}
	if row := h.aggregateRow(t, user); row.BaselineAllComplete {
		t.Fatalf("stored flag set for empty checklist: %+v", row)
	}
}

func TestAllCompleteTracksIncompleteCountUnderRandomOperations(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	ids := []string{"import-resume", "create-resume", "tailor-resume", "save-first-job"}
	autoTriggers := []string{"resume_imported", "resume_created", "resume_tailored", "job_saved"}
	h.seedPlan(t, user, ids, nil)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		if rng.Intn(2) == 0 {
			trig := autoTriggers[rng.Intn(len(autoTriggers))]
			if _, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: trig}); err != nil {
				t.Fatalf("step %d MarkComplete(%s): %v", i, trig, err)
			}
		} else {
			in := domainagg.ManualToggleInput{UserID: user, ActionID: ids[rng.Intn(len(ids))], IsCompleted: rng.Intn(3) > 0}
			if _, err := h.baseline.ManualToggle(h.ctx, in); err != nil {
				t.Fatalf("step %d ManualToggle(%+v): %v", i, in, err)
			}
		}
		got := h.aggregateRow(t, user).BaselineAllComplete
		want := h.incompleteCount(t, user) == 0
		if got != want {
			t.Fatalf("step %d: baseline_all_complete=%v but incomplete==0 is %v", i, got, want)
		}
	}
}

func TestConcurrentMarkCompleteFlipsEachActionOnce(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"complete-profile", "upload-headshot"}, nil)

	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.baseline.MarkComplete(h.ctx, domainagg.MarkCompleteInput{UserID: user, Trigger: "profile_completed"})
			if err != nil {
				t.Errorf("MarkComplete: %v", err)
				return
			}
			mu.Lock()
			total += res.ActionsCompletedCount
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != 2 {
		t.Fatalf("flipped rows across workers: want=2 got=%d", total)
	}
	if n := h.countEvents(t, user, goals.EventBaselineAllComplete); n != 1 {
		t.Fatalf("baseline_all_complete entries: want=1 got=%d", n)
	}
}

type failingEventLog struct {
	repos.GoalEventLogRepo
}

func (failingEventLog) Append(dbctx.Context, ...*goals.GoalEventLog) error {
	return errors.New("event log unavailable")
}

func TestSideEffectFailuresDoNotFailCompletion(t *testing.T) {
	h := newGoalsHarness(t)
	user := uuid.New()
	h.seedPlan(t, user, []string{"import-resume"}, nil)
	h.bus.err = errors.New("redis down")

	agg := NewBaselineActionsAggregate(BaselineActionsAggregateDeps{
		Base:     h.base,
		Registry: triggers.Default(),
		Actions:  h.repos.BaselineActions,
		Aggs:     h.repos.BaselineAggs,
		Events:   failingEventLog{h.repos.GoalEvents},
	})

	res, err := agg.MarkComplete(context.Background(), domainagg.MarkCompleteInput{UserID: user, Trigger: "resume_imported"})
	if err != nil {
		t.Fatalf("side-effect failure leaked: %v", err)
	}
	if res.ActionsCompletedCount != 1 || !res.AllComplete {
		t.Fatalf("primary write should still apply: %+v", res)
	}
	if h.hooks.secondaryCount() < 2 {
		t.Fatalf("expected event_log and notify failures to be counted, got %+v", h.hooks.Secondary)
	}
}
