package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
)

type stubBaseline struct {
	domainagg.BaselineActionsAggregate

	calls atomic.Int32
	block chan struct{}
	err   error
	panic bool
}

func (s *stubBaseline) MarkComplete(ctx context.Context, in domainagg.MarkCompleteInput) (domainagg.MarkCompleteResult, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return domainagg.MarkCompleteResult{}, ctx.Err()
		}
	}
	if s.panic {
		panic("boom")
	}
	return domainagg.MarkCompleteResult{ActionsCompletedCount: 1, ActionIDs: []string{"import-resume"}}, s.err
}

type stubWeekly struct {
	domainagg.WeeklyGoalsAggregate

	mu   sync.Mutex
	seen []domainagg.IncrementProgressInput
}

func (s *stubWeekly) IncrementProgress(_ context.Context, in domainagg.IncrementProgressInput) (domainagg.IncrementProgressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, in)
	return domainagg.IncrementProgressResult{GoalsUpdatedCount: 1}, nil
}

func (s *stubWeekly) inputs() []domainagg.IncrementProgressInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domainagg.IncrementProgressInput(nil), s.seen...)
}

func closeDispatcher(t *testing.T, d GoalTriggerDispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFireRunsBothTrackers(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, w := &stubBaseline{}, &stubWeekly{}
	d := NewGoalTriggerDispatcher(nil, b, w, nil, GoalDispatcherConfig{Concurrency: 4})
	user := uuid.New()
	if !d.Fire(TriggerEvent{UserID: user, Trigger: " Lesson_Completed ", IncrementBy: 2}) {
		t.Fatalf("Fire should accept the event")
	}
	closeDispatcher(t, d)

	if b.calls.Load() != 1 {
		t.Fatalf("baseline calls: want=1 got=%d", b.calls.Load())
	}
	in := w.inputs()
	if len(in) != 1 || in[0].UserID != user || in[0].Trigger != "lesson_completed" || in[0].IncrementBy != 2 {
		t.Fatalf("weekly input: %+v", in)
	}
}

func TestFireDropsWhenSaturated(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &stubBaseline{block: make(chan struct{})}
	d := NewGoalTriggerDispatcher(nil, b, &stubWeekly{}, nil, GoalDispatcherConfig{Concurrency: 1, Timeout: 5 * time.Second})
	user := uuid.New()

	if !d.Fire(TriggerEvent{UserID: user, Trigger: "resume_imported"}) {
		t.Fatalf("first Fire should be accepted")
	}
	if d.Fire(TriggerEvent{UserID: user, Trigger: "resume_imported"}) {
		t.Fatalf("second Fire should be dropped while the pool is full")
	}
	close(b.block)
	closeDispatcher(t, d)

	if b.calls.Load() != 1 {
		t.Fatalf("dropped trigger must not run: calls=%d", b.calls.Load())
	}
}

func TestFireRecoversFromPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &stubWeekly{}
	d := NewGoalTriggerDispatcher(nil, &stubBaseline{panic: true}, w, nil, GoalDispatcherConfig{})
	if !d.Fire(TriggerEvent{UserID: uuid.New(), Trigger: "resume_imported"}) {
		t.Fatalf("Fire should accept the event")
	}
	closeDispatcher(t, d)

	res, err := d.(*goalTriggerDispatcher).dispatch(context.Background(), TriggerEvent{UserID: uuid.New(), Trigger: "resume_imported"})
	if err == nil {
		t.Fatalf("panic should surface as an error from dispatch, got res=%+v", res)
	}
}

func TestFireRejectsInvalidEventsAndClosedDispatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &stubBaseline{}
	d := NewGoalTriggerDispatcher(nil, b, &stubWeekly{}, nil, GoalDispatcherConfig{})
	if d.Fire(TriggerEvent{Trigger: "resume_imported"}) {
		t.Fatalf("missing user should be rejected")
	}
	if d.Fire(TriggerEvent{UserID: uuid.New(), Trigger: "   "}) {
		t.Fatalf("blank trigger should be rejected")
	}
	closeDispatcher(t, d)
	if d.Fire(TriggerEvent{UserID: uuid.New(), Trigger: "resume_imported"}) {
		t.Fatalf("closed dispatcher should reject")
	}
	if _, err := d.FireSync(context.Background(), TriggerEvent{UserID: uuid.New(), Trigger: "resume_imported"}); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("FireSync after close: want ErrDispatcherClosed, got %v", err)
	}
	if b.calls.Load() != 0 {
		t.Fatalf("rejected events must not run: calls=%d", b.calls.Load())
	}
}

func TestFireSyncRunsWeeklyEvenWhenBaselineFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	baseErr := errors.New("db down")
	w := &stubWeekly{}
	d := NewGoalTriggerDispatcher(nil, &stubBaseline{err: baseErr}, w, nil, GoalDispatcherConfig{})
	defer closeDispatcher(t, d)

	res, err := d.FireSync(context.Background(), TriggerEvent{UserID: uuid.New(), Trigger: "lesson_completed"})
	if !errors.Is(err, baseErr) {
		t.Fatalf("want joined baseline error, got %v", err)
	}
	if res.Weekly.GoalsUpdatedCount != 1 || len(w.inputs()) != 1 {
		t.Fatalf("weekly tracker should still run: %+v", res)
	}
}

func TestCloseHonoursContext(t *testing.T) {
	b := &stubBaseline{block: make(chan struct{})}
	d := NewGoalTriggerDispatcher(nil, b, &stubWeekly{}, nil, GoalDispatcherConfig{Concurrency: 1, Timeout: time.Minute})
	d.Fire(TriggerEvent{UserID: uuid.New(), Trigger: "resume_imported"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Close should give up with the context, got %v", err)
	}
	close(b.block)
	closeDispatcher(t, d)
}
