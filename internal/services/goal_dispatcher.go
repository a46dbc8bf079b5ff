package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

const (
	DefaultDispatchConcurrency = 16
	DefaultDispatchTimeout     = 10 * time.Second
)

// ErrDispatcherClosed is returned by FireSync after Close.
var ErrDispatcherClosed = errors.New("goal dispatcher closed")

// TriggerEvent is one application event forwarded to the goal engine.
type TriggerEvent struct {
	UserID  uuid.UUID
	Trigger string
	// IncrementBy is passed to the weekly tracker; zero means one.
	IncrementBy int
}

type DispatchResult struct {
	Baseline domainagg.MarkCompleteResult
	Weekly   domainagg.IncrementProgressResult
}

// GoalTriggerDispatcher is the boundary event emitters call after their own write.
// Fire never blocks and never reports engine failures to the caller.
type GoalTriggerDispatcher interface {
	// Fire schedules the event and reports whether it was accepted.
	Fire(ev TriggerEvent) bool
	// FireSync runs the same work inline.
	FireSync(ctx context.Context, ev TriggerEvent) (DispatchResult, error)
	// Close stops accepting events and waits for in-flight work or ctx.
	Close(ctx context.Context) error
}

type GoalDispatcherConfig struct {
	Concurrency int
	Timeout     time.Duration
}

func (c GoalDispatcherConfig) withDefaults() GoalDispatcherConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultDispatchConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultDispatchTimeout
	}
	return c
}

type goalTriggerDispatcher struct {
	log      *logger.Logger
	baseline domainagg.BaselineActionsAggregate
	weekly   domainagg.WeeklyGoalsAggregate
	metrics  *observability.Metrics
	cfg      GoalDispatcherConfig

	mu     sync.RWMutex
	closed bool
	group  *errgroup.Group
}

func NewGoalTriggerDispatcher(
	baseLog *logger.Logger,
	baseline domainagg.BaselineActionsAggregate,
	weekly domainagg.WeeklyGoalsAggregate,
	metrics *observability.Metrics,
	cfg GoalDispatcherConfig,
) GoalTriggerDispatcher {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	cfg = cfg.withDefaults()
	g := &errgroup.Group{}
	g.SetLimit(cfg.Concurrency)
	return &goalTriggerDispatcher{
		log:      baseLog.With("service", "GoalTriggerDispatcher"),
		baseline: baseline,
		weekly:   weekly,
		metrics:  metrics,
		cfg:      cfg,
		group:    g,
	}
}

func (d *goalTriggerDispatcher) Fire(ev TriggerEvent) bool {
	ev.Trigger = triggers.Normalize(ev.Trigger)
	if ev.UserID == uuid.Nil || ev.Trigger == "" {
		d.metrics.IncDispatch("trigger", "invalid")
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.IncDispatch("trigger", "closed")
		d.log.Warn("goal trigger after close; dropping", "user_id", ev.UserID, "trigger", ev.Trigger)
		return false
	}
	if !d.group.TryGo(func() error {
		d.run(ev)
		return nil
	}) {
		d.metrics.IncDispatch("trigger", "dropped")
		d.log.Warn("goal dispatch saturated; dropping trigger",
			"user_id", ev.UserID,
			"trigger", ev.Trigger,
			"concurrency", d.cfg.Concurrency,
		)
		return false
	}
	d.metrics.IncDispatch("trigger", "queued")
	return true
}

func (d *goalTriggerDispatcher) FireSync(ctx context.Context, ev TriggerEvent) (DispatchResult, error) {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return DispatchResult{}, ErrDispatcherClosed
	}
	ev.Trigger = triggers.Normalize(ev.Trigger)
	return d.dispatch(ctx, ev)
}

func (d *goalTriggerDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the body of one queued task. It owns its context so the triggering
// request can finish without cancelling the goal writes.
func (d *goalTriggerDispatcher) run(ev TriggerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	if _, err := d.dispatch(ctx, ev); err != nil {
		d.metrics.IncDispatch("trigger", "failed")
		d.log.Warn("goal trigger failed",
			"user_id", ev.UserID,
			"trigger", ev.Trigger,
			"error", err,
		)
		return
	}
	d.metrics.IncDispatch("trigger", "done")
}

// dispatch runs both trackers. A failure in one does not skip the other.
func (d *goalTriggerDispatcher) dispatch(ctx context.Context, ev TriggerEvent) (res DispatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.IncDispatch("trigger", "panic")
			d.log.Error("goal trigger panic",
				"user_id", ev.UserID,
				"trigger", ev.Trigger,
				"panic", r,
			)
			err = fmt.Errorf("goal trigger %s: panic: %v", ev.Trigger, r)
		}
	}()

	var errs []error
	if d.baseline != nil {
		out, bErr := d.baseline.MarkComplete(ctx, domainagg.MarkCompleteInput{UserID: ev.UserID, Trigger: ev.Trigger})
		if bErr != nil {
			errs = append(errs, bErr)
		}
		res.Baseline = out
	}
	if d.weekly != nil {
		out, wErr := d.weekly.IncrementProgress(ctx, domainagg.IncrementProgressInput{
			UserID:      ev.UserID,
			Trigger:     ev.Trigger,
			IncrementBy: ev.IncrementBy,
		})
		if wErr != nil {
			errs = append(errs, wErr)
		}
		res.Weekly = out
	}
	return res, errors.Join(errs...)
}
