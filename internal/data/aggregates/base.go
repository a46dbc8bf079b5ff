package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/dbctx"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

const tracerName = "github.com/yungbote/careercoach-backend/internal/data/aggregates"

// Publisher is the slice of realtime/bus.Bus the aggregates need.
type Publisher interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
}

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Tracer trace.Tracer
	Bus    Publisher
	// Now is the clock every write stamps with. Tests move it across weeks.
	Now func() time.Time
	// Location is the reference timezone weeks are aligned in.
	Location *time.Location
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Tracer == nil {
		d.Tracer = observability.Tracer(tracerName)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return d
}

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// executeWrite runs fn in one transaction and maps whatever it returns.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	op = normalizeOp(op, "aggregate.write")
	return observe(ctx, deps, op, func(ctx context.Context) error {
		return deps.Runner.InTx(ctx, fn)
	})
}

// executeRead runs fn outside any transaction with the same tracing and hooks as writes.
func executeRead(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	op = normalizeOp(op, "aggregate.read")
	return observe(ctx, deps, op, func(ctx context.Context) error {
		return fn(dbctx.Context{Ctx: ctx})
	})
}

func observe(ctx context.Context, deps BaseDeps, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := deps.Tracer.Start(ctx, op)
	defer span.End()

	mapped := MapError(op, fn(ctx))

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.String("goals.status", status))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// secondary runs a post-commit step whose failure is logged and swallowed.
// It is detached from ctx cancellation so a caller hanging up after the primary
// commit does not drop the audit trail.
func secondary(ctx context.Context, deps BaseDeps, op, step string, userID any, fn func(ctx context.Context) error) bool {
	ctx = context.WithoutCancel(ctx)
	if err := fn(ctx); err != nil {
		deps.Hooks.IncSecondaryFailure(op, step)
		deps.Log.Warn("goal side effect failed; continuing",
			"op", op,
			"step", step,
			"user_id", userID,
			"error", err,
		)
		return false
	}
	return true
}

func normalizeOp(op, def string) string {
	op = strings.TrimSpace(op)
	if op == "" {
		return def
	}
	return op
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
