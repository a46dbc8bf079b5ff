// Package ctxutil carries per-request values through a context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	traceKey   struct{}
	requestKey struct{}
)

// TraceData correlates log lines and responses for one HTTP request.
type TraceData struct {
	TraceID   string
	RequestID string
}

// RequestData carries the authenticated caller.
type RequestData struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	return valueOf[*TraceData](ctx, traceKey{})
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	return valueOf[*RequestData](ctx, requestKey{})
}

// UserIDFrom returns the authenticated user, or uuid.Nil when there is none.
func UserIDFrom(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func valueOf[T any](ctx context.Context, key any) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, ok := ctx.Value(key).(T)
	if !ok {
		return zero
	}
	return v
}
