package shutdown

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// DefaultGrace bounds how long a process waits for in-flight work after a signal.
const DefaultGrace = 15 * time.Second

func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GraceContext is detached from the signal context so cleanup still gets its full budget.
func GraceContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultGrace
	}
	return context.WithTimeout(context.Background(), d)
}
