package aggregates

import (
	"time"

	"github.com/yungbote/careercoach-backend/internal/observability"
)

// Hooks receives per-operation outcomes from executeWrite, executeRead and secondary.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	IncSecondaryFailure(name, step string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) IncSecondaryFailure(string, string)             {}

// metricHooks forwards to the goal engine's OTel instruments. Op names arrive normalized.
type metricHooks struct{ m *observability.Metrics }

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricHooks{m: metrics}
}

func (h metricHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(name, status, dur)
}
func (h metricHooks) IncConflict(name string)               { h.m.IncAggregateConflict(name) }
func (h metricHooks) IncRetry(name string)                  { h.m.IncAggregateRetry(name) }
func (h metricHooks) IncSecondaryFailure(name, step string) { h.m.IncSecondaryFailure(name, step) }
