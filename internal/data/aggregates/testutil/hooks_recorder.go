package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/careercoach-backend/internal/data/aggregates"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type SignalKind string

const (
	SignalOperation SignalKind = "operation"
	SignalConflict  SignalKind = "conflict"
	SignalRetry     SignalKind = "retry"
	SignalSecondary SignalKind = "secondary"
)

// Signal is one hook call. Status and Duration are set for operations, Step for
// secondary failures.
type Signal struct {
	Kind     SignalKind
	Name     string
	Status   string
	Step     string
	Duration time.Duration
}

// HooksRecorder is an aggregates.Hooks that keeps every signal in call order.
type HooksRecorder struct {
	mu      sync.Mutex
	signals []Signal
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) add(s Signal) {
	h.mu.Lock()
	h.signals = append(h.signals, s)
	h.mu.Unlock()
}

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.add(Signal{Kind: SignalOperation, Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) { h.add(Signal{Kind: SignalConflict, Name: name}) }
func (h *HooksRecorder) IncRetry(name string)    { h.add(Signal{Kind: SignalRetry, Name: name}) }

func (h *HooksRecorder) IncSecondaryFailure(name, step string) {
	h.add(Signal{Kind: SignalSecondary, Name: name, Step: step})
}

// Signals returns the recorded signals of kind, in call order.
func (h *HooksRecorder) Signals(kind SignalKind) []Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Signal
	for _, s := range h.signals {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// OperationsNamed returns the statuses recorded for one op, in order.
func (h *HooksRecorder) OperationsNamed(name string) []string {
	var out []string
	for _, s := range h.Signals(SignalOperation) {
		if s.Name == name {
			out = append(out, s.Status)
		}
	}
	return out
}

// PublishRecorder is an aggregates.Publisher that keeps every message. A non-nil
// Err is returned after the message is recorded.
type PublishRecorder struct {
	Err error

	mu   sync.Mutex
	sent []realtime.SSEMessage
}

var _ aggregates.Publisher = (*PublishRecorder)(nil)

func (p *PublishRecorder) Publish(_ context.Context, msg realtime.SSEMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return p.Err
}

// Messages returns a copy of everything published so far.
func (p *PublishRecorder) Messages() []realtime.SSEMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.SSEMessage(nil), p.sent...)
}

// Events lists the published event names, in order.
func (p *PublishRecorder) Events() []realtime.SSEEvent {
	msgs := p.Messages()
	out := make([]realtime.SSEEvent, len(msgs))
	for i, m := range msgs {
		out[i] = m.Event
	}
	return out
}
