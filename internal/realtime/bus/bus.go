package bus

import (
	"context"
	"sync"

	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type nopBus struct{}

// NewNopBus discards every message.
func NewNopBus() Bus { return nopBus{} }

func (nopBus) Publish(context.Context, realtime.SSEMessage) error                { return nil }
func (nopBus) StartForwarder(context.Context, func(m realtime.SSEMessage)) error { return nil }
func (nopBus) Close() error                                                      { return nil }

// localBus delivers in-process, for single-instance deployments without Redis.
type localBus struct {
	mu       sync.RWMutex
	handlers []func(m realtime.SSEMessage)
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	handlers := append([]func(realtime.SSEMessage){}, b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return errNoCallback
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onMsg)
	idx := len(b.handlers) - 1
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.handlers) {
			b.handlers[idx] = func(realtime.SSEMessage) {}
		}
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.handlers = nil
	b.mu.Unlock()
	return nil
}
