package app

import (
	"context"

	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/realtime"
	"github.com/yungbote/careercoach-backend/internal/realtime/bus"
)

type instrumentedBus struct {
	bus.Bus
	metrics *observability.Metrics
}

func instrumentBus(inner bus.Bus, metrics *observability.Metrics) bus.Bus {
	if inner == nil {
		return nil
	}
	return &instrumentedBus{Bus: inner, metrics: metrics}
}

func (b *instrumentedBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	err := b.Bus.Publish(ctx, msg)
	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.IncBusPublish(status)
	return err
}
