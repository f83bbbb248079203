// FILE: internal/service/progress_publisher.go
package service

import (
	"context"

	"inspection-be/internal/pkg/logger"
	"inspection-be/pkg/events"
)

// EventSink receives domain events: the NATS publisher, the websocket hub and
// the work order status service all satisfy it.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IProgressPublisher interface {
	Publish(ctx context.Context, evts ...events.Event)
}

// ProgressPublisher fans events out to every sink. Delivery is best-effort:
// events are emitted after the state they describe is committed.
type ProgressPublisher struct {
	sinks  []EventSink
	logger logger.ILogger
}

// NewProgressPublisher skips nil sinks, so optional transports can be passed as-is.
func NewProgressPublisher(log logger.ILogger, sinks ...EventSink) *ProgressPublisher {
	p := &ProgressPublisher{logger: log}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	return p
}

func (p *ProgressPublisher) Publish(ctx context.Context, evts ...events.Event) {
	for _, event := range evts {
		for _, sink := range p.sinks {
			if err := sink.Publish(ctx, event); err != nil {
				p.logger.Warn("ProgressPublisher", "Failed to publish event", map[string]interface{}{
					"type":  event.EventType(),
					"error": err.Error(),
				})
			}
		}
	}
}
