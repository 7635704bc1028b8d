package event

import (
	"context"
	"sync/atomic"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
)

// Publisher writes typed events to its queue and mirrors them to the
// catch-all queue of the owning Service. Queues nobody listens to are
// skipped so that bounded queues never fill up.
type Publisher[T any] struct {
	queue       messaging.Queue[Event[T]]
	anyQueue    messaging.Queue[Event[any]]
	listened    atomic.Bool
	anyListened *atomic.Bool
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p.anyQueue != nil && p.anyListened != nil && p.anyListened.Load() {
		if err := p.anyQueue.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil {
			return err
		}
	}
	if !p.listened.Load() {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the next delivery; the caller settles it.
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

func (p *Publisher[T]) mute() { p.listened.Store(false) }
