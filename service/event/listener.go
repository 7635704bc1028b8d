package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Handler processes one event; a returned error nacks the delivery.
type Handler[T any] func(ctx context.Context, event *Event[T]) error

// Listener consumes events in a background goroutine until stopped.
type Listener[T any] struct {
	publisher    *Publisher[T]
	handler      Handler[T]
	logger       *slog.Logger
	pollInterval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewListener[T any](publisher *Publisher[T], handler Handler[T], logger *slog.Logger, pollInterval time.Duration) *Listener[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Listener[T]{publisher: publisher, handler: handler, logger: logger, pollInterval: pollInterval}
}

// Start launches the consume loop.
func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx)
}

// Stop cancels the loop and waits for the in-flight handler to return.
func (l *Listener[T]) Stop() {
	l.once.Do(func() {
		if l.cancel == nil {
			return
		}
		l.cancel()
		<-l.done
	})
}

func (l *Listener[T]) run(ctx context.Context) {
	defer close(l.done)
	for {
		msg, err := l.publisher.Consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.logger.Error("failed to consume event", "error", err)
		}
		if msg == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.pollInterval):
			}
			continue
		}
		event := msg.T()
		if err = l.handle(ctx, event); err != nil {
			l.logger.Warn("event handler failed", "obligationId", obligationID(event.Context), "attempt", msg.Attempts(), "error", err)
			if nackErr := msg.Nack(err); nackErr != nil {
				l.logger.Error("failed to nack event", "error", nackErr)
			}
			continue
		}
		if err = msg.Ack(); err != nil {
			l.logger.Error("failed to ack event", "error", err)
		}
	}
}

func (l *Listener[T]) handle(ctx context.Context, event *Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return l.handler(ctx, event)
}

func obligationID(c *Context) string {
	if c == nil {
		return ""
	}
	return c.ObligationID
}
