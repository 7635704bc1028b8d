package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/idgen"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
)

// Config controls retries and buffering of an in-memory queue.
type Config struct {
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay  time.Duration `json:"retryDelay" yaml:"retryDelay"`
	DeadLetter  bool          `json:"deadLetter" yaml:"deadLetter"`
	QueueBuffer int           `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns the standard in-memory queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 256,
	}
}

// Message is a delivery from a memory queue.
type Message[T any] struct {
	id          string
	payload     T
	queue       *Queue[T]
	attempts    int
	publishedAt time.Time

	mu      sync.Mutex
	settled bool
	lastErr error
}

// ID returns the message identifier; retries keep the same id.
func (m *Message[T]) ID() string { return m.id }

// T returns the payload.
func (m *Message[T]) T() *T { return &m.payload }

// Attempts returns the number of failed deliveries so far.
func (m *Message[T]) Attempts() int { return m.attempts }

// Err returns the error recorded by the last Nack.
func (m *Message[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Ack settles the message.
func (m *Message[T]) Ack() error {
	return m.settle(nil, false)
}

// Nack settles the message as failed; it is redelivered after RetryDelay
// until MaxRetries is exhausted, then moved to the dead letter list.
func (m *Message[T]) Nack(err error) error {
	return m.settle(err, true)
}

func (m *Message[T]) settle(err error, failed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settled {
		return fmt.Errorf("message %s already settled", m.id)
	}
	m.settled = true
	if !failed {
		return nil
	}
	m.lastErr = err
	m.queue.retry(m)
	return nil
}

// Queue is an in-memory messaging.Queue backed by a buffered channel.
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config

	mu     sync.Mutex
	dlq    []*Message[T]
	closed bool
}

var _ messaging.Queue[any] = (*Queue[any])(nil)

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish enqueues a copy of t; it blocks while the buffer is full.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("payload was nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{id: idgen.New(), payload: *t, queue: q, publishedAt: clock.Now()}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of queued messages.
func (q *Queue[T]) Size() int { return len(q.messages) }

// DeadLetters returns the payloads of messages that exhausted their retries.
func (q *Queue[T]) DeadLetters() []*Message[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Message[T](nil), q.dlq...)
}

// DLQSize returns the number of dead lettered messages.
func (q *Queue[T]) DLQSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.dlq)
}

// Close stops retries from being redelivered.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *Queue[T]) retry(m *Message[T]) {
	attempts := m.attempts + 1
	if attempts > q.config.MaxRetries {
		if q.config.DeadLetter {
			q.mu.Lock()
			q.dlq = append(q.dlq, m)
			q.mu.Unlock()
		}
		return
	}
	next := &Message[T]{id: m.id, payload: m.payload, queue: q, attempts: attempts, publishedAt: m.publishedAt}
	time.AfterFunc(q.config.RetryDelay, func() {
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}
		select {
		case q.messages <- next:
		default:
			q.mu.Lock()
			q.dlq = append(q.dlq, next)
			q.mu.Unlock()
		}
	})
}
