// Package fs implements a durable messaging.Queue on top of afs. Each message
// is a JSON file that moves between the pending, processing, completed and
// dlq folders; file names start with the due time so a name ordered listing
// is delivery order.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/idgen"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
)

const (
	pendingFolder    = "pending"
	processingFolder = "processing"
	completedFolder  = "completed"
	dlqFolder        = "dlq"
)

// Config controls the location and retry behaviour of a file queue.
type Config struct {
	BaseURL       string        `json:"baseURL" yaml:"baseURL"`
	MaxRetries    int           `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay    time.Duration `json:"retryDelay" yaml:"retryDelay"`
	KeepCompleted bool          `json:"keepCompleted" yaml:"keepCompleted"`
}

// DefaultConfig returns a file queue configuration rooted at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, MaxRetries: 3, RetryDelay: time.Second, KeepCompleted: true}
}

// Message is the persisted envelope of a payload.
type Message[T any] struct {
	ID          string    `json:"id"`
	Data        T         `json:"data"`
	Retries     int       `json:"retries"`
	Error       string    `json:"error,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	DueAt       time.Time `json:"dueAt"`

	queue   *Queue[T]
	name    string
	mu      sync.Mutex
	settled bool
}

// T returns the payload.
func (m *Message[T]) T() *T { return &m.Data }

// Attempts returns the number of failed deliveries so far.
func (m *Message[T]) Attempts() int { return m.Retries }

// Ack moves the message to completed, or drops it when completed messages
// are not kept.
func (m *Message[T]) Ack() error {
	if err := m.settle(); err != nil {
		return err
	}
	return m.queue.complete(context.Background(), m)
}

// Nack requeues the message after RetryDelay or dead letters it once
// MaxRetries is exceeded.
func (m *Message[T]) Nack(err error) error {
	if e := m.settle(); e != nil {
		return e
	}
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	return m.queue.fail(context.Background(), m)
}

func (m *Message[T]) settle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settled {
		return fmt.Errorf("message %s already settled", m.ID)
	}
	m.settled = true
	return nil
}

// Queue is a filesystem backed messaging.Queue. Consume never blocks: it
// returns a nil message when nothing is due.
type Queue[T any] struct {
	fs     afs.Service
	config Config
	mu     sync.Mutex
}

var _ messaging.Queue[any] = (*Queue[any])(nil)

// NewQueue creates the queue folders under config.BaseURL.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("queue base URL was empty")
	}
	if !strings.Contains(config.BaseURL, "://") {
		config.BaseURL = url.Normalize(config.BaseURL, file.Scheme)
	}
	ret := &Queue[T]{fs: fs, config: config}
	ctx := context.Background()
	for _, folder := range []string{pendingFolder, processingFolder, completedFolder, dlqFolder} {
		location := ret.folder(folder)
		if exists, _ := fs.Exists(ctx, location); exists {
			continue
		}
		if err := fs.Create(ctx, location, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create queue folder %s: %w", location, err)
		}
	}
	return ret, nil
}

// Publish writes t to the pending folder.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("payload was nil")
	}
	now := clock.Now()
	msg := &Message[T]{ID: idgen.New(), Data: *t, PublishedAt: now, DueAt: now}
	return q.write(ctx, pendingFolder, msg)
}

// Consume claims the oldest due pending message.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	names, err := q.names(ctx, pendingFolder)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	for _, name := range names {
		if due, ok := dueOf(name); ok && due.After(now) {
			break
		}
		source := url.Join(q.folder(pendingFolder), name)
		msg, err := q.read(ctx, source)
		if err != nil {
			_ = q.fs.Move(ctx, source, url.Join(q.folder(dlqFolder), name))
			return nil, err
		}
		if err = q.fs.Move(ctx, source, url.Join(q.folder(processingFolder), name)); err != nil {
			return nil, fmt.Errorf("failed to claim message %s: %w", msg.ID, err)
		}
		msg.queue = q
		msg.name = name
		return msg, nil
	}
	return nil, nil
}

// Size returns the number of pending messages.
func (q *Queue[T]) Size(ctx context.Context) (int, error) {
	names, err := q.names(ctx, pendingFolder)
	return len(names), err
}

// DLQSize returns the number of dead lettered messages.
func (q *Queue[T]) DLQSize(ctx context.Context) (int, error) {
	names, err := q.names(ctx, dlqFolder)
	return len(names), err
}

func (q *Queue[T]) complete(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	processing := url.Join(q.folder(processingFolder), m.name)
	if q.config.KeepCompleted {
		if err := q.fs.Move(ctx, processing, url.Join(q.folder(completedFolder), m.name)); err != nil {
			return fmt.Errorf("failed to complete message %s: %w", m.ID, err)
		}
		return nil
	}
	return q.fs.Delete(ctx, processing)
}

func (q *Queue[T]) fail(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	folder := dlqFolder
	if m.Retries <= q.config.MaxRetries {
		folder = pendingFolder
		m.DueAt = clock.Now().Add(q.config.RetryDelay)
	}
	if err := q.write(ctx, folder, m); err != nil {
		return err
	}
	return q.fs.Delete(ctx, url.Join(q.folder(processingFolder), m.name))
}

func (q *Queue[T]) write(ctx context.Context, folder string, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}
	location := url.Join(q.folder(folder), fileName(m))
	if err = q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", location, err)
	}
	return nil
}

func (q *Queue[T]) read(ctx context.Context, location string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", location, err)
	}
	var msg Message[T]
	if err = json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", location, err)
	}
	return &msg, nil
}

func (q *Queue[T]) names(ctx context.Context, folder string) ([]string, error) {
	objects, err := q.fs.List(ctx, q.folder(folder))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s messages: %w", folder, err)
	}
	var ret []string
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		ret = append(ret, object.Name())
	}
	sort.Strings(ret)
	return ret, nil
}

func (q *Queue[T]) folder(name string) string {
	return url.Join(q.config.BaseURL, name)
}

func fileName[T any](m *Message[T]) string {
	return fmt.Sprintf("%020d-%s.json", m.DueAt.UnixNano(), m.ID)
}

func dueOf(name string) (time.Time, bool) {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}
