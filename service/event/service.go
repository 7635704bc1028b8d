package event

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/viant/afs"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging/fs"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging/memory"
)

const anyQueueName = "any"

// Service hands out typed publishers and listeners over one queue vendor.
// Every typed event is also delivered to the catch-all listener.
type Service struct {
	queueVendor    messaging.Vendor
	fs             afs.Service
	fsQueueConfig  func(name string) fs.Config
	memQueueConfig func(name string) memory.Config
	logger         *slog.Logger
	pollInterval   time.Duration

	publisher       *Publisher[any]
	listener        *Listener[any]
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]stopper
	mux             sync.RWMutex
}

type stopper interface{ Stop() }

type muter interface{ mute() }

func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		logger:          slog.Default(),
		pollInterval:    100 * time.Millisecond,
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]stopper),
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch queueVendor {
	case messaging.VendorFS:
		if ret.fsQueueConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires a base URL")
		}
		if ret.fs == nil {
			ret.fs = afs.New()
		}
	case messaging.VendorMemory:
		if ret.memQueueConfig == nil {
			ret.memQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}
	queue, err := QueueOf[Event[any]](ret, anyQueueName)
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher[any](queue)
	return ret, nil
}

// QueueOf creates a named queue of the configured vendor.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case messaging.VendorFS:
		return fs.NewQueue[T](s.fs, s.fsQueueConfig(name))
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

// SetListener replaces the catch-all listener.
func (s *Service) SetListener(ctx context.Context, handler Handler[any]) {
	s.mux.Lock()
	previous := s.listener
	s.listener = NewListener[any](s.publisher, handler, s.logger, s.pollInterval)
	s.publisher.listened.Store(true)
	s.listener.Start(ctx)
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
}

// Close stops every listener.
func (s *Service) Close() {
	s.mux.Lock()
	listeners := make([]stopper, 0, len(s.typedListeners)+1)
	for key, l := range s.typedListeners {
		listeners = append(listeners, l)
		delete(s.typedListeners, key)
	}
	if s.listener != nil {
		listeners = append(listeners, s.listener)
		s.listener = nil
	}
	for _, p := range s.typedPublishers {
		p.(muter).mute()
	}
	s.publisher.mute()
	s.mux.Unlock()
	for _, l := range listeners {
		l.Stop()
	}
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener of events carrying T.
func SetListenerOf[T any](ctx context.Context, s *Service, handler Handler[T]) error {
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	key := keyOf[T]()
	listener := NewListener[T](publisher, handler, s.logger, s.pollInterval)
	s.mux.Lock()
	previous := s.typedListeners[key]
	s.typedListeners[key] = listener
	publisher.listened.Store(true)
	listener.Start(ctx)
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
	return nil
}

// PublisherOf returns the publisher of events carrying T.
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T]), nil
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	publisher.anyQueue = s.publisher.queue
	publisher.anyListened = &s.publisher.listened
	s.typedPublishers[key] = publisher
	return publisher, nil
}
