package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging"
	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/service/messaging/memory"
)

type statusChanged struct {
	Label string
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		vendor    messaging.Vendor
		opts      []Option
		expectErr bool
	}{
		{name: "memory", vendor: messaging.VendorMemory},
		{name: "fs without base URL", vendor: messaging.VendorFS, expectErr: true},
		{name: "fs", vendor: messaging.VendorFS, opts: []Option{WithFsBaseURL(t.TempDir())}},
		{name: "unknown", vendor: "kafka", expectErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, err := New(tc.vendor, tc.opts...)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			srv.Close()
		})
	}
}

func TestService_TypedAndCatchAllListeners(t *testing.T) {
	for _, vendor := range []struct {
		name string
		opts []Option
		kind messaging.Vendor
	}{
		{name: "memory", kind: messaging.VendorMemory},
		{name: "fs", kind: messaging.VendorFS, opts: []Option{WithFsBaseURL(t.TempDir()), WithPollInterval(5 * time.Millisecond)}},
	} {
		t.Run(vendor.name, func(t *testing.T) {
			srv, err := New(vendor.kind, vendor.opts...)
			require.NoError(t, err)
			defer srv.Close()
			ctx := context.Background()

			var mu sync.Mutex
			var typed []string
			var all []string
			require.NoError(t, SetListenerOf[statusChanged](ctx, srv, func(_ context.Context, e *Event[statusChanged]) error {
				mu.Lock()
				defer mu.Unlock()
				typed = append(typed, e.Data.Label)
				return nil
			}))
			srv.SetListener(ctx, func(_ context.Context, e *Event[any]) error {
				mu.Lock()
				defer mu.Unlock()
				all = append(all, e.Context.ObligationID)
				return nil
			})

			publisher, err := PublisherOf[statusChanged](srv)
			require.NoError(t, err)
			again, err := PublisherOf[statusChanged](srv)
			require.NoError(t, err)
			assert.Same(t, publisher, again)

			eventContext := &Context{ObligationID: "o1", Action: "sendToAnalysis", FromStatus: "EM_ANDAMENTO", ToStatus: "EM_VALIDACAO_REGULATORIO"}
			require.NoError(t, publisher.Publish(ctx, NewEvent(eventContext, statusChanged{Label: "Send to Analysis"})))

			assert.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(typed) == 1 && len(all) == 1
			}, 2*time.Second, 5*time.Millisecond)
			assert.Equal(t, "Send to Analysis", typed[0])
			assert.Equal(t, "o1", all[0])
		})
	}
}

func TestService_FailedHandlerIsRetried(t *testing.T) {
	srv, err := New(messaging.VendorMemory, WithMemoryQueueConfig(func(string) memory.Config {
		config := memory.DefaultConfig()
		config.RetryDelay = time.Millisecond
		return config
	}))
	require.NoError(t, err)
	defer srv.Close()
	ctx := context.Background()

	var calls atomic.Int32
	require.NoError(t, SetListenerOf[statusChanged](ctx, srv, func(context.Context, *Event[statusChanged]) error {
		if calls.Add(1) == 1 {
			return errors.New("temporary")
		}
		return nil
	}))
	publisher, err := PublisherOf[statusChanged](srv)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{ObligationID: "o1"}, statusChanged{})))

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestPublisher_SkipsUnlistenedQueues(t *testing.T) {
	srv, err := New(messaging.VendorMemory, WithMemoryQueueConfig(func(string) memory.Config {
		config := memory.DefaultConfig()
		config.QueueBuffer = 1
		return config
	}))
	require.NoError(t, err)
	publisher, err := PublisherOf[statusChanged](srv)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{ObligationID: "o1"}, statusChanged{})))
	}
}

func TestContext_Transitioned(t *testing.T) {
	assert.False(t, (*Context)(nil).Transitioned())
	assert.False(t, (&Context{FromStatus: "PENDENTE"}).Transitioned())
	assert.False(t, (&Context{FromStatus: "PENDENTE", ToStatus: "PENDENTE"}).Transitioned())
	assert.True(t, (&Context{FromStatus: "PENDENTE", ToStatus: "EM_ANDAMENTO"}).Transitioned())
}
