package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
)

func TestService_PublishDeliversInOrder(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	var mu sync.Mutex
	var received []int
	done := make(chan struct{})

	_, err := service.Subscribe(interfaces.EventViewerProgress, func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.Payload.(int))
		if len(received) == 50 {
			close(done)
		}
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventViewerProgress, Payload: i}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range received {
		assert.Equal(t, i, v)
	}
}

func TestService_Unsubscribe(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	calls := 0
	id, err := service.Subscribe(interfaces.EventTextBodyLoaded, func(ctx context.Context, event interfaces.Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventTextBodyLoaded}))
	require.NoError(t, service.Unsubscribe(interfaces.EventTextBodyLoaded, id))
	require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventTextBodyLoaded}))

	assert.Equal(t, 1, calls)
	assert.Error(t, service.Unsubscribe(interfaces.EventTextBodyLoaded, id), "second unsubscribe fails")
}

func TestService_PublishSyncCollectsErrors(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	boom := errors.New("boom")
	_, _ = service.Subscribe(interfaces.EventViewerState, func(ctx context.Context, event interfaces.Event) error { return boom })
	_, _ = service.Subscribe(interfaces.EventViewerState, func(ctx context.Context, event interfaces.Event) error { return nil })

	err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventViewerState})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestService_SubscribeRejectsNil(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	_, err := service.Subscribe(interfaces.EventViewerState, nil)
	assert.Error(t, err)
}

func TestService_PublishAfterClose(t *testing.T) {
	service := NewService(arbor.NewLogger())
	require.NoError(t, service.Close())

	err := service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventViewerState})
	assert.ErrorIs(t, err, ErrServiceClosed)
	assert.NoError(t, service.Close(), "close is idempotent")
}
