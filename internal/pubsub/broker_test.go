package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[string]{broker.Subscribe(ctx), broker.Subscribe(ctx)}
	require.Equal(t, 2, broker.SubscriberCount())

	require.Equal(t, 2, broker.Publish(UpdatedEvent, "commands.yaml"))

	for _, ch := range subs {
		event := receive(t, ch)
		require.Equal(t, UpdatedEvent, event.Type)
		require.Equal(t, "commands.yaml", event.Payload)
		require.False(t, event.Timestamp.IsZero())
	}
}

func TestBroker_ContextCancellationClosesSubscription(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_DropsWhenSubscriberIsFull(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	require.Equal(t, 1, broker.Publish(UpdatedEvent, 1))
	require.Equal(t, 0, broker.Publish(UpdatedEvent, 2), "full buffer drops the event")

	require.Equal(t, 1, receive(t, ch).Payload)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, broker.SubscriberCount())
	require.Equal(t, 0, broker.Publish(DeletedEvent, "late"))

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")
}

func TestBroker_CancelAfterCloseDoesNotPanic(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	_ = broker.Subscribe(ctx)
	broker.Close()
	cancel()
	time.Sleep(10 * time.Millisecond)
}
