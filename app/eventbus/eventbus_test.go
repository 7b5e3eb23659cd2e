package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInProcessBus(t *testing.T) EventBus {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := NewEventBus(context.Background(), Config{}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { bus.Close() })
	return bus
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := newInProcessBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, bus.Publish("a", message.NewMessage("1", []byte("hello"))))
	got := receive(t, ch)
	assert.Equal(t, "hello", string(got.Payload))
}

func TestEventBus_TopicMetadataWins(t *testing.T) {
	bus := newInProcessBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "routed")
	require.NoError(t, err)

	msg, err := handlerwrapper.NewMessage("routed", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish("", msg))

	got := receive(t, ch)
	assert.Equal(t, msg.UUID, got.UUID)
}

func TestEventBus_NoDestination(t *testing.T) {
	bus := newInProcessBus(t)
	assert.Error(t, bus.Publish("", message.NewMessage("1", nil)))
}

// ackGatedSource delivers msgs one by one, each only after the previous one
// was acked, the way the NATS core subscriber does.
func ackGatedSource(msgs ...*message.Message) <-chan *message.Message {
	in := make(chan *message.Message)
	go func() {
		defer close(in)
		for _, msg := range msgs {
			in <- msg
			<-msg.Acked()
		}
	}()
	return in
}

func TestDetachAcks_SlowConsumerDoesNotHoldBackNext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := message.NewMessage("slow", []byte(`{"member_id":"slow"}`))
	slow.Metadata.Set(handlerwrapper.MetadataTopic, "tracking.presence.updated.v1")
	fast := message.NewMessage("fast", []byte(`{"member_id":"fast"}`))

	out := detachAcks(ctx, ackGatedSource(slow, fast))

	var first *message.Message
	select {
	case first = <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("first message not delivered")
	}
	assert.Equal(t, "slow", first.UUID)
	assert.Equal(t, slow.Payload, first.Payload)
	assert.Equal(t, "tracking.presence.updated.v1", first.Metadata.Get(handlerwrapper.MetadataTopic))

	// The first copy is still in flight; the second must arrive anyway.
	select {
	case second := <-out:
		assert.Equal(t, "fast", second.UUID)
		second.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("second message held back by the unacked first one")
	}
	first.Ack()

	select {
	case _, ok := <-out:
		assert.False(t, ok, "output closes with its source")
	case <-time.After(2 * time.Second):
		t.Fatal("output not closed")
	}
}

func TestDetachAcks_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *message.Message, 1)
	out := detachAcks(ctx, in)

	msg := message.NewMessage("1", nil)
	in <- msg
	cancel()

	select {
	case <-msg.Nacked():
	case delivered := <-out:
		// The hand-over can win the race with cancellation.
		if delivered != nil {
			<-msg.Acked()
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message neither handed over nor nacked")
	}
}
