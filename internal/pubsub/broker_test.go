package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestBroker_SendAndDecode(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(4)
	defer cancel()

	change := NewChange(EventRoundCreated, 7)
	change.RoundID = 3
	change.RoundNo = 1
	change.Deltas = []schema.Delta{{PlayerID: 1, Delta: 10}, {PlayerID: 2, Delta: -10}}
	require.NoError(t, b.SendMessage(EventRoundCreated, change))

	msg := receive(t, msgs)
	assert.Equal(t, EventRoundCreated, msg.Topic)

	var got Change
	require.NoError(t, b.ProcessMessage(msg.Data, &got))
	assert.Equal(t, change.ID, got.ID)
	assert.Equal(t, int64(7), got.SessionID)
	assert.Equal(t, int64(3), got.RoundID)
	assert.Equal(t, change.Deltas, got.Deltas)
	assert.True(t, change.At.Equal(got.At))
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker()
	first, cancelFirst := b.Subscribe(1)
	defer cancelFirst()
	second, cancelSecond := b.Subscribe(1)
	defer cancelSecond()

	require.NoError(t, b.SendMessage(EventSessionCreated, NewChange(EventSessionCreated, 1)))

	assert.Equal(t, EventSessionCreated, receive(t, first).Topic)
	assert.Equal(t, EventSessionCreated, receive(t, second).Topic)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = b.SendMessage(EventPlayerUpdated, NewChange(EventPlayerUpdated, 1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendMessage blocked on a full subscriber")
	}
	assert.Len(t, msgs, 1, "only the buffered message is kept")
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-msgs
	assert.False(t, ok)
	require.NoError(t, b.SendMessage(EventRoundUndone, NewChange(EventRoundUndone, 1)))
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(1)
	b.Close()
	cancel()

	_, ok := <-msgs
	assert.False(t, ok)

	late, _ := b.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok, "subscribing after Close yields a closed channel")
}

func TestForward(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(4)

	sink := NewMock()
	sink.SendMessageFunc = func(topic EventType, data any) error {
		if topic == EventPlayerDeleted {
			return errors.New("boom")
		}
		return nil
	}

	created := NewChange(EventRoundCreated, 1)
	require.NoError(t, b.SendMessage(EventRoundCreated, created))
	require.NoError(t, b.SendMessage(EventPlayerDeleted, NewChange(EventPlayerDeleted, 1)))
	require.NoError(t, b.SendMessage(EventRoundUndone, NewChange(EventRoundUndone, 1)))
	cancel()

	Forward(context.Background(), msgs, sink)

	assert.Equal(t, []EventType{EventRoundCreated, EventPlayerDeleted, EventRoundUndone}, sink.Topics())
	changes := sink.Changes()
	require.Len(t, changes, 3)
	assert.Equal(t, created.ID, changes[0].ID)
}

func TestForward_StopsOnContext(t *testing.T) {
	b := NewBroker()
	msgs, cancel := b.Subscribe(1)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	stop()

	done := make(chan struct{})
	go func() {
		Forward(ctx, msgs, NewMock())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Forward did not stop after context cancellation")
	}
}
