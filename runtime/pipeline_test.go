package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"notify-lab/domain"
	"notify-lab/domain/event"
	"notify-lab/observability"
	"notify-lab/runtime/workers"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// Wires a real registry behind a dispatcher, the way the engine does, and
// drives it with raw notifications as the listener would.
func newTestPipeline(t *testing.T) (chan event.Raw, *Registry, *observability.MonitoringManager, func()) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	stats := observability.NewMonitoringManager(log)
	registry := NewRegistry(log, stats, 16)

	raw := make(chan event.Raw, 16)
	dispatcher := workers.NewDispatcherWorker(log, raw, registry, stats)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = dispatcher.Run(ctx)
	}()

	return raw, registry, stats, func() {
		cancel()
		<-done
	}
}

func rawMessage(t *testing.T, msg domain.Message, members []domain.UserID) event.Raw {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"message": msg, "members": members})
	require.NoError(t, err)
	return event.Raw{Channel: event.ChannelMessageCreated, Payload: string(payload)}
}

func receiveEvent(t *testing.T, rcv <-chan event.ChangeEvent) event.ChangeEvent {
	t.Helper()
	select {
	case e := <-rcv:
		return e
	case <-time.After(time.Second):
		require.Fail(t, "No event received in time")
		return nil
	}
}

func TestPipeline_MessageReachesEveryMember(t *testing.T) {
	req := require.New(t)
	raw, registry, _, stop := newTestPipeline(t)
	defer stop()

	// Given two members subscribed and a third user not in the chat
	alice := registry.Subscribe(1)
	defer alice.Close()
	bob := registry.Subscribe(2)
	defer bob.Close()
	eve := registry.Subscribe(3)
	defer eve.Close()

	// When a message for members [1,2] arrives
	msg := domain.Message{ID: 42, ChatID: 7, SenderID: 1, Content: "hello"}
	raw <- rawMessage(t, msg, []domain.UserID{1, 2})

	// Then both members observe the same event
	expected := event.NewMessage{Message: msg}
	req.Equal(expected, receiveEvent(t, alice.Events()))
	req.Equal(expected, receiveEvent(t, bob.Events()))

	// Then the outsider observes nothing
	select {
	case e := <-eve.Events():
		req.Failf("Unexpected event", "user 3 received %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPipeline_OrderPreservedPerUser(t *testing.T) {
	req := require.New(t)
	raw, registry, _, stop := newTestPipeline(t)
	defer stop()

	rcv := registry.Subscribe(1)
	defer rcv.Close()

	// When several messages arrive in sequence
	for i := int64(1); i <= 5; i++ {
		raw <- rawMessage(t, domain.Message{ID: i, ChatID: 7, SenderID: 2}, []domain.UserID{1})
	}

	// Then the stream observes them in arrival order
	for i := int64(1); i <= 5; i++ {
		e := receiveEvent(t, rcv.Events())
		msg, ok := e.(event.NewMessage)
		req.True(ok)
		req.Equal(i, msg.Message.ID)
	}
}

func TestPipeline_MalformedNotificationDoesNotStallTheStream(t *testing.T) {
	req := require.New(t)
	raw, registry, stats, stop := newTestPipeline(t)
	defer stop()

	rcv := registry.Subscribe(1)
	defer rcv.Close()

	// When a malformed notification precedes a valid one
	raw <- event.Raw{Channel: event.ChannelMessageCreated, Payload: `not json`}
	msg := domain.Message{ID: 9, ChatID: 7, SenderID: 2, Content: "still alive"}
	raw <- rawMessage(t, msg, []domain.UserID{1})

	// Then the valid one is still delivered
	req.Equal(event.NewMessage{Message: msg}, receiveEvent(t, rcv.Events()))
	req.Equal(uint64(1), atomic.LoadUint64(&stats.DecodeFailures))
}

func TestPipeline_ChatLifecycleEvents(t *testing.T) {
	req := require.New(t)
	raw, registry, _, stop := newTestPipeline(t)
	defer stop()

	rcv := registry.Subscribe(5)
	defer rcv.Close()

	chat := domain.Chat{ID: 3, WorkspaceID: 1, Name: "general", Type: "group", Members: []domain.UserID{4, 5}}

	// When the chat is created with user 5 as a member
	payload, err := json.Marshal(map[string]any{"op": "INSERT", "new": chat})
	req.NoError(err)
	raw <- event.Raw{Channel: event.ChannelChatUpdated, Payload: string(payload)}

	// Then user 5 sees the new chat
	e := receiveEvent(t, rcv.Events())
	req.Equal(event.KindNewChat, e.Kind())
	req.Equal(event.NewChat{Chat: chat}, e)

	// When the chat is deleted
	payload, err = json.Marshal(map[string]any{"op": "DELETE", "old": chat})
	req.NoError(err)
	raw <- event.Raw{Channel: event.ChannelChatUpdated, Payload: string(payload)}

	// Then user 5 sees the removal
	e = receiveEvent(t, rcv.Events())
	req.Equal(event.KindRemoveFromChat, e.Kind())
	req.Equal(event.RemoveFromChat{Chat: chat}, e)
}
