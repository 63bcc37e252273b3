package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubscribePublish(t *testing.T) {
	h := NewHub()

	events, unsubscribe := h.Subscribe("user-1")
	defer unsubscribe()

	h.Publish("user-1", Event{Type: "notification.created", Data: map[string]interface{}{"event_id": 1}})

	select {
	case ev := <-events:
		require.Equal(t, "notification.created", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscriber channel")
	}
}

func TestPublishOnlyToSubscribedUser(t *testing.T) {
	h := NewHub()

	events, unsubscribe := h.Subscribe("user-1")
	defer unsubscribe()

	h.Publish("user-2", Event{Type: "notification.created"})

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v for other user", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()

	events, unsubscribe := h.Subscribe("user-1")
	unsubscribe()

	_, ok := <-events
	require.False(t, ok)

	// Publishing after unsubscribe must not panic.
	h.Publish("user-1", Event{Type: "notification.created"})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()

	_, unsubscribe := h.Subscribe("user-1")
	defer unsubscribe()

	// Overflow the subscriber buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish("user-1", Event{Type: "notification.unread_count"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}
