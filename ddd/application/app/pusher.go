package app

import (
	"notification-dispatch/pkg/sse"
)

// LivePusher delivers live signals to connected clients. Delivery is
// best-effort; the durable fan-out row remains the source of truth for
// offline users.
type LivePusher interface {
	SendCreated(userUUID string, data map[string]interface{})
	SendUnreadCount(userUUID string, count int64)
}

// ssePusher pushes through the SSE hub (bridged over Redis Pub/Sub when
// the bridge is initialised).
type ssePusher struct{}

func NewSSEPusher() LivePusher {
	return &ssePusher{}
}

func (p *ssePusher) SendCreated(userUUID string, data map[string]interface{}) {
	sse.PublishNotification(userUUID, sse.Event{
		Type: "notification.created",
		Data: data,
	})
}

func (p *ssePusher) SendUnreadCount(userUUID string, count int64) {
	sse.PublishNotification(userUUID, sse.Event{
		Type: "notification.unread_count",
		Data: map[string]interface{}{
			"unread_count": count,
		},
	})
}
