package dto

import "time"

// CreateEventResponse 创建事件的响应。
type CreateEventResponse struct {
	EventID uint64 `json:"event_id"`
}

// DispatchResponse 手动分发的响应。
type DispatchResponse struct {
	Dispatched int `json:"dispatched"`
}

// EventStatusCounts 各状态下的事件数，供运维观测。
type EventStatusCounts struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
}

// NotificationDto 向上层暴露的通知视图模型。
type NotificationDto struct {
	ID        uint64     `json:"id"`
	EventID   uint64     `json:"event_id"`
	EventType string     `json:"event_type"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary,omitempty"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// ListNotificationsResponse 列表响应结构，包含未读数。
type ListNotificationsResponse struct {
	Notifications []NotificationDto `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
}
