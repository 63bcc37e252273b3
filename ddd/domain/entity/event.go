package entity

import "time"

// EventStatus 通知事件分发状态。
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusSent       EventStatus = "SENT"
	EventStatusFailed     EventStatus = "FAILED"
)

// EventType 通知事件类型。
type EventType string

const (
	EventTypeContentPublished EventType = "CONTENT_PUBLISHED"
	EventTypeContentUpdated   EventType = "CONTENT_UPDATED"
)

// NotificationEvent 聚合根，表示一条待分发的通知事件。
// 状态只能沿 PENDING -> PROCESSING -> {SENT, FAILED} 迁移，
// SENT/FAILED 为终态；attempts 在每次成功 claim 时加一。
type NotificationEvent struct {
	ID             uint64
	Type           EventType
	ContentID      uint64
	ContentVersion int
	CategoryID     uint64
	Tags           []string
	Symbols        []string
	EffectiveAt    time.Time
	Status         EventStatus
	Attempts       int
	Payload        string
	LastError      *string
	ClaimedAt      *time.Time
	SentAt         *time.Time
	FailedAt       *time.Time
	CreatedAt      time.Time
}

// NewNotificationEvent 创建一条新的 PENDING 事件。
func NewNotificationEvent(typ EventType, contentID uint64, contentVersion int, categoryID uint64, tags, symbols []string, effectiveAt time.Time, payload string) *NotificationEvent {
	return &NotificationEvent{
		Type:           typ,
		ContentID:      contentID,
		ContentVersion: contentVersion,
		CategoryID:     categoryID,
		Tags:           tags,
		Symbols:        symbols,
		EffectiveAt:    effectiveAt,
		Status:         EventStatusPending,
		Payload:        payload,
	}
}

// Terminal reports whether the event reached a terminal state.
func (e *NotificationEvent) Terminal() bool {
	return e.Status == EventStatusSent || e.Status == EventStatusFailed
}
