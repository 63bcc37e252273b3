package po

import "time"

// 事件状态列取值，与 entity.EventStatus 保持一致。
const (
	EventStatusPending    = "PENDING"
	EventStatusProcessing = "PROCESSING"
	EventStatusSent       = "SENT"
	EventStatusFailed     = "FAILED"
)

// NotificationEvent 持久化对象，对应 notification_events 表。
type NotificationEvent struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	Type           string     `gorm:"column:type"`
	ContentID      uint64     `gorm:"column:content_id"`
	ContentVersion int        `gorm:"column:content_version"`
	CategoryID     uint64     `gorm:"column:category_id"`
	Tags           string     `gorm:"column:tags"`
	Symbols        string     `gorm:"column:symbols"`
	EffectiveAt    time.Time  `gorm:"column:effective_at;index"`
	Status         string     `gorm:"column:status;index"`
	Attempts       int        `gorm:"column:attempts"`
	Payload        string     `gorm:"column:payload"`
	LastError      *string    `gorm:"column:last_error"`
	ClaimedAt      *time.Time `gorm:"column:claimed_at"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	FailedAt       *time.Time `gorm:"column:failed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}
