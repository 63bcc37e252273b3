package po

import "time"

// UserNotification 持久化对象，对应 user_notifications 表。
// uk_event_user 唯一索引是扇出幂等的最终保障。
type UserNotification struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	EventID   uint64     `gorm:"column:event_id;uniqueIndex:uk_event_user"`
	UserUUID  string     `gorm:"column:user_uuid;uniqueIndex:uk_event_user;index"`
	IsRead    bool       `gorm:"column:is_read"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	ReadAt    *time.Time `gorm:"column:read_at"`
}

func (UserNotification) TableName() string {
	return "user_notifications"
}
