package entity

import "time"

// UserNotification 扇出行，一条事件对一个用户的站内通知记录。
// (event, user) 组合唯一，由存储层唯一索引保证。
type UserNotification struct {
	ID        uint64
	EventID   uint64
	UserUUID  string
	IsRead    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

// UserNotificationDetail 列表视图，附带事件侧的渲染信息。
type UserNotificationDetail struct {
	UserNotification
	EventType EventType
	Payload   string
}

// UnreadCount 单个用户的未读数聚合。
type UnreadCount struct {
	UserUUID string
	Count    int64
}
