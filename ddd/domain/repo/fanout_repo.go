package repo

import (
	"context"
	"time"

	"notification-dispatch/ddd/domain/entity"
)

// FanoutRepository 扇出仓储接口，负责 user_notifications 表以及
// 基于 notification_preferences 的订阅匹配。
type FanoutRepository interface {
	// InsertForEvent 为事件生成扇出行：挑选匹配的订阅用户并批量插入，
	// 借助 (event_id, user_uuid) 唯一索引实现 insert-if-absent，重复
	// 调用不会产生重复行。返回本次新插入的行数。
	InsertForEvent(ctx context.Context, ev *entity.NotificationEvent, now time.Time) (int64, error)
	FindByEvent(ctx context.Context, eventID uint64) ([]*entity.UserNotification, error)
	// CountUnreadByUsers 一次查询聚合多个用户的未读数。
	CountUnreadByUsers(ctx context.Context, userUUIDs []string) (map[string]int64, error)
	ListByUser(ctx context.Context, userUUID string, offset, limit int) ([]*entity.UserNotificationDetail, error)
	CountUnread(ctx context.Context, userUUID string) (int64, error)
	MarkRead(ctx context.Context, userUUID string, ids []uint64) error
}
