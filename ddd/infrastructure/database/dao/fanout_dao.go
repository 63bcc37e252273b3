package dao

import (
	"context"
	"strconv"
	"time"

	"notification-dispatch/ddd/infrastructure/database/po"
	"notification-dispatch/internal/resource"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserNotificationDao struct {
	db *gorm.DB
}

func NewUserNotificationDao() *UserNotificationDao {
	return &UserNotificationDao{db: resource.MainDB()}
}

// NewUserNotificationDaoWithDB 使用指定连接构造 DAO，主要供测试使用。
func NewUserNotificationDaoWithDB(db *gorm.DB) *UserNotificationDao {
	return &UserNotificationDao{db: db}
}

// InsertForEvent 选出匹配订阅的用户并批量插入扇出行。
// ON CONFLICT DO NOTHING 配合 uk_event_user 唯一索引保证重复调用
// 不会为同一 (event, user) 生成第二行；返回值为本次新插入的行数。
func (d *UserNotificationDao) InsertForEvent(ctx context.Context, ev *po.NotificationEvent, now time.Time) (int64, error) {
	catToken := "%," + strconv.FormatUint(ev.CategoryID, 10) + ",%"

	var prefs []po.NotificationPreference
	err := d.db.WithContext(ctx).
		Where("enabled = ?", true).
		Where(
			d.db.Where("mode = ?", po.MatchModeAll).
				Or("mode = ? AND category_ids LIKE ?", po.MatchModeCategory, catToken),
		).
		Find(&prefs).Error
	if err != nil {
		return 0, err
	}
	if len(prefs) == 0 {
		return 0, nil
	}

	rows := make([]po.UserNotification, 0, len(prefs))
	for _, p := range prefs {
		rows = append(rows, po.UserNotification{
			EventID:   ev.ID,
			UserUUID:  p.UserUUID,
			CreatedAt: now,
		})
	}

	tx := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return tx.RowsAffected, tx.Error
}

func (d *UserNotificationDao) FindByEvent(ctx context.Context, eventID uint64) ([]po.UserNotification, error) {
	var pos []po.UserNotification
	err := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// UnreadCountRow 分组未读数查询的扫描目标。
type UnreadCountRow struct {
	UserUUID string
	Count    int64
}

// CountUnreadByUsers 单条分组查询聚合多个用户的未读数。
func (d *UserNotificationDao) CountUnreadByUsers(ctx context.Context, userUUIDs []string) ([]UnreadCountRow, error) {
	if len(userUUIDs) == 0 {
		return nil, nil
	}
	var rows []UnreadCountRow
	err := d.db.WithContext(ctx).
		Model(&po.UserNotification{}).
		Select("user_uuid, COUNT(*) AS count").
		Where("user_uuid IN ? AND is_read = ?", userUUIDs, false).
		Group("user_uuid").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UserNotificationWithEvent 列表查询的扫描目标，附带事件侧渲染字段。
type UserNotificationWithEvent struct {
	po.UserNotification
	EventType string
	Payload   string
}

func (d *UserNotificationDao) ListByUser(ctx context.Context, userUUID string, offset, limit int) ([]UserNotificationWithEvent, error) {
	var rows []UserNotificationWithEvent
	err := d.db.WithContext(ctx).
		Table("user_notifications AS n").
		Select("n.*, e.type AS event_type, e.payload AS payload").
		Joins("JOIN notification_events e ON e.id = n.event_id").
		Where("n.user_uuid = ?", userUUID).
		Order("n.created_at DESC, n.id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *UserNotificationDao) CountUnread(ctx context.Context, userUUID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&po.UserNotification{}).
		Where("user_uuid = ? AND is_read = ?", userUUID, false).
		Count(&count).Error
	return count, err
}

func (d *UserNotificationDao) MarkRead(ctx context.Context, userUUID string, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return d.db.WithContext(ctx).
		Model(&po.UserNotification{}).
		Where("user_uuid = ? AND id IN ?", userUUID, ids).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}
