package dao

import (
	"context"
	"errors"
	"time"

	"notification-dispatch/ddd/infrastructure/database/po"
	"notification-dispatch/internal/resource"

	"gorm.io/gorm"
)

type NotificationEventDao struct {
	db *gorm.DB
}

func NewNotificationEventDao() *NotificationEventDao {
	return &NotificationEventDao{db: resource.MainDB()}
}

// NewNotificationEventDaoWithDB 使用指定连接构造 DAO，主要供测试使用。
func NewNotificationEventDaoWithDB(db *gorm.DB) *NotificationEventDao {
	return &NotificationEventDao{db: db}
}

func (d *NotificationEventDao) Create(ctx context.Context, p *po.NotificationEvent) error {
	return d.db.WithContext(ctx).Create(p).Error
}

// Claim 单条原子语句完成 PENDING -> PROCESSING 迁移并累加 attempts。
// 谓词检查与写入依赖存储行级原子性，并发的多个调用方恰有一个得到 1。
func (d *NotificationEventDao) Claim(ctx context.Context, id uint64, now time.Time) (int64, error) {
	tx := d.db.WithContext(ctx).
		Model(&po.NotificationEvent{}).
		Where("id = ? AND status = ? AND effective_at <= ?", id, po.EventStatusPending, now).
		Updates(map[string]interface{}{
			"status":     po.EventStatusProcessing,
			"attempts":   gorm.Expr("attempts + 1"),
			"claimed_at": now,
		})
	return tx.RowsAffected, tx.Error
}

// MarkSent 仅当事件仍处于 PROCESSING 时写入终态 SENT。
func (d *NotificationEventDao) MarkSent(ctx context.Context, id uint64, now time.Time) (int64, error) {
	tx := d.db.WithContext(ctx).
		Model(&po.NotificationEvent{}).
		Where("id = ? AND status = ?", id, po.EventStatusProcessing).
		Updates(map[string]interface{}{
			"status":  po.EventStatusSent,
			"sent_at": now,
		})
	return tx.RowsAffected, tx.Error
}

// MarkFailed 仅当事件仍处于 PROCESSING 时写入终态 FAILED 和失败原因。
func (d *NotificationEventDao) MarkFailed(ctx context.Context, id uint64, reason string, now time.Time) (int64, error) {
	tx := d.db.WithContext(ctx).
		Model(&po.NotificationEvent{}).
		Where("id = ? AND status = ?", id, po.EventStatusProcessing).
		Updates(map[string]interface{}{
			"status":     po.EventStatusFailed,
			"last_error": reason,
			"failed_at":  now,
		})
	return tx.RowsAffected, tx.Error
}

func (d *NotificationEventDao) FindByID(ctx context.Context, id uint64) (*po.NotificationEvent, error) {
	var p po.NotificationEvent
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SelectPending 按 effective_at 升序选出可分发事件，只看 PENDING，
// 上一批仍在 PROCESSING 的事件不会被重复选中。
func (d *NotificationEventDao) SelectPending(ctx context.Context, limit int, now time.Time) ([]po.NotificationEvent, error) {
	var pos []po.NotificationEvent
	err := d.db.WithContext(ctx).
		Where("status = ? AND effective_at <= ?", po.EventStatusPending, now).
		Order("effective_at ASC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (d *NotificationEventDao) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&po.NotificationEvent{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// RequeueStale 把 claim 时间早于 before 且仍停留在 PROCESSING 的事件
// 重置回 PENDING。与终态写入同为条件更新，先到者胜。
func (d *NotificationEventDao) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	tx := d.db.WithContext(ctx).
		Model(&po.NotificationEvent{}).
		Where("status = ? AND claimed_at IS NOT NULL AND claimed_at < ?", po.EventStatusProcessing, before).
		Updates(map[string]interface{}{
			"status": po.EventStatusPending,
		})
	return tx.RowsAffected, tx.Error
}
