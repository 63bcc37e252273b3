package persistence

import (
	"context"
	"time"

	"notification-dispatch/ddd/domain/entity"
	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/ddd/infrastructure/database/dao"
	"notification-dispatch/ddd/infrastructure/database/po"

	"gorm.io/gorm"
)

type fanoutRepositoryImpl struct {
	dao *dao.UserNotificationDao
}

func NewFanoutRepository() drepo.FanoutRepository {
	return &fanoutRepositoryImpl{dao: dao.NewUserNotificationDao()}
}

// NewFanoutRepositoryWithDB 使用指定连接构造仓储，主要供测试使用。
func NewFanoutRepositoryWithDB(db *gorm.DB) drepo.FanoutRepository {
	return &fanoutRepositoryImpl{dao: dao.NewUserNotificationDaoWithDB(db)}
}

func (r *fanoutRepositoryImpl) InsertForEvent(ctx context.Context, ev *entity.NotificationEvent, now time.Time) (int64, error) {
	return r.dao.InsertForEvent(ctx, eventToPo(ev), now)
}

func (r *fanoutRepositoryImpl) FindByEvent(ctx context.Context, eventID uint64) ([]*entity.UserNotification, error) {
	pos, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	res := make([]*entity.UserNotification, 0, len(pos))
	for i := range pos {
		res = append(res, notificationToEntity(&pos[i]))
	}
	return res, nil
}

func (r *fanoutRepositoryImpl) CountUnreadByUsers(ctx context.Context, userUUIDs []string) (map[string]int64, error) {
	rows, err := r.dao.CountUnreadByUsers(ctx, userUUIDs)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.UserUUID] = row.Count
	}
	return counts, nil
}

func (r *fanoutRepositoryImpl) ListByUser(ctx context.Context, userUUID string, offset, limit int) ([]*entity.UserNotificationDetail, error) {
	rows, err := r.dao.ListByUser(ctx, userUUID, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*entity.UserNotificationDetail, 0, len(rows))
	for i := range rows {
		res = append(res, &entity.UserNotificationDetail{
			UserNotification: *notificationToEntity(&rows[i].UserNotification),
			EventType:        entity.EventType(rows[i].EventType),
			Payload:          rows[i].Payload,
		})
	}
	return res, nil
}

func (r *fanoutRepositoryImpl) CountUnread(ctx context.Context, userUUID string) (int64, error) {
	return r.dao.CountUnread(ctx, userUUID)
}

func (r *fanoutRepositoryImpl) MarkRead(ctx context.Context, userUUID string, ids []uint64) error {
	return r.dao.MarkRead(ctx, userUUID, ids)
}

func notificationToEntity(p *po.UserNotification) *entity.UserNotification {
	return &entity.UserNotification{
		ID:        p.ID,
		EventID:   p.EventID,
		UserUUID:  p.UserUUID,
		IsRead:    p.IsRead,
		CreatedAt: p.CreatedAt,
		ReadAt:    p.ReadAt,
	}
}
