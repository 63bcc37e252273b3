package persistence

import (
	"context"
	"strings"
	"time"

	"notification-dispatch/ddd/domain/entity"
	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/ddd/infrastructure/database/dao"
	"notification-dispatch/ddd/infrastructure/database/po"

	"gorm.io/gorm"
)

type eventRepositoryImpl struct {
	dao *dao.NotificationEventDao
}

func NewEventRepository() drepo.EventRepository {
	return &eventRepositoryImpl{dao: dao.NewNotificationEventDao()}
}

// NewEventRepositoryWithDB 使用指定连接构造仓储，主要供测试使用。
func NewEventRepositoryWithDB(db *gorm.DB) drepo.EventRepository {
	return &eventRepositoryImpl{dao: dao.NewNotificationEventDaoWithDB(db)}
}

func (r *eventRepositoryImpl) Insert(ctx context.Context, ev *entity.NotificationEvent) error {
	p := eventToPo(ev)
	if err := r.dao.Create(ctx, p); err != nil {
		return err
	}
	ev.ID = p.ID
	ev.CreatedAt = p.CreatedAt
	return nil
}

func (r *eventRepositoryImpl) Claim(ctx context.Context, eventID uint64, now time.Time) (int64, error) {
	return r.dao.Claim(ctx, eventID, now)
}

func (r *eventRepositoryImpl) MarkSent(ctx context.Context, eventID uint64, now time.Time) (int64, error) {
	return r.dao.MarkSent(ctx, eventID, now)
}

func (r *eventRepositoryImpl) MarkFailed(ctx context.Context, eventID uint64, reason string, now time.Time) (int64, error) {
	return r.dao.MarkFailed(ctx, eventID, reason, now)
}

func (r *eventRepositoryImpl) FindForDispatch(ctx context.Context, eventID uint64) (*entity.NotificationEvent, error) {
	p, err := r.dao.FindByID(ctx, eventID)
	if err != nil || p == nil {
		return nil, err
	}
	return eventToEntity(p), nil
}

func (r *eventRepositoryImpl) SelectPending(ctx context.Context, limit int, now time.Time) ([]*entity.NotificationEvent, error) {
	pos, err := r.dao.SelectPending(ctx, limit, now)
	if err != nil {
		return nil, err
	}
	res := make([]*entity.NotificationEvent, 0, len(pos))
	for i := range pos {
		res = append(res, eventToEntity(&pos[i]))
	}
	return res, nil
}

func (r *eventRepositoryImpl) CountByStatus(ctx context.Context, status entity.EventStatus) (int64, error) {
	return r.dao.CountByStatus(ctx, string(status))
}

func (r *eventRepositoryImpl) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	return r.dao.RequeueStale(ctx, before)
}

func eventToPo(ev *entity.NotificationEvent) *po.NotificationEvent {
	return &po.NotificationEvent{
		ID:             ev.ID,
		Type:           string(ev.Type),
		ContentID:      ev.ContentID,
		ContentVersion: ev.ContentVersion,
		CategoryID:     ev.CategoryID,
		Tags:           joinList(ev.Tags),
		Symbols:        joinList(ev.Symbols),
		EffectiveAt:    ev.EffectiveAt,
		Status:         string(ev.Status),
		Attempts:       ev.Attempts,
		Payload:        ev.Payload,
		LastError:      ev.LastError,
		ClaimedAt:      ev.ClaimedAt,
		SentAt:         ev.SentAt,
		FailedAt:       ev.FailedAt,
		CreatedAt:      ev.CreatedAt,
	}
}

func eventToEntity(p *po.NotificationEvent) *entity.NotificationEvent {
	return &entity.NotificationEvent{
		ID:             p.ID,
		Type:           entity.EventType(p.Type),
		ContentID:      p.ContentID,
		ContentVersion: p.ContentVersion,
		CategoryID:     p.CategoryID,
		Tags:           splitList(p.Tags),
		Symbols:        splitList(p.Symbols),
		EffectiveAt:    p.EffectiveAt,
		Status:         entity.EventStatus(p.Status),
		Attempts:       p.Attempts,
		Payload:        p.Payload,
		LastError:      p.LastError,
		ClaimedAt:      p.ClaimedAt,
		SentAt:         p.SentAt,
		FailedAt:       p.FailedAt,
		CreatedAt:      p.CreatedAt,
	}
}

// joinList 序列化标签/代码列表为逗号分隔字符串。
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
