package app

import (
	"context"
	"time"

	"notification-dispatch/ddd/application/cqe"
	"notification-dispatch/ddd/application/dto"
	"notification-dispatch/ddd/domain/entity"
	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/pkg/errno"
	"notification-dispatch/pkg/payload"
	"notification-dispatch/pkg/sse"
)

// NotificationApp 应用服务接口，编排事件生产、手动分发和通知查询用例。
type NotificationApp interface {
	CreateEvent(ctx context.Context, req *cqe.CreateEventReq) (*dto.CreateEventResponse, error)
	Dispatch(ctx context.Context, req *cqe.DispatchReq) (*dto.DispatchResponse, error)
	StatusCounts(ctx context.Context) (*dto.EventStatusCounts, error)
	ListNotifications(ctx context.Context, userUUID string, req *cqe.ListNotificationsReq) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, userUUID string, req *cqe.MarkReadReq) error
}

type notificationAppImpl struct {
	events           drepo.EventRepository
	fanout           drepo.FanoutRepository
	dispatch         DispatchService
	defaultBatchSize int
}

func NewNotificationApp(events drepo.EventRepository, fanout drepo.FanoutRepository, dispatch DispatchService, defaultBatchSize int) NotificationApp {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 50
	}
	return &notificationAppImpl{
		events:           events,
		fanout:           fanout,
		dispatch:         dispatch,
		defaultBatchSize: defaultBatchSize,
	}
}

// CreateEvent 以 PENDING 状态落一条新事件，渲染快照在此刻定格。
func (a *notificationAppImpl) CreateEvent(ctx context.Context, req *cqe.CreateEventReq) (*dto.CreateEventResponse, error) {
	if !req.Validate() {
		return nil, errno.ErrParameterInvalid
	}

	raw, err := payload.Encode(&payload.Snapshot{
		Title:          req.Title,
		Summary:        req.Summary,
		ContentID:      req.ContentID,
		ContentVersion: req.ContentVersion,
	})
	if err != nil {
		return nil, err
	}

	effectiveAt := req.EffectiveAt
	if effectiveAt.IsZero() {
		effectiveAt = time.Now()
	}

	ev := entity.NewNotificationEvent(
		entity.EventType(req.Type),
		req.ContentID,
		req.ContentVersion,
		req.CategoryID,
		req.Tags,
		req.Symbols,
		effectiveAt,
		raw,
	)
	if err := a.events.Insert(ctx, ev); err != nil {
		return nil, err
	}
	return &dto.CreateEventResponse{EventID: ev.ID}, nil
}

// Dispatch 手动触发一次批量分发。与调度器 tick 在同一数据上竞争是安全的：
// 每个事件的归属由存储层的条件 claim 决定。
func (a *notificationAppImpl) Dispatch(ctx context.Context, req *cqe.DispatchReq) (*dto.DispatchResponse, error) {
	if req == nil {
		req = &cqe.DispatchReq{}
	}
	req.Normalize(a.defaultBatchSize)

	dispatched, err := a.dispatch.DispatchPendingEvents(ctx, req.BatchSize)
	if err != nil {
		return nil, err
	}
	return &dto.DispatchResponse{Dispatched: dispatched}, nil
}

func (a *notificationAppImpl) StatusCounts(ctx context.Context) (*dto.EventStatusCounts, error) {
	counts := &dto.EventStatusCounts{}
	for _, pair := range []struct {
		status entity.EventStatus
		dst    *int64
	}{
		{entity.EventStatusPending, &counts.Pending},
		{entity.EventStatusProcessing, &counts.Processing},
		{entity.EventStatusSent, &counts.Sent},
		{entity.EventStatusFailed, &counts.Failed},
	} {
		n, err := a.events.CountByStatus(ctx, pair.status)
		if err != nil {
			return nil, err
		}
		*pair.dst = n
	}
	return counts, nil
}

func (a *notificationAppImpl) ListNotifications(ctx context.Context, userUUID string, req *cqe.ListNotificationsReq) (*dto.ListNotificationsResponse, error) {
	if userUUID == "" {
		return nil, errno.ErrUnauthorized
	}
	req.Normalize()
	offset := (req.Page - 1) * req.PageSize

	list, err := a.fanout.ListByUser(ctx, userUUID, offset, req.PageSize)
	if err != nil {
		return nil, err
	}
	unread, err := a.fanout.CountUnread(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationDto, 0, len(list))
	for _, n := range list {
		item := dto.NotificationDto{
			ID:        n.ID,
			EventID:   n.EventID,
			EventType: string(n.EventType),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		}
		if snap, err := payload.Decode(n.Payload); err == nil {
			item.Title = snap.Title
			item.Summary = snap.Summary
		}
		items = append(items, item)
	}

	return &dto.ListNotificationsResponse{
		Notifications: items,
		UnreadCount:   unread,
	}, nil
}

func (a *notificationAppImpl) MarkRead(ctx context.Context, userUUID string, req *cqe.MarkReadReq) error {
	if userUUID == "" {
		return errno.ErrUnauthorized
	}
	if !req.Validate() {
		return errno.ErrParameterInvalid
	}
	if err := a.fanout.MarkRead(ctx, userUUID, req.IDs); err != nil {
		return err
	}
	// After marking as read, push the updated unread count to SSE subscribers.
	if unread, err := a.fanout.CountUnread(ctx, userUUID); err == nil {
		sse.PublishNotification(userUUID, sse.Event{
			Type: "notification.unread_count",
			Data: map[string]interface{}{
				"unread_count": unread,
			},
		})
	}
	return nil
}
