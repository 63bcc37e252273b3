package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notification-dispatch/ddd/domain/entity"
	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/pkg/logger"
	"notification-dispatch/pkg/payload"
)

// DispatchWorker 处理单个事件的精确一次终态迁移：claim、扇出、落终态、
// 实时推送。claim 失败（被其他调用方抢先）时静默返回，不产生任何副作用。
type DispatchWorker interface {
	DispatchOne(ctx context.Context, eventID uint64) error
}

type dispatchWorkerImpl struct {
	events drepo.EventRepository
	fanout drepo.FanoutRepository
	push   LivePusher
}

func NewDispatchWorker(events drepo.EventRepository, fanout drepo.FanoutRepository, push LivePusher) DispatchWorker {
	return &dispatchWorkerImpl{
		events: events,
		fanout: fanout,
		push:   push,
	}
}

func (w *dispatchWorkerImpl) DispatchOne(ctx context.Context, eventID uint64) error {
	now := time.Now()

	affected, err := w.events.Claim(ctx, eventID, now)
	if err != nil {
		return fmt.Errorf("claim event %d: %w", eventID, err)
	}
	if affected == 0 {
		// 已被其他实例/线程 claim，或事件不满足分发条件。
		logger.Debugf("dispatch: claim missed event_id=%d", eventID)
		return nil
	}

	ev, err := w.events.FindForDispatch(ctx, eventID)
	if err != nil {
		return w.fail(ctx, eventID, fmt.Errorf("load event: %w", err))
	}
	if ev == nil {
		return w.fail(ctx, eventID, errors.New("event disappeared after claim"))
	}

	inserted, err := w.fanout.InsertForEvent(ctx, ev, now)
	if err != nil {
		return w.fail(ctx, eventID, fmt.Errorf("fan-out: %w", err))
	}

	marked, err := w.events.MarkSent(ctx, eventID, time.Now())
	if err != nil {
		return w.fail(ctx, eventID, fmt.Errorf("mark sent: %w", err))
	}
	if marked == 0 {
		// 状态被其他写入者移出 PROCESSING，属于不一致，向上暴露即可，
		// 扇出不重跑（唯一索引已保证无重复行）。
		return fmt.Errorf("event %d no longer PROCESSING when marking sent", eventID)
	}

	logger.Infof("dispatch: event sent event_id=%d type=%s fanout_inserted=%d attempts=%d",
		ev.ID, ev.Type, inserted, ev.Attempts)

	w.pushLive(ctx, ev)
	return nil
}

// pushLive 为事件的全部扇出行推送 created 和未读数信号。推送失败只记日志，
// 不回滚 SENT 状态。
func (w *dispatchWorkerImpl) pushLive(ctx context.Context, ev *entity.NotificationEvent) {
	rows, err := w.fanout.FindByEvent(ctx, ev.ID)
	if err != nil {
		logger.Errorf("dispatch: load fan-out rows for push failed event_id=%d error=%v", ev.ID, err)
		return
	}
	if len(rows) == 0 {
		return
	}

	userUUIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		userUUIDs = append(userUUIDs, r.UserUUID)
	}
	counts, err := w.fanout.CountUnreadByUsers(ctx, userUUIDs)
	if err != nil {
		logger.Errorf("dispatch: unread counts for push failed event_id=%d error=%v", ev.ID, err)
		return
	}

	snap, err := payload.Decode(ev.Payload)
	if err != nil {
		logger.Warnf("dispatch: payload decode failed, pushing without snapshot event_id=%d error=%v", ev.ID, err)
		snap = &payload.Snapshot{}
	}

	for _, r := range rows {
		w.push.SendCreated(r.UserUUID, map[string]interface{}{
			"notification_id": r.ID,
			"event_id":        ev.ID,
			"event_type":      ev.Type,
			"title":           snap.Title,
			"summary":         snap.Summary,
		})
		w.push.SendUnreadCount(r.UserUUID, counts[r.UserUUID])
	}
}

// fail 尽力把事件落到 FAILED；二次写失败只记日志，事件停留在 PROCESSING，
// 交由调度器的 stale 重入队兜底。
func (w *dispatchWorkerImpl) fail(ctx context.Context, eventID uint64, cause error) error {
	affected, err := w.events.MarkFailed(ctx, eventID, cause.Error(), time.Now())
	if err != nil {
		logger.Errorf("dispatch: mark failed errored, event left PROCESSING event_id=%d cause=%v error=%v",
			eventID, cause, err)
	} else if affected == 0 {
		logger.Warnf("dispatch: event not PROCESSING while marking failed event_id=%d cause=%v", eventID, cause)
	}
	return cause
}
