package app

import (
	"context"
	"time"

	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/pkg/logger"
	"notification-dispatch/pkg/workerpool"
)

// DispatchService 批量编排：选出一批可分发事件并逐个提交到工作池。
type DispatchService interface {
	// DispatchPendingEvents 返回本批选中的事件数；事件的实际处理在
	// 工作池上异步进行（队列饱和时按池的饱和策略执行）。
	DispatchPendingEvents(ctx context.Context, batchSize int) (int, error)
}

type dispatchServiceImpl struct {
	events drepo.EventRepository
	worker DispatchWorker
	pool   *workerpool.Pool
}

func NewDispatchService(events drepo.EventRepository, worker DispatchWorker, pool *workerpool.Pool) DispatchService {
	return &dispatchServiceImpl{
		events: events,
		worker: worker,
		pool:   pool,
	}
}

func (s *dispatchServiceImpl) DispatchPendingEvents(ctx context.Context, batchSize int) (int, error) {
	events, err := s.events.SelectPending(ctx, batchSize, time.Now())
	if err != nil {
		return 0, err
	}

	for _, ev := range events {
		eventID := ev.ID
		err := s.pool.Submit(func() {
			// 池中任务的生命周期超出本次调用，不继承调用方 ctx。
			if err := s.worker.DispatchOne(context.Background(), eventID); err != nil {
				// 单个事件的失败互相隔离，不影响同批其他事件。
				logger.Errorf("dispatch: event failed event_id=%d error=%v", eventID, err)
			}
		})
		if err != nil {
			logger.Errorf("dispatch: submit to pool failed event_id=%d error=%v", eventID, err)
		}
	}

	if len(events) > 0 {
		logger.Infof("dispatch: batch selected count=%d queue_depth=%d", len(events), s.pool.QueueDepth())
	}
	return len(events), nil
}
