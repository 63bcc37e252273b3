package app

import (
	"context"
	"time"

	drepo "notification-dispatch/ddd/domain/repo"
	"notification-dispatch/pkg/config"
	"notification-dispatch/pkg/lock"
	"notification-dispatch/pkg/logger"
)

// DispatchScheduler 周期性触发批量分发。每次 tick 先抢跨实例互斥锁：
// 抢不到说明别的实例（或本实例上一个 tick）正在分发，直接跳过；抢到则
// 在锁内完成一次批量分发，锁在所有退出路径上都会释放。
type DispatchScheduler struct {
	service DispatchService
	events  drepo.EventRepository
	locks   lock.Provider
	cfg     config.DispatchConfig

	stop chan struct{}
	done chan struct{}
}

func NewDispatchScheduler(service DispatchService, events drepo.EventRepository, locks lock.Provider, cfg config.DispatchConfig) *DispatchScheduler {
	return &DispatchScheduler{
		service: service,
		events:  events,
		locks:   locks,
		cfg:     cfg,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start 启动心跳循环。
func (s *DispatchScheduler) Start() {
	go s.loop()
	logger.Infof("scheduler: started interval=%s lock=%s batch_size=%d",
		s.cfg.TickInterval, s.cfg.LockName, s.cfg.BatchSize)
}

// Stop 停止心跳并等待进行中的 tick 结束。
func (s *DispatchScheduler) Stop() {
	close(s.stop)
	<-s.done
	logger.Infof("scheduler: stopped")
}

func (s *DispatchScheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Tick(context.Background()); err != nil {
				logger.Errorf("scheduler: tick failed error=%v", err)
			}
		}
	}
}

// Tick 执行一次调度。锁提供方 I/O 失败会原样返回并中止本次 tick，
// PENDING 事件留待下一次 tick。
func (s *DispatchScheduler) Tick(ctx context.Context) error {
	acquired, err := s.locks.WithLock(ctx, s.cfg.LockName, func() error {
		if s.cfg.StaleRequeueAfter > 0 {
			s.requeueStale(ctx)
		}
		_, err := s.service.DispatchPendingEvents(ctx, s.cfg.BatchSize)
		return err
	})
	if err != nil {
		return err
	}
	if !acquired {
		logger.Debugf("scheduler: tick skipped, dispatch lock held elsewhere")
	}
	return nil
}

// requeueStale 把停留在 PROCESSING 超时的事件重置回 PENDING。
// 失败不致命，留给后续 tick 重试。
func (s *DispatchScheduler) requeueStale(ctx context.Context) {
	before := time.Now().Add(-s.cfg.StaleRequeueAfter)
	requeued, err := s.events.RequeueStale(ctx, before)
	if err != nil {
		logger.Warnf("scheduler: stale requeue failed error=%v", err)
		return
	}
	if requeued > 0 {
		logger.Infof("scheduler: requeued stale processing events count=%d stale_after=%s",
			requeued, s.cfg.StaleRequeueAfter)
	}
}
