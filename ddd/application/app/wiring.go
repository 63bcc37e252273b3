package app

import (
	"errors"
	"sync"

	"notification-dispatch/ddd/infrastructure/database/persistence"
	"notification-dispatch/pkg/assert"
	"notification-dispatch/pkg/config"
	"notification-dispatch/pkg/lock"
	"notification-dispatch/pkg/workerpool"

	"gorm.io/gorm"
)

var (
	initOnce   sync.Once
	defaultApp NotificationApp
)

// InitDispatch wires the dispatch engine once at startup: worker pool,
// repositories, worker, batch service and scheduler. The returned scheduler
// and pool are owned by the caller, which drives their lifecycle; the
// NotificationApp built here becomes the process default used by the HTTP
// adapter.
func InitDispatch(cfg *config.Config, db *gorm.DB, locks lock.Provider) (*DispatchScheduler, *workerpool.Pool) {
	assert.NotNil(cfg)
	assert.NotNil(db)
	assert.NotNil(locks)

	var (
		scheduler *DispatchScheduler
		pool      *workerpool.Pool
	)
	initOnce.Do(func() {
		d := cfg.Dispatch
		pool = workerpool.New(d.PoolSize, d.QueueCapacity, workerpool.ParsePolicy(d.SaturationPolicy))

		events := persistence.NewEventRepositoryWithDB(db)
		fanout := persistence.NewFanoutRepositoryWithDB(db)

		worker := NewDispatchWorker(events, fanout, NewSSEPusher())
		service := NewDispatchService(events, worker, pool)
		scheduler = NewDispatchScheduler(service, events, locks, d)

		defaultApp = NewNotificationApp(events, fanout, service, d.BatchSize)
	})
	if scheduler == nil {
		panic(errors.New("app: InitDispatch called twice"))
	}
	return scheduler, pool
}

// DefaultNotificationApp 返回默认的应用服务实现，需先调用 InitDispatch。
func DefaultNotificationApp() NotificationApp {
	assert.NotCircular()
	if defaultApp == nil {
		panic(errors.New("app: DefaultNotificationApp before InitDispatch"))
	}
	return defaultApp
}
