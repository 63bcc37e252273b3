package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"notification-dispatch/pkg/config"
	"notification-dispatch/pkg/lock"

	"github.com/stretchr/testify/require"
)

// mutexLockProvider is an in-process stand-in for the MySQL/Redis
// providers: non-blocking acquire, release on all paths.
type mutexLockProvider struct {
	mu sync.Mutex
}

var _ lock.Provider = (*mutexLockProvider)(nil)

func (p *mutexLockProvider) WithLock(ctx context.Context, name string, fn func() error) (bool, error) {
	if !p.mu.TryLock() {
		return false, nil
	}
	defer p.mu.Unlock()
	return true, fn()
}

type deniedLockProvider struct{}

func (deniedLockProvider) WithLock(ctx context.Context, name string, fn func() error) (bool, error) {
	return false, nil
}

type brokenLockProvider struct{}

func (brokenLockProvider) WithLock(ctx context.Context, name string, fn func() error) (bool, error) {
	return false, errors.New("lock backend unreachable")
}

type fakeDispatchService struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	err      error
}

func (s *fakeDispatchService) DispatchPendingEvents(ctx context.Context, batchSize int) (int, error) {
	s.calls.Add(1)
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxSeen.Load()
		if cur <= max || s.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return 0, s.err
}

func schedulerConfig() config.DispatchConfig {
	return config.DispatchConfig{
		BatchSize:    10,
		TickInterval: time.Hour,
		LockName:     "dispatch-test",
	}
}

func TestTickDispatchesUnderLock(t *testing.T) {
	service := &fakeDispatchService{}
	s := NewDispatchScheduler(service, &fakeEventRepo{}, &mutexLockProvider{}, schedulerConfig())

	require.NoError(t, s.Tick(context.Background()))
	require.Equal(t, int32(1), service.calls.Load())
}

func TestConcurrentTicksNeverOverlap(t *testing.T) {
	service := &fakeDispatchService{delay: 20 * time.Millisecond}
	s := NewDispatchScheduler(service, &fakeEventRepo{}, &mutexLockProvider{}, schedulerConfig())

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Tick(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, int32(1), service.maxSeen.Load())
	// At least one tick ran; the rest may have been skipped.
	require.GreaterOrEqual(t, service.calls.Load(), int32(1))
}

func TestTickSkippedWhenLockHeldElsewhere(t *testing.T) {
	service := &fakeDispatchService{}
	s := NewDispatchScheduler(service, &fakeEventRepo{}, deniedLockProvider{}, schedulerConfig())

	require.NoError(t, s.Tick(context.Background()))
	require.Equal(t, int32(0), service.calls.Load())
}

func TestTickAbortsOnLockProviderError(t *testing.T) {
	service := &fakeDispatchService{}
	s := NewDispatchScheduler(service, &fakeEventRepo{}, brokenLockProvider{}, schedulerConfig())

	err := s.Tick(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(0), service.calls.Load())
}

func TestTickPropagatesDispatchError(t *testing.T) {
	service := &fakeDispatchService{err: errors.New("select failed")}
	s := NewDispatchScheduler(service, &fakeEventRepo{}, &mutexLockProvider{}, schedulerConfig())

	require.Error(t, s.Tick(context.Background()))
}

func TestTickRequeuesStaleWhenConfigured(t *testing.T) {
	var requeueCalls atomic.Int32
	events := &fakeEventRepo{
		requeueFn: func(ctx context.Context, before time.Time) (int64, error) {
			requeueCalls.Add(1)
			require.WithinDuration(t, time.Now().Add(-10*time.Minute), before, time.Minute)
			return 2, nil
		},
	}
	service := &fakeDispatchService{}

	cfg := schedulerConfig()
	cfg.StaleRequeueAfter = 10 * time.Minute
	s := NewDispatchScheduler(service, events, &mutexLockProvider{}, cfg)

	require.NoError(t, s.Tick(context.Background()))
	require.Equal(t, int32(1), requeueCalls.Load())
	require.Equal(t, int32(1), service.calls.Load())
}

func TestTickSkipsStaleRequeueWhenDisabled(t *testing.T) {
	events := &fakeEventRepo{
		requeueFn: func(ctx context.Context, before time.Time) (int64, error) {
			t.Error("requeue should not run when disabled")
			return 0, nil
		},
	}
	service := &fakeDispatchService{}
	s := NewDispatchScheduler(service, events, &mutexLockProvider{}, schedulerConfig())

	require.NoError(t, s.Tick(context.Background()))
	require.Equal(t, int32(1), service.calls.Load())
}

func TestSchedulerStartStop(t *testing.T) {
	service := &fakeDispatchService{}

	cfg := schedulerConfig()
	cfg.TickInterval = 10 * time.Millisecond
	s := NewDispatchScheduler(service, &fakeEventRepo{}, &mutexLockProvider{}, cfg)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	require.GreaterOrEqual(t, service.calls.Load(), int32(1))
	after := service.calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, service.calls.Load())
}
