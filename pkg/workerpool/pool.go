package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"notification-dispatch/pkg/logger"
)

// SaturationPolicy decides what Submit does when all workers are busy and
// the pending queue is full.
type SaturationPolicy string

const (
	// PolicyReject makes Submit return ErrSaturated.
	PolicyReject SaturationPolicy = "reject"
	// PolicyBlock makes Submit wait for queue space.
	PolicyBlock SaturationPolicy = "block"
	// PolicyCallerRuns executes the task synchronously on the submitting
	// goroutine, throttling the producer instead of dropping work.
	PolicyCallerRuns SaturationPolicy = "caller_runs"
)

// ParsePolicy maps a config string to a SaturationPolicy, defaulting to
// caller-runs for unknown values.
func ParsePolicy(s string) SaturationPolicy {
	switch SaturationPolicy(s) {
	case PolicyReject, PolicyBlock, PolicyCallerRuns:
		return SaturationPolicy(s)
	default:
		return PolicyCallerRuns
	}
}

var (
	// ErrSaturated is returned under PolicyReject when the queue is full.
	ErrSaturated = errors.New("workerpool: queue is full")
	// ErrClosed is returned when Submit is called after Shutdown.
	ErrClosed = errors.New("workerpool: pool is closed")
)

// Pool is a fixed-size worker pool with a bounded pending queue and an
// explicit saturation policy. It is constructed once at startup and must
// be shut down via Shutdown; it never drops a submitted task silently.
type Pool struct {
	tasks  chan func()
	policy SaturationPolicy

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts size workers with a pending queue of queueCapacity tasks.
func New(size, queueCapacity int, policy SaturationPolicy) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueCapacity < 0 {
		queueCapacity = 0
	}
	p := &Pool{
		tasks:  make(chan func(), queueCapacity),
		policy: policy,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes a task and keeps panics from killing the worker (or the
// submitting goroutine under caller-runs).
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("workerpool: task panic recovered error=%v", r)
		}
	}()
	task()
}

// Submit enqueues a task. When the queue is full the configured saturation
// policy applies; under caller-runs the task completes before Submit returns.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	switch p.policy {
	case PolicyBlock:
		p.tasks <- task
		return nil
	case PolicyReject:
		return ErrSaturated
	default:
		p.run(task)
		return nil
	}
}

// QueueDepth reports the number of queued, not yet started tasks.
func (p *Pool) QueueDepth() int {
	return len(p.tasks)
}

// Shutdown stops the pool. With drain=true queued tasks are still executed;
// with drain=false they are discarded. It waits for in-flight work until
// ctx expires.
func (p *Pool) Shutdown(ctx context.Context, drain bool) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	if !drain {
		dropped := 0
	flush:
		for {
			select {
			case <-p.tasks:
				dropped++
			default:
				break flush
			}
		}
		if dropped > 0 {
			logger.Warnf("workerpool: discarded %d queued tasks on shutdown", dropped)
		}
	}
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workerpool: shutdown wait: %w", ctx.Err())
	}
}
