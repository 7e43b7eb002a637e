// Package worker bounds the service's background work: a pool that
// runs solve chains concurrently and a per-domain rate limiter for
// outbound fetches.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of background work, typically a full solve chain.
// It owns its own state; the pool only provides the goroutine.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed number of workers. A slow task (a stuck
// reasoning call, a hung page load) occupies one worker and cannot
// starve the others.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewPool creates and starts a pool with the given worker count
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, workers*2),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			task(p.ctx)
		}
	}
}

// Submit queues a task. It reports false when the pool is shut down
// or the queue is full — callers decide whether that is an error.
func (p *Pool) Submit(task Task) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting tasks, cancels running ones and waits.
// The task channel is never closed so a racing Submit cannot panic;
// it just reports rejection.
func (p *Pool) Shutdown() {
	p.once.Do(p.cancel)
	p.wg.Wait()
}
