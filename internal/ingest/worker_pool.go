package ingest

import (
	"context"
	"sync"

	"github.com/wanderquiz/beacon/internal/event"
)

// writeJob carries one event through the pool. resultC is set only on the
// synchronous path.
type writeJob struct {
	ev      event.Event
	resultC chan Result
}

// pool is a fixed-size goroutine pool with a bounded input queue.
type pool struct {
	queue   chan writeJob
	process func(ctx context.Context, j writeJob)
	wg      sync.WaitGroup
}

// newPool creates and starts a pool with n goroutines and queue capacity
// depth.
func newPool(ctx context.Context, n, depth int, fn func(context.Context, writeJob)) *pool {
	p := &pool{
		queue:   make(chan writeJob, depth),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *pool) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues a job without blocking (returns false if full).
func (p *pool) Submit(j writeJob) bool {
	select {
	case p.queue <- j:
		return true
	default:
		return false
	}
}

// Drain closes the queue and waits for all workers to finish.
func (p *pool) Drain() {
	close(p.queue)
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *pool) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *pool) QueueCap() int {
	return cap(p.queue)
}
