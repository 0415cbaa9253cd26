package ingest

import (
	"context"
	"time"

	"github.com/wanderquiz/beacon/internal/config"
	"github.com/wanderquiz/beacon/internal/event"
	"github.com/wanderquiz/beacon/internal/metrics"
	"github.com/wanderquiz/beacon/internal/telemetry"
)

// Result reports the outcome of one telemetry write. Tier is empty while
// Pending: the write is still running in the background.
type Result struct {
	EventID    string         `json:"event_id"`
	Tier       telemetry.Tier `json:"tier,omitempty"`
	Pending    bool           `json:"pending,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// Engine decouples producer latency from tier writes: producers enqueue
// onto a bounded pool whose workers run the remote/local/memory cascade.
type Engine struct {
	store *telemetry.Store
	pool  *pool
	conf  config.IngestConf
}

// New creates an Engine using conf and starts the write pool.
func New(ctx context.Context, store *telemetry.Store, conf config.IngestConf) *Engine {
	e := &Engine{store: store, conf: conf}
	e.pool = newPool(ctx, conf.WriteWorkers, conf.QueueDepth, e.processJob)
	return e
}

func (e *Engine) processJob(ctx context.Context, j writeJob) {
	start := time.Now()
	tier := e.store.Write(ctx, j.ev)
	elapsed := time.Since(start).Milliseconds()
	metrics.WriteDuration.Observe(float64(elapsed))
	if j.resultC != nil {
		j.resultC <- Result{EventID: j.ev.ID, Tier: tier, DurationMs: elapsed}
	}
}

// WriteSync enqueues ev and waits up to the configured timeout for the
// tier outcome. On timeout the write keeps running in the background and
// the caller gets a pending result — telemetry never surfaces a failure
// to the producer. A full queue degrades to an inline write for the same
// reason.
func (e *Engine) WriteSync(ctx context.Context, ev event.Event) Result {
	resultC := make(chan Result, 1)
	if !e.pool.Submit(writeJob{ev: ev, resultC: resultC}) {
		start := time.Now()
		tier := e.store.Write(ctx, ev)
		return Result{EventID: ev.ID, Tier: tier, DurationMs: time.Since(start).Milliseconds()}
	}
	metrics.EventsEnqueued.Inc()

	timeout := time.Duration(e.conf.WriteTimeoutMs) * time.Millisecond
	select {
	case res := <-resultC:
		return res
	case <-time.After(timeout):
		return Result{EventID: ev.ID, Pending: true}
	case <-ctx.Done():
		return Result{EventID: ev.ID, Pending: true}
	}
}

// WriteAsync enqueues ev for background persistence. Returns false if the
// queue is full.
func (e *Engine) WriteAsync(ev event.Event) bool {
	if !e.pool.Submit(writeJob{ev: ev}) {
		metrics.EventsDropped.Inc()
		return false
	}
	metrics.EventsEnqueued.Inc()
	return true
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the write pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
