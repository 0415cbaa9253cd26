package telemetry

import (
	"context"
	"time"

	"github.com/wanderquiz/beacon/internal/kv"
	"github.com/wanderquiz/beacon/internal/metrics"
)

// Tier identifies which storage backend accepted a write or served a read.
type Tier string

const (
	TierRemote Tier = "remote"
	TierLocal  Tier = "local"
	TierMemory Tier = "memory"
)

// Prober decides, per operation, whether the remote tier is usable. It is
// injected into the store so tests can substitute deterministic health.
type Prober interface {
	// RemoteConfigured reports whether remote connection parameters exist.
	RemoteConfigured() bool
	// RemoteHealthy performs a cheap liveness probe. Health is never
	// cached: fallback decisions must reflect the current moment.
	RemoteHealthy(ctx context.Context) bool
}

// PingProber probes a live backend over kv.Pinger.
type PingProber struct {
	configured bool
	pinger     kv.Pinger
	timeout    time.Duration
}

func NewPingProber(configured bool, p kv.Pinger, timeout time.Duration) *PingProber {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &PingProber{configured: configured, pinger: p, timeout: timeout}
}

func (p *PingProber) RemoteConfigured() bool {
	return p.configured && p.pinger != nil
}

func (p *PingProber) RemoteHealthy(ctx context.Context) bool {
	if !p.RemoteConfigured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pinger.Ping(ctx); err != nil {
		metrics.RemoteProbeFailures.Inc()
		return false
	}
	return true
}
