package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wanderquiz/beacon/internal/config"
	"github.com/wanderquiz/beacon/internal/event"
	"github.com/wanderquiz/beacon/internal/kv"
	"github.com/wanderquiz/beacon/internal/metrics"
)

// Fixed remote keys. The store exclusively owns both.
const (
	eventsKey         = "beacon:events"
	migratedFlagKey   = "beacon:events:migrated"
	migrationClaimKey = "beacon:events:migrating"
)

// RemoteKV is what the store needs from the remote backend: plain
// key-value access for the migration flag plus list access for the log.
type RemoteKV interface {
	kv.Store
	kv.List
}

// Store is the tiered event log: remote Redis first, local disk second,
// process memory last. Writes cascade down on failure and cannot fail
// overall; reads prefer the highest tier holding data.
type Store struct {
	prober Prober
	remote RemoteKV // nil when the remote tier is not configured
	local  *LocalStore
	mem    *MemoryStore
	logger *slog.Logger
}

func NewStore(prober Prober, remote RemoteKV, local *LocalStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		prober: prober,
		remote: remote,
		local:  local,
		mem:    NewMemoryStore(),
		logger: logger,
	}
}

// RemoteConfigured reports whether the remote tier exists at all. The
// summary endpoint is gated on it.
func (s *Store) RemoteConfigured() bool {
	return s.prober.RemoteConfigured()
}

// Write persists ev on the highest tier currently available and returns
// which one accepted it. Each tier gets a single attempt — the next tier
// is immediately available, so retry-with-backoff would add latency for no
// durability benefit. Tier errors are logged, never propagated: a failure
// to record telemetry must never surface to the product.
func (s *Store) Write(ctx context.Context, ev event.Event) Tier {
	if s.prober.RemoteConfigured() && s.prober.RemoteHealthy(ctx) {
		if err := s.writeRemote(ctx, ev); err != nil {
			s.logger.Warn("remote event write failed, falling back", "event", ev.Name, "err", err)
		} else {
			metrics.EventsWritten.WithLabelValues(string(TierRemote)).Inc()
			return TierRemote
		}
	}
	if err := s.local.AppendOne(ev); err != nil {
		s.logger.Warn("local event write failed, falling back", "event", ev.Name, "err", err)
	} else {
		metrics.EventsWritten.WithLabelValues(string(TierLocal)).Inc()
		return TierLocal
	}
	s.mem.Append(ev)
	metrics.EventsWritten.WithLabelValues(string(TierMemory)).Inc()
	return TierMemory
}

// ReadRecent returns up to limit of the most recent events and the tier
// that served them. A healthy remote tier is migrated into first
// (best-effort), then read; an empty or failing remote falls back to the
// local buffer, then to process memory.
func (s *Store) ReadRecent(ctx context.Context, limit int) ([]event.Event, Tier) {
	if limit <= 0 || limit > config.MaxReadLimit {
		limit = config.MaxReadLimit
	}
	if s.prober.RemoteConfigured() && s.prober.RemoteHealthy(ctx) {
		s.Migrate(ctx)
		events, err := s.readRemote(ctx, limit)
		if err != nil {
			s.logger.Warn("remote event read failed, falling back", "err", err)
		} else if len(events) > 0 {
			metrics.EventReads.WithLabelValues(string(TierRemote)).Inc()
			return events, TierRemote
		}
	}
	if events, err := s.local.ReadAll(); err == nil && len(events) > 0 {
		metrics.EventReads.WithLabelValues(string(TierLocal)).Inc()
		return tail(events, limit), TierLocal
	}
	metrics.EventReads.WithLabelValues(string(TierMemory)).Inc()
	return tail(s.mem.ReadAll(), limit), TierMemory
}

func (s *Store) writeRemote(ctx context.Context, ev event.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Name, err)
	}
	return s.remote.PushFront(ctx, eventsKey, string(data))
}

func (s *Store) readRemote(ctx context.Context, limit int) ([]event.Event, error) {
	raw, err := s.remote.Range(ctx, eventsKey, 0, int64(limit-1))
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(raw))
	for _, item := range raw {
		var ev event.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			s.logger.Warn("skipping undecodable remote event", "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// tail returns the last n events (the most recent ones in an oldest-first
// slice).
func tail(events []event.Event, n int) []event.Event {
	if len(events) > n {
		return events[len(events)-n:]
	}
	return events
}
