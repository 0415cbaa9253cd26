package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wanderquiz/beacon/internal/metrics"
)

// A crashed claimant blocks re-migration until the claim expires.
const migrationClaimTTL = time.Minute

// Migrate copies every locally-buffered event into the remote tier exactly
// once. It is safe to call on every read: the done-flag short-circuits
// completed runs, and a SetNX claim keeps two concurrent calls from
// copying the same events twice. Local events are never deleted — disk is
// cheap, and retaining them means a partial migration loses nothing.
//
// Returns true when migration is complete (now or previously), false when
// the remote tier is unavailable or this attempt did not finish; a later
// read simply tries again.
func (s *Store) Migrate(ctx context.Context) bool {
	if s.remote == nil || !s.prober.RemoteConfigured() || !s.prober.RemoteHealthy(ctx) {
		return false
	}

	flag, found, err := s.remote.Get(ctx, migratedFlagKey)
	if err != nil {
		s.logger.Warn("migration flag read failed", "err", err)
		return false
	}
	if found && flag == "true" {
		return true
	}

	claimed, err := s.remote.SetNX(ctx, migrationClaimKey, "1", migrationClaimTTL)
	if err != nil || !claimed {
		// Another caller holds the claim; let it finish.
		return false
	}

	events, err := s.local.ReadAll()
	if err != nil {
		s.logger.Warn("migration aborted: local read failed", "err", err)
		metrics.Migrations.WithLabelValues("failed").Inc()
		return false
	}

	// Push oldest-first so the newest buffered event lands nearest the
	// head, matching live writes. Partial progress is fine: the claim TTL
	// lets a later read retry, and the done-flag is only set after a full
	// copy.
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Warn("migration skipping unencodable event", "event", ev.Name, "err", err)
			continue
		}
		if err := s.remote.PushFront(ctx, eventsKey, string(data)); err != nil {
			s.logger.Warn("migration aborted: remote append failed", "err", err)
			metrics.Migrations.WithLabelValues("failed").Inc()
			return false
		}
	}

	if err := s.remote.Set(ctx, migratedFlagKey, "true"); err != nil {
		s.logger.Warn("migration flag write failed", "err", err)
		metrics.Migrations.WithLabelValues("failed").Inc()
		return false
	}
	_ = s.remote.Delete(ctx, migrationClaimKey)

	s.logger.Info("local events migrated to remote tier", "count", len(events))
	metrics.Migrations.WithLabelValues("completed").Inc()
	return true
}
