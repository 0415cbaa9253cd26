package kv

import (
	"context"
	"time"
)

// Store is the minimal key-value contract shared by the telemetry store
// and the profile fingerprint cache. No multi-key atomicity is offered;
// higher-level idempotence comes from flags and append-only lists.
type Store interface {
	// Get returns the value under key, with false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetNX sets key only when absent and returns whether it did. A zero
	// ttl means no expiry.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// List is prepend/range access to a list value under a single key,
// LPUSH/LRANGE style: index 0 is the most recently pushed element.
type List interface {
	PushFront(ctx context.Context, key string, values ...string) error
	// Range returns elements from start through stop inclusive; negative
	// indices count from the end, so (0, -1) is the whole list.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Pinger reports backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
