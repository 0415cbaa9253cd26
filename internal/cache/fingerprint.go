// Package cache holds the content-addressed quiz profile cache. It shares
// the kv abstraction with the telemetry store but is otherwise independent
// of it: the cache is keyed by a fingerprint of the quiz answers, so two
// identical answer vectors resolve to the same stored profile.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/wanderquiz/beacon/internal/kv"
)

const keyPrefix = "beacon:profile:"

// Fingerprint derives the stable content address of an answer vector.
// Answers are joined on a separator that cannot appear in answer text.
func Fingerprint(answers []string) string {
	sum := sha256.Sum256([]byte(strings.Join(answers, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// ProfileCache stores rendered profile results under answer fingerprints.
type ProfileCache struct {
	store kv.Store
	ttl   time.Duration
}

func NewProfileCache(store kv.Store, ttl time.Duration) *ProfileCache {
	return &ProfileCache{store: store, ttl: ttl}
}

// Get returns the cached profile for an answer vector, false on a miss.
func (c *ProfileCache) Get(ctx context.Context, answers []string) (string, bool, error) {
	return c.store.Get(ctx, keyPrefix+Fingerprint(answers))
}

// Put stores a profile if absent. Content-addressed values never change,
// so set-if-absent makes concurrent fills idempotent.
func (c *ProfileCache) Put(ctx context.Context, answers []string, profile string) error {
	_, err := c.store.SetNX(ctx, keyPrefix+Fingerprint(answers), profile, c.ttl)
	return err
}

// Invalidate drops the cached profile for an answer vector, e.g. after a
// prompt change makes old renderings stale.
func (c *ProfileCache) Invalidate(ctx context.Context, answers []string) error {
	return c.store.Delete(ctx, keyPrefix+Fingerprint(answers))
}
