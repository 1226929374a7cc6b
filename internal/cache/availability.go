// Package cache provides the Redis-backed availability snapshot
// cache.  Availability is the hottest read in the system and tolerates
// a short staleness window, so snapshots are cached with a small TTL
// and invalidated on every roster mutation.  When Redis is not
// configured the cache degrades to a no-op and every read goes to the
// primary store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classpeak/group-booking/internal/booking"
)

// Availability caches booking.Availability snapshots keyed by tenant
// and session.  A nil Redis client disables it entirely.
type Availability struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewAvailability returns a cache with the given TTL and key prefix.
func NewAvailability(rdb *redis.Client, ttl time.Duration, prefix string) *Availability {
	if prefix == "" {
		prefix = "avail"
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Availability{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *Availability) key(tenantID, sessionID uint64) string {
	return fmt.Sprintf("%s:%d:%d", c.prefix, tenantID, sessionID)
}

// Get returns a cached snapshot and whether one was present.  Any
// Redis or decode failure is treated as a miss.
func (c *Availability) Get(ctx context.Context, tenantID, sessionID uint64) (*booking.Availability, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(tenantID, sessionID)).Bytes()
	if err != nil {
		return nil, false
	}
	var av booking.Availability
	if err := json.Unmarshal(raw, &av); err != nil {
		return nil, false
	}
	return &av, true
}

// Set stores a snapshot for the configured TTL.  Failures are
// ignored: the cache is an optimization, never a source of truth.
func (c *Availability) Set(ctx context.Context, tenantID, sessionID uint64, av *booking.Availability) {
	if c == nil || c.rdb == nil || av == nil {
		return
	}
	raw, err := json.Marshal(av)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(tenantID, sessionID), raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot after a roster mutation so the
// next read reflects the committed state.
func (c *Availability) Invalidate(ctx context.Context, tenantID, sessionID uint64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.key(tenantID, sessionID)).Err()
}
