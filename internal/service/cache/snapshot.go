package cache

import (
	"context"
	"sync"
	"time"
)

type snapshot struct {
	payload    any
	computedAt time.Time
}

// ComputeFn produces a fresh payload on cache miss. It may fan out to
// several data sources; the cache does not deduplicate overlapping calls
// for the same key (two near-simultaneous misses both recompute).
type ComputeFn func(ctx context.Context) (any, error)

// SnapshotCache stores computed payloads keyed by string with a per-call
// TTL. Entries are only ever overwritten, never swept; Clear resets the
// whole cache.
type SnapshotCache struct {
	mu  sync.Mutex
	m   map[string]snapshot
	now func() time.Time
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{m: make(map[string]snapshot), now: time.Now}
}

// SetClock overrides the cache clock. Tests pin it to step through TTLs.
func (c *SnapshotCache) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// GetOrCompute returns the cached payload when its age is below ttl,
// otherwise invokes compute, stores the result, and returns it. fromCache
// reports which path was taken. A compute error is returned as-is and
// nothing is stored.
func (c *SnapshotCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFn) (payload any, fromCache bool, err error) {
	c.mu.Lock()
	if e, ok := c.m[key]; ok && c.now().Sub(e.computedAt) < ttl {
		c.mu.Unlock()
		return e.payload, true, nil
	}
	c.mu.Unlock()

	// Not atomic with the check above: concurrent misses for the same key
	// each recompute and the last writer wins.
	v, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.m[key] = snapshot{payload: v, computedAt: c.now()}
	c.mu.Unlock()
	return v, false, nil
}

// Len returns the number of stored entries.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Clear drops every entry.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]snapshot)
	c.mu.Unlock()
}
