package cache

import (
	"context"
	"sync"
	"time"
)

// State classifies a cache lookup.
type State int

const (
	StateMiss State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "hit"
	case StateStale:
		return "stale"
	default:
		return "miss"
	}
}

// Clock supplies the current time. Injected so TTL behavior is
// deterministic under test.
type Clock func() time.Time

type entry[V any] struct {
	v         V
	fetchedAt time.Time
}

// TTL caches provider responses keyed by string. Entries older than the
// TTL are reported stale but retained: when a refresh fails, the last
// known value is served instead of an error. The cache is shared across
// concurrent callers and does not single-flight refreshes, so two
// concurrent misses for one key may both hit the upstream; results are
// idempotent reads, so the duplicate call is wasted work, not a bug.
type TTL[V any] struct {
	mu    sync.RWMutex
	m     map[string]entry[V]
	ttl   time.Duration
	clock Clock
}

// New creates a TTL cache. A nil clock uses time.Now.
func New[V any](ttl time.Duration, clock Clock) *TTL[V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTL[V]{m: make(map[string]entry[V]), ttl: ttl, clock: clock}
}

// Get returns the cached value and its freshness state.
func (c *TTL[V]) Get(key string) (V, State) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, StateMiss
	}
	if c.clock().Sub(e.fetchedAt) > c.ttl {
		return e.v, StateStale
	}
	return e.v, StateFresh
}

// Set stores a value with the current fetch time.
func (c *TTL[V]) Set(key string, v V) {
	c.mu.Lock()
	c.m[key] = entry[V]{v: v, fetchedAt: c.clock()}
	c.mu.Unlock()
}

// GetOrFetch returns a fresh value, refreshing through fetch when the
// entry is absent or expired. On refresh failure with a stale entry
// present the stale value is served (graceful degradation); without one
// the fetch error propagates. The returned State reports what happened:
// StateFresh for a cache hit, StateMiss for a successful refresh,
// StateStale when a stale value was served after a failed refresh.
func (c *TTL[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, State, error) {
	if v, st := c.Get(key); st == StateFresh {
		return v, StateFresh, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		if stale, st := c.Get(key); st != StateMiss {
			return stale, StateStale, nil
		}
		var zero V
		return zero, StateMiss, err
	}

	c.Set(key, v)
	return v, StateMiss, nil
}

// Len returns the number of entries, fresh or stale.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
