package repository

import (
	"context"
	"fmt"
	"sync"

	drepo "SignalHub/internal/domain/repository"
	"SignalHub/pkg/cache"
)

// RedisSubscribers tracks signal followers as Redis sets, so membership
// survives restarts and duplicate follows stay idempotent.
type RedisSubscribers struct {
	cache *cache.RedisCache
}

var _ drepo.SubscriberDirectory = (*RedisSubscribers)(nil)

func NewRedisSubscribers(c *cache.RedisCache) *RedisSubscribers {
	return &RedisSubscribers{cache: c}
}

func (r *RedisSubscribers) Follow(ctx context.Context, signalID, principalID string) (bool, error) {
	added, err := r.cache.SAdd(ctx, followersKey(signalID), principalID)
	if err != nil {
		return false, fmt.Errorf("follow %s: %w", signalID, err)
	}
	return added > 0, nil
}

func (r *RedisSubscribers) Followers(ctx context.Context, signalID string) ([]string, error) {
	members, err := r.cache.SMembers(ctx, followersKey(signalID))
	if err != nil {
		return nil, fmt.Errorf("followers %s: %w", signalID, err)
	}
	return members, nil
}

func followersKey(signalID string) string { return "followers:" + signalID }

// MemorySubscribers is the in-process fallback when Redis is off.
type MemorySubscribers struct {
	mu sync.RWMutex
	m  map[string]map[string]struct{}
}

var _ drepo.SubscriberDirectory = (*MemorySubscribers)(nil)

func NewMemorySubscribers() *MemorySubscribers {
	return &MemorySubscribers{m: make(map[string]map[string]struct{})}
}

func (r *MemorySubscribers) Follow(ctx context.Context, signalID, principalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.m[signalID]
	if !ok {
		set = make(map[string]struct{})
		r.m[signalID] = set
	}
	if _, dup := set[principalID]; dup {
		return false, nil
	}
	set[principalID] = struct{}{}
	return true, nil
}

func (r *MemorySubscribers) Followers(ctx context.Context, signalID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.m[signalID]
	out := make([]string, 0, len(set))
	for pid := range set {
		out = append(out, pid)
	}
	return out, nil
}
