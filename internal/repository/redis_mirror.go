package repository

import (
	"context"
	"fmt"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	"SignalHub/pkg/cache"
)

const mirrorTTL = 0 // mirror entries live until removed

// RedisMirror keeps a JSON copy of each signal in Redis for low-latency
// consumers. It trails the primary store; nothing reads it on the write
// path.
type RedisMirror struct {
	cache *cache.RedisCache
}

var _ drepo.MirrorStore = (*RedisMirror)(nil)

func NewRedisMirror(c *cache.RedisCache) *RedisMirror {
	return &RedisMirror{cache: c}
}

func (m *RedisMirror) Save(ctx context.Context, s *models.Signal) error {
	if err := m.cache.Set(ctx, mirrorKey(s.ID), s, mirrorTTL); err != nil {
		return fmt.Errorf("mirror save %s: %w", s.ID, err)
	}
	return nil
}

func (m *RedisMirror) Remove(ctx context.Context, id string) error {
	if err := m.cache.Delete(ctx, mirrorKey(id)); err != nil {
		return fmt.Errorf("mirror remove %s: %w", id, err)
	}
	return nil
}

func mirrorKey(id string) string { return "signal:" + id }
