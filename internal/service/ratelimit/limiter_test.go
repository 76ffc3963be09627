package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesCapacity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	assert.True(t, l.Allow("binance", 2, 1))
	assert.True(t, l.Allow("binance", 2, 1))
	assert.False(t, l.Allow("binance", 2, 1), "bucket exhausted")
}

func TestAllowRefillsOverTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	assert.True(t, l.Allow("k", 1, 1))
	assert.False(t, l.Allow("k", 1, 1))

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("k", 1, 1))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	assert.True(t, l.Allow("binance", 1, 1))
	assert.False(t, l.Allow("binance", 1, 1))
	assert.True(t, l.Allow("yahoo", 1, 1), "separate bucket per key")
}

func TestAllowCapsAtCapacity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	assert.True(t, l.Allow("k", 2, 10))
	now = now.Add(time.Hour) // refill far beyond capacity

	assert.True(t, l.Allow("k", 2, 10))
	assert.True(t, l.Allow("k", 2, 10))
	assert.False(t, l.Allow("k", 2, 10), "tokens never exceed capacity")
}
