package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](time.Minute, clk.Now)

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "payload", nil
	}

	v, st, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
	assert.Equal(t, StateMiss, st)
	assert.Equal(t, 1, calls)

	clk.Advance(30 * time.Second)
	v, st, err = c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
	assert.Equal(t, StateFresh, st)
	assert.Equal(t, 1, calls, "no upstream call before TTL expiry")
}

func TestGetOrFetchRefreshesAfterTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](time.Minute, clk.Now)

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	_, _, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)

	clk.Advance(61 * time.Second)
	v, _, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchServesStaleOnRefreshFailure(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](time.Minute, clk.Now)

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "last-good", nil
		}
		return "", errors.New("upstream down")
	}

	_, _, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	v, st, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err, "stale fallback must not surface the fetch error")
	assert.Equal(t, "last-good", v)
	assert.Equal(t, StateStale, st)
}

func TestGetOrFetchErrorsWithoutFallback(t *testing.T) {
	c := New[string](time.Minute, nil)

	_, _, err := c.GetOrFetch(context.Background(), "absent", func(ctx context.Context) (string, error) {
		return "", errors.New("upstream down")
	})
	require.Error(t, err)
}

func TestGetStatesByAge(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New[int](10*time.Second, clk.Now)

	_, st := c.Get("k")
	assert.Equal(t, StateMiss, st)

	c.Set("k", 42)
	v, st := c.Get("k")
	assert.Equal(t, 42, v)
	assert.Equal(t, StateFresh, st)

	clk.Advance(11 * time.Second)
	v, st = c.Get("k")
	assert.Equal(t, 42, v, "stale entries stay readable")
	assert.Equal(t, StateStale, st)
}
