package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
)

func newSignal(pair string, createdAt time.Time) *models.Signal {
	return &models.Signal{
		Pair:        pair,
		Direction:   models.DirectionBuy,
		OrderType:   models.OrderTypeMarket,
		Entry:       decimal.RequireFromString("100"),
		StopLoss:    decimal.RequireFromString("95"),
		TakeProfit1: decimal.RequireFromString("110"),
		Status:      models.StatusActive,
		CreatedAt:   createdAt,
	}
}

func TestMemoryStoreCreateAssignsIdentity(t *testing.T) {
	s := NewMemorySignalStore()

	created, err := s.Create(context.Background(), &models.Signal{
		Pair:        "XAUUSD",
		Direction:   models.DirectionBuy,
		OrderType:   models.OrderTypeMarket,
		Entry:       decimal.RequireFromString("2400"),
		StopLoss:    decimal.RequireFromString("2380"),
		TakeProfit1: decimal.RequireFromString("2425"),
		Status:      models.StatusActive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestMemoryStoreListOrderNewestFirst(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	older, err := s.Create(ctx, newSignal("EURUSD", base))
	require.NoError(t, err)
	newer, err := s.Create(ctx, newSignal("GBPUSD", base.Add(time.Minute)))
	require.NoError(t, err)
	// same instant as older, created later: sequence breaks the tie
	tied, err := s.Create(ctx, newSignal("USDJPY", base))
	require.NoError(t, err)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, tied.ID, all[1].ID)
	assert.Equal(t, older.ID, all[2].ID)
}

func TestMemoryStoreListActiveFiltersTerminal(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()
	now := time.Now().UTC()

	keep, err := s.Create(ctx, newSignal("BTCUSDT", now))
	require.NoError(t, err)
	gone, err := s.Create(ctx, newSignal("ETHUSDT", now.Add(time.Second)))
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, gone.ID, models.StatusClosed))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)
}

func TestMemoryStoreUpdateStatusPreservesOtherFields(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	sig := newSignal("XAUUSD", time.Now().UTC())
	sig.Analysis = "breakout retest"
	created, err := s.Create(ctx, sig)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, created.ID, models.StatusTP2))

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTP2, got.Status)
	assert.Equal(t, "breakout retest", got.Analysis)
	assert.True(t, got.Entry.Equal(created.Entry))
}

func TestMemoryStoreIncrementFollowersFloorsAtZero(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	created, err := s.Create(ctx, newSignal("XAUUSD", time.Now().UTC()))
	require.NoError(t, err)

	n, err := s.IncrementFollowers(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.IncrementFollowers(ctx, created.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, drepo.ErrNotFound)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", models.StatusTP1), drepo.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), drepo.ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	created, err := s.Create(ctx, newSignal("XAUUSD", time.Now().UTC()))
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.Status = models.StatusClosed // caller-side mutation must not leak

	again, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, again.Status)
}
