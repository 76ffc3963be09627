package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusActive.IsActive())
	assert.True(t, StatusTP3.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusClosed.IsActive())

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusClosed.IsTerminal())
	assert.False(t, StatusBreakEven.IsTerminal())
}

func TestStatusNotifies(t *testing.T) {
	notifying := []Status{StatusBreakEven, StatusTP1, StatusTP2, StatusTP3}
	for _, s := range notifying {
		assert.True(t, s.Notifies(), "status %s should notify", s)
	}
	silent := []Status{StatusActive, StatusCancelled, StatusClosed}
	for _, s := range silent {
		assert.False(t, s.Notifies(), "status %s should stay silent", s)
	}
}

func TestCanTransition(t *testing.T) {
	// any non-terminal state may move anywhere, including backwards
	assert.True(t, CanTransition(StatusActive, StatusTP1))
	assert.True(t, CanTransition(StatusTP2, StatusBreakEven))
	assert.True(t, CanTransition(StatusTP1, StatusClosed))
	assert.True(t, CanTransition(StatusActive, StatusCancelled))

	// terminal states are immutable
	assert.False(t, CanTransition(StatusClosed, StatusActive))
	assert.False(t, CanTransition(StatusCancelled, StatusTP1))
	assert.False(t, CanTransition(StatusClosed, StatusClosed))

	// unknown statuses never transition
	assert.False(t, CanTransition(Status("bogus"), StatusActive))
	assert.False(t, CanTransition(StatusActive, Status("bogus")))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("tp1")
	require.NoError(t, err)
	assert.Equal(t, StatusTP1, st)

	_, err = ParseStatus("winning")
	require.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("sell")
	require.NoError(t, err)
	assert.Equal(t, DirectionSell, d)

	_, err = ParseDirection("long")
	require.Error(t, err)
}

func TestParseOrderTypeDefaultsToMarket(t *testing.T) {
	ot, err := ParseOrderType("")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, ot)

	ot, err = ParseOrderType("buy_limit")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeBuyLimit, ot)

	_, err = ParseOrderType("stop")
	require.Error(t, err)
}
