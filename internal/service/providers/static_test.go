package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/internal/domain/models"
)

func TestStaticSearchByPrefixAndName(t *testing.T) {
	eq := NewEquities()

	out, err := eq.Search(context.Background(), "aap")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "AAPL", out[0].Symbol)
	assert.Equal(t, models.CategoryEquity, out[0].Category)
	assert.False(t, out[0].HasQuote, "static lists carry no market data")

	out, err = eq.Search(context.Background(), "nvidia")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "NVDA", out[0].Symbol)
}

func TestStaticSearchEmptyQuery(t *testing.T) {
	out, err := NewETFs().Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStaticPopularReturnsHeadOfList(t *testing.T) {
	out, err := NewETFs().Popular(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "SPY", out[0].Symbol)
	assert.Equal(t, "QQQ", out[1].Symbol)
}

func TestStaticCategories(t *testing.T) {
	fut, err := NewFutures().Search(context.Background(), "xauusd")
	require.NoError(t, err)
	require.Len(t, fut, 1)
	assert.Equal(t, models.CategoryFuture, fut[0].Category)
	assert.Equal(t, "XAUUSD Gold Spot", fut[0].DisplayName)

	etf, err := NewETFs().Search(context.Background(), "gld")
	require.NoError(t, err)
	require.Len(t, etf, 1)
	assert.Equal(t, models.CategoryETF, etf[0].Category)
}

func TestStaticCount(t *testing.T) {
	assert.Equal(t, len(equityList), NewEquities().Count(context.Background()))
	assert.Equal(t, len(futureList), NewFutures().Count(context.Background()))
}
