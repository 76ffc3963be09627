package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	"SignalHub/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(provider, op, result string) {}
func (nopMetrics) RecordProviderLatency(provider string, s float64)  {}
func (nopMetrics) RecordCacheLookup(cache, outcome string)           {}
func (nopMetrics) RecordSignalCreated(pair string)                   {}
func (nopMetrics) RecordStatusTransition(status string)              {}
func (nopMetrics) RecordDispatch(kind, result string)                {}
func (nopMetrics) RecordError(kind string)                           {}

type fakeProvider struct {
	id      string
	results []models.RawAsset
	err     error
	count   int
}

func (p *fakeProvider) ID() string { return p.id }

func (p *fakeProvider) Search(ctx context.Context, query string) ([]models.RawAsset, error) {
	return p.results, p.err
}

func (p *fakeProvider) Quote(ctx context.Context, symbol string) (*models.RawQuote, error) {
	return nil, nil
}

func (p *fakeProvider) Popular(ctx context.Context, n int) ([]models.RawAsset, error) {
	if len(p.results) > n {
		return p.results[:n], p.err
	}
	return p.results, p.err
}

func (p *fakeProvider) Count(ctx context.Context) int { return p.count }

func raw(provider, symbol string, cat models.Category) models.RawAsset {
	return models.RawAsset{
		Symbol:      symbol,
		DisplayName: symbol,
		Category:    cat,
		Provider:    provider,
	}
}

func newTestResolver(chain ...drepo.Provider) *Resolver {
	return NewResolver(chain, time.Second, logger.Nop(), nopMetrics{})
}

func TestSearchAllFirstProviderWinsDuplicates(t *testing.T) {
	binance := &fakeProvider{id: "binance", results: []models.RawAsset{
		raw("binance", "BTCUSDT", models.CategoryCrypto),
	}}
	yahoo := &fakeProvider{id: "yahoo", results: []models.RawAsset{
		raw("yahoo", "BTCUSDT", models.CategoryEquity), // duplicate symbol, later in precedence
		raw("yahoo", "MSTR", models.CategoryEquity),
	}}

	out := newTestResolver(binance, yahoo).SearchAll(context.Background(), "btc", 10)

	require.Len(t, out, 2)
	assert.Equal(t, "BTCUSDT", out[0].ID)
	assert.Equal(t, "binance", out[0].Provenance, "first provider in precedence claims the symbol")
	assert.Equal(t, models.CategoryCrypto, out[0].Category)
	assert.Equal(t, "MSTR", out[1].ID)
}

func TestSearchAllTruncatesAtLimit(t *testing.T) {
	p := &fakeProvider{id: "binance", results: []models.RawAsset{
		raw("binance", "A1USDT", models.CategoryCrypto),
		raw("binance", "A2USDT", models.CategoryCrypto),
		raw("binance", "A3USDT", models.CategoryCrypto),
	}}

	out := newTestResolver(p).SearchAll(context.Background(), "a", 2)
	assert.Len(t, out, 2)
}

func TestSearchAllFailedProviderContributesNothing(t *testing.T) {
	broken := &fakeProvider{id: "binance", err: errors.New("upstream down")}
	working := &fakeProvider{id: "equities", results: []models.RawAsset{
		raw("equities", "AAPL", models.CategoryEquity),
	}}

	out := newTestResolver(broken, working).SearchAll(context.Background(), "aapl", 10)

	require.Len(t, out, 1)
	assert.Equal(t, "AAPL", out[0].ID)
}

func TestSearchAllManualFallback(t *testing.T) {
	empty := &fakeProvider{id: "binance"}

	out := newTestResolver(empty).SearchAll(context.Background(), "xauusd", 10)

	require.Len(t, out, 1)
	assert.Equal(t, "XAUUSD", out[0].ID)
	assert.Equal(t, models.ProvenanceManual, out[0].Provenance)
	assert.Equal(t, models.CategoryFuture, out[0].Category)
}

func TestClassifySymbol(t *testing.T) {
	assert.Equal(t, models.CategoryCrypto, ClassifySymbol("PEPEUSDT"))
	assert.Equal(t, models.CategoryFuture, ClassifySymbol("XAUUSD"))
	assert.Equal(t, models.CategoryFuture, ClassifySymbol("EURUSD"))
	assert.Equal(t, models.CategoryCustom, ClassifySymbol("MYSTERY9"))
}

func TestPopularAssetsBucketsPerCategory(t *testing.T) {
	pairs := make([]models.RawAsset, 0, 40)
	for i := 0; i < 40; i++ {
		pairs = append(pairs, raw("binance", fmt.Sprintf("COIN%dUSDT", i), models.CategoryCrypto))
	}
	r := newTestResolver(
		&fakeProvider{id: "binance", results: pairs},
		&fakeProvider{id: "equities", results: []models.RawAsset{
			raw("equities", "AAPL", models.CategoryEquity),
			raw("equities", "MSFT", models.CategoryEquity),
		}},
		&fakeProvider{id: "futures", results: []models.RawAsset{
			raw("futures", "XAUUSD", models.CategoryFuture),
		}},
	)

	got := r.PopularAssets(context.Background(), 20)
	assert.Len(t, got.Crypto, 20, "crypto bucket capped at n")
	require.Len(t, got.Equities, 2, "broad crypto universe must not crowd out equities")
	assert.Equal(t, "AAPL", got.Equities[0].ID)
	require.Len(t, got.Futures, 1)
	assert.Equal(t, "XAUUSD", got.Futures[0].ID)
}

func TestPopularAssetsFailedProviderLeavesBucketEmpty(t *testing.T) {
	r := newTestResolver(
		&fakeProvider{id: "binance", err: errors.New("upstream down")},
		&fakeProvider{id: "equities", results: []models.RawAsset{
			raw("equities", "AAPL", models.CategoryEquity),
		}},
	)

	got := r.PopularAssets(context.Background(), 10)
	assert.Empty(t, got.Crypto)
	require.Len(t, got.Equities, 1)
}

func TestAssetCounts(t *testing.T) {
	r := newTestResolver(
		&fakeProvider{id: "binance", count: 400},
		&fakeProvider{id: "equities", count: 50},
		&fakeProvider{id: "etfs", count: 25},
		&fakeProvider{id: "futures", count: 26},
		&fakeProvider{id: "yahoo"}, // open-ended, excluded from counts
	)

	c := r.AssetCounts(context.Background())
	assert.Equal(t, 400, c.Crypto)
	assert.Equal(t, 50, c.Equities)
	assert.Equal(t, 25, c.ETFs)
	assert.Equal(t, 26, c.Futures)
	assert.Equal(t, 501, c.Total)
}

func TestToAssetCarriesQuote(t *testing.T) {
	price := decimal.RequireFromString("64250.5")
	a := toAsset(models.RawAsset{
		Symbol:      "BTCUSDT",
		DisplayName: "BTC/USDT",
		Category:    models.CategoryCrypto,
		Provider:    "binance",
		Price:       price,
		ChangePct:   -1.2,
		QuoteVolume: 24_000_000,
		HasQuote:    true,
	})

	require.NotNil(t, a.Price)
	assert.True(t, a.Price.Equal(price))
	require.NotNil(t, a.Change24h)
	assert.InDelta(t, -1.2, *a.Change24h, 1e-9)
	assert.Equal(t, "24M", a.Volume)
}
