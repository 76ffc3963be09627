package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "SignalHub/pkg/http"
	"SignalHub/pkg/logger"

	"SignalHub/internal/service/ratelimit"
)

type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(provider, op, result string) {}
func (nopMetrics) RecordProviderLatency(provider string, s float64)  {}
func (nopMetrics) RecordCacheLookup(cache, outcome string)           {}
func (nopMetrics) RecordSignalCreated(pair string)                   {}
func (nopMetrics) RecordStatusTransition(status string)              {}
func (nopMetrics) RecordDispatch(kind, result string)                {}
func (nopMetrics) RecordError(kind string)                           {}

const exchangeInfoBody = `{
	"symbols": [
		{"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"},
		{"symbol": "ETHUSDT", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "USDT"},
		{"symbol": "BTCEUR", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "EUR"},
		{"symbol": "OLDUSDT", "status": "BREAK", "baseAsset": "OLD", "quoteAsset": "USDT"}
	]
}`

const tickerBody = `[
	{"symbol": "BTCUSDT", "lastPrice": "64250.50", "priceChangePercent": "-1.2", "quoteVolume": "24000000"},
	{"symbol": "ETHUSDT", "lastPrice": "3010.00", "priceChangePercent": "2.5", "quoteVolume": "9000000"}
]`

func newBinanceServer(t *testing.T, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			_, _ = w.Write([]byte(exchangeInfoBody))
		case "/api/v3/ticker/24hr":
			_, _ = w.Write([]byte(tickerBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestBinance(baseURL string, clock func() time.Time) *Binance {
	cfg := BinanceConfig{
		BaseURL:      baseURL,
		MetadataTTL:  time.Minute,
		QuoteTTL:     10 * time.Second,
		RateCapacity: 100,
		RatePerSec:   100,
	}
	return NewBinanceWithClock(cfg, xhttp.NewClient(), ratelimit.New(), logger.Nop(), nopMetrics{}, clock)
}

func TestBinanceSearchFiltersUSDTTradingPairs(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	out, err := b.Search(context.Background(), "btc")
	require.NoError(t, err)
	require.Len(t, out, 1, "EUR pair and non-trading pair are excluded")

	got := out[0]
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, "BTC/USDT", got.DisplayName)
	assert.True(t, got.HasQuote)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("64250.50")))
	assert.InDelta(t, -1.2, got.ChangePct, 1e-9)
}

func TestBinanceSearchMatchesFullPairSymbol(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	out, err := b.Search(context.Background(), "ethusdt")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ETHUSDT", out[0].Symbol)
}

func TestBinancePopularOrdersByVolume(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	out, err := b.Popular(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "BTCUSDT", out[0].Symbol)
	assert.Equal(t, "ETHUSDT", out[1].Symbol)
}

func TestBinanceCount(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	assert.Equal(t, 2, b.Count(context.Background()))
}

func TestBinanceServesStaleAfterOutage(t *testing.T) {
	var fail atomic.Bool
	srv := newBinanceServer(t, &fail)
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBinance(srv.URL, func() time.Time { return now })

	out, err := b.Search(context.Background(), "btc")
	require.NoError(t, err)
	require.Len(t, out, 1)

	// upstream dies and every cache entry expires
	fail.Store(true)
	now = now.Add(5 * time.Minute)

	out, err = b.Search(context.Background(), "btc")
	require.NoError(t, err)
	require.Len(t, out, 1, "stale symbol universe keeps search alive")
	assert.Equal(t, "BTCUSDT", out[0].Symbol)
}

func TestBinanceQuoteUnknownSymbol(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	_, err := b.Quote(context.Background(), "DOGEUSDT")
	require.Error(t, err)
}

func TestBinanceApplyTickWarmsQuoteCache(t *testing.T) {
	srv := newBinanceServer(t, nil)
	defer srv.Close()
	b := newTestBinance(srv.URL, nil)

	// prime the ticker map
	_, err := b.Quote(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	q, ok := parseMiniTicker([]byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"65000","o":"64000","q":"25000000"}`))
	require.True(t, ok)
	b.ApplyTick(q)

	got, err := b.Quote(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "65000", got.Price.String())
}
