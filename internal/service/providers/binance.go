package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"SignalHub/internal/domain/models"
	"SignalHub/internal/domain/repository"
	"SignalHub/internal/service/cache"
	"SignalHub/internal/service/ratelimit"
	"SignalHub/pkg/http"
	"SignalHub/pkg/logger"

	"github.com/shopspring/decimal"
)

const binanceID = "binance"

var errRateLimited = errors.New("provider rate limited")

// BinanceConfig holds the Binance REST client settings.
type BinanceConfig struct {
	BaseURL      string
	MetadataTTL  time.Duration
	QuoteTTL     time.Duration
	RateCapacity float64
	RatePerSec   float64
}

type binanceSymbol struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string
}

// Binance resolves crypto pairs against Binance spot. Only USDT-quoted
// pairs in TRADING status are exposed. The symbol universe is cached on
// a slow TTL, the full 24h ticker map on a fast one; expired entries are
// served stale when Binance is down or the rate budget is spent.
type Binance struct {
	cfg     BinanceConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
	metrics repository.Metrics

	symbols *cache.TTL[[]binanceSymbol]
	tickers *cache.TTL[map[string]models.RawQuote]
}

func NewBinance(cfg BinanceConfig, client *http.Client, limiter *ratelimit.Limiter, log *logger.Logger, metrics repository.Metrics) *Binance {
	return NewBinanceWithClock(cfg, client, limiter, log, metrics, nil)
}

// NewBinanceWithClock lets tests pin cache time.
func NewBinanceWithClock(cfg BinanceConfig, client *http.Client, limiter *ratelimit.Limiter, log *logger.Logger, metrics repository.Metrics, clock cache.Clock) *Binance {
	return &Binance{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		log:     log,
		metrics: metrics,
		symbols: cache.New[[]binanceSymbol](cfg.MetadataTTL, clock),
		tickers: cache.New[map[string]models.RawQuote](cfg.QuoteTTL, clock),
	}
}

func (b *Binance) ID() string { return binanceID }

// Search matches the query against pair symbols and base assets. A bare
// base asset like "BTC" matches BTCUSDT; the full pair matches too.
func (b *Binance) Search(ctx context.Context, query string) ([]models.RawAsset, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	syms, err := b.symbolUniverse(ctx)
	if err != nil {
		b.log.Warn("binance search degraded", logger.Error(err))
		return nil, nil
	}
	quotes := b.tickerMap(ctx)

	var out []models.RawAsset
	for _, s := range syms {
		if !strings.Contains(s.Symbol, q) && !strings.Contains(s.BaseAsset, q) {
			continue
		}
		out = append(out, b.toRaw(s, quotes))
	}
	return out, nil
}

// Quote returns the 24h ticker for one pair.
func (b *Binance) Quote(ctx context.Context, symbol string) (*models.RawQuote, error) {
	quotes := b.tickerMap(ctx)
	q, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

// Popular returns the top n pairs by quote volume.
func (b *Binance) Popular(ctx context.Context, n int) ([]models.RawAsset, error) {
	syms, err := b.symbolUniverse(ctx)
	if err != nil {
		b.log.Warn("binance popular degraded", logger.Error(err))
		return nil, nil
	}
	quotes := b.tickerMap(ctx)

	raws := make([]models.RawAsset, 0, len(syms))
	for _, s := range syms {
		raws = append(raws, b.toRaw(s, quotes))
	}
	sort.Slice(raws, func(i, j int) bool { return raws[i].QuoteVolume > raws[j].QuoteVolume })
	if n > 0 && len(raws) > n {
		raws = raws[:n]
	}
	return raws, nil
}

func (b *Binance) Count(ctx context.Context) int {
	syms, err := b.symbolUniverse(ctx)
	if err != nil {
		return 0
	}
	return len(syms)
}

// ApplyTick overlays a streamed quote onto the cached ticker map so the
// fast path stays warm between REST refreshes.
func (b *Binance) ApplyTick(q *models.RawQuote) {
	if q == nil {
		return
	}
	quotes, st := b.tickers.Get("all")
	if st == cache.StateMiss {
		return
	}
	next := make(map[string]models.RawQuote, len(quotes)+1)
	for k, v := range quotes {
		next[k] = v
	}
	next[strings.ToUpper(q.Symbol)] = *q
	b.tickers.Set("all", next)
}

func (b *Binance) toRaw(s binanceSymbol, quotes map[string]models.RawQuote) models.RawAsset {
	raw := models.RawAsset{
		Symbol:      s.Symbol,
		DisplayName: s.BaseAsset + "/" + s.QuoteAsset,
		Category:    models.CategoryCrypto,
		Provider:    binanceID,
	}
	if q, ok := quotes[s.Symbol]; ok {
		raw.Price = q.Price
		raw.ChangePct = q.ChangePct
		raw.QuoteVolume = q.QuoteVolume
		raw.HasQuote = true
	}
	return raw
}

func (b *Binance) symbolUniverse(ctx context.Context) ([]binanceSymbol, error) {
	syms, st, err := b.symbols.GetOrFetch(ctx, "usdt", b.fetchExchangeInfo)
	b.metrics.RecordCacheLookup("binance_symbols", st.String())
	return syms, err
}

func (b *Binance) tickerMap(ctx context.Context) map[string]models.RawQuote {
	quotes, st, err := b.tickers.GetOrFetch(ctx, "all", b.fetchTickers)
	b.metrics.RecordCacheLookup("binance_tickers", st.String())
	if err != nil {
		b.log.Warn("binance tickers unavailable", logger.Error(err))
		return nil
	}
	return quotes
}

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

func (b *Binance) fetchExchangeInfo(ctx context.Context) ([]binanceSymbol, error) {
	if !b.limiter.Allow(binanceID, b.cfg.RateCapacity, b.cfg.RatePerSec) {
		b.metrics.RecordProviderRequest(binanceID, "exchange_info", "throttled")
		return nil, errRateLimited
	}

	start := time.Now()
	var resp exchangeInfoResponse
	err := b.client.SendAndParse(ctx, &http.RequestOptions{
		Method: "GET",
		URL:    b.cfg.BaseURL + "/api/v3/exchangeInfo",
	}, &resp)
	b.metrics.RecordProviderLatency(binanceID, time.Since(start).Seconds())
	if err != nil {
		b.metrics.RecordProviderRequest(binanceID, "exchange_info", "error")
		return nil, fmt.Errorf("binance exchangeInfo: %w", err)
	}
	b.metrics.RecordProviderRequest(binanceID, "exchange_info", "ok")

	syms := make([]binanceSymbol, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != "TRADING" || s.QuoteAsset != "USDT" {
			continue
		}
		syms = append(syms, binanceSymbol{Symbol: s.Symbol, BaseAsset: s.BaseAsset, QuoteAsset: s.QuoteAsset})
	}
	return syms, nil
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

func (b *Binance) fetchTickers(ctx context.Context) (map[string]models.RawQuote, error) {
	if !b.limiter.Allow(binanceID, b.cfg.RateCapacity, b.cfg.RatePerSec) {
		b.metrics.RecordProviderRequest(binanceID, "ticker_24h", "throttled")
		return nil, errRateLimited
	}

	start := time.Now()
	var resp []ticker24h
	err := b.client.SendAndParse(ctx, &http.RequestOptions{
		Method: "GET",
		URL:    b.cfg.BaseURL + "/api/v3/ticker/24hr",
	}, &resp)
	b.metrics.RecordProviderLatency(binanceID, time.Since(start).Seconds())
	if err != nil {
		b.metrics.RecordProviderRequest(binanceID, "ticker_24h", "error")
		return nil, fmt.Errorf("binance ticker/24hr: %w", err)
	}
	b.metrics.RecordProviderRequest(binanceID, "ticker_24h", "ok")

	out := make(map[string]models.RawQuote, len(resp))
	for _, t := range resp {
		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil {
			continue
		}
		q := models.RawQuote{Symbol: t.Symbol, Price: price}
		fmt.Sscanf(t.PriceChangePercent, "%f", &q.ChangePct)
		fmt.Sscanf(t.QuoteVolume, "%f", &q.QuoteVolume)
		out[t.Symbol] = q
	}
	return out, nil
}
