package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SignalHub/internal/domain/models"
	"SignalHub/internal/domain/repository"
	"SignalHub/internal/service/cache"
	"SignalHub/internal/service/ratelimit"
	"SignalHub/pkg/http"
	"SignalHub/pkg/logger"
)

const yahooID = "yahoo"

// YahooConfig holds the Yahoo Finance search client settings.
type YahooConfig struct {
	BaseURL      string
	SearchTTL    time.Duration
	RateCapacity float64
	RatePerSec   float64
}

// Yahoo is the free-text fallback resolver. It covers company names and
// symbols the structured providers miss; responses are cached per query
// and served stale when the endpoint throttles or fails.
type Yahoo struct {
	cfg     YahooConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
	metrics repository.Metrics

	searches *cache.TTL[[]models.RawAsset]
}

func NewYahoo(cfg YahooConfig, client *http.Client, limiter *ratelimit.Limiter, log *logger.Logger, metrics repository.Metrics) *Yahoo {
	return NewYahooWithClock(cfg, client, limiter, log, metrics, nil)
}

func NewYahooWithClock(cfg YahooConfig, client *http.Client, limiter *ratelimit.Limiter, log *logger.Logger, metrics repository.Metrics, clock cache.Clock) *Yahoo {
	return &Yahoo{
		cfg:      cfg,
		client:   client,
		limiter:  limiter,
		log:      log,
		metrics:  metrics,
		searches: cache.New[[]models.RawAsset](cfg.SearchTTL, clock),
	}
}

func (y *Yahoo) ID() string { return yahooID }

func (y *Yahoo) Search(ctx context.Context, query string) ([]models.RawAsset, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	key := strings.ToUpper(q)

	out, st, err := y.searches.GetOrFetch(ctx, key, func(ctx context.Context) ([]models.RawAsset, error) {
		return y.fetchSearch(ctx, q)
	})
	y.metrics.RecordCacheLookup("yahoo_search", st.String())
	if err != nil {
		y.log.Warn("yahoo search degraded", logger.String("query", q), logger.Error(err))
		return nil, nil
	}
	return out, nil
}

// Quote is unsupported; the free search endpoint carries no prices.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*models.RawQuote, error) {
	return nil, nil
}

// Popular is unsupported; Yahoo only answers explicit queries.
func (y *Yahoo) Popular(ctx context.Context, n int) ([]models.RawAsset, error) {
	return nil, nil
}

// Count is unknown for an open-ended search index.
func (y *Yahoo) Count(ctx context.Context) int { return 0 }

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

func (y *Yahoo) fetchSearch(ctx context.Context, query string) ([]models.RawAsset, error) {
	if !y.limiter.Allow(yahooID, y.cfg.RateCapacity, y.cfg.RatePerSec) {
		y.metrics.RecordProviderRequest(yahooID, "search", "throttled")
		return nil, errRateLimited
	}

	start := time.Now()
	var resp yahooSearchResponse
	err := y.client.SendAndParse(ctx, &http.RequestOptions{
		Method: "GET",
		URL:    y.cfg.BaseURL + "/v1/finance/search",
		QueryParams: map[string][]string{
			"q":                {query},
			"quotesCount":      {"20"},
			"newsCount":        {"0"},
			"enableFuzzyQuery": {"false"},
		},
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
	}, &resp)
	y.metrics.RecordProviderLatency(yahooID, time.Since(start).Seconds())
	if err != nil {
		y.metrics.RecordProviderRequest(yahooID, "search", "error")
		return nil, fmt.Errorf("yahoo search: %w", err)
	}
	y.metrics.RecordProviderRequest(yahooID, "search", "ok")

	out := make([]models.RawAsset, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		out = append(out, models.RawAsset{
			Symbol:      strings.ToUpper(q.Symbol),
			DisplayName: strings.ToUpper(q.Symbol) + " " + name,
			Category:    categoryFromQuoteType(q.QuoteType),
			Provider:    yahooID,
		})
	}
	return out, nil
}

func categoryFromQuoteType(t string) models.Category {
	switch strings.ToUpper(t) {
	case "ETF":
		return models.CategoryETF
	case "FUTURE", "INDEX", "CURRENCY":
		return models.CategoryFuture
	case "CRYPTOCURRENCY":
		return models.CategoryCrypto
	default:
		return models.CategoryEquity
	}
}
