package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	"SignalHub/pkg/logger"
	"SignalHub/pkg/util"
)

// Resolver fans a symbol search out across providers and merges results
// under a fixed precedence. Providers are queried concurrently, each
// under its own timeout; a failed provider contributes nothing instead
// of failing the search.
type Resolver struct {
	providers []drepo.Provider // precedence order
	timeout   time.Duration
	log       *logger.Logger
	metrics   drepo.Metrics
}

func NewResolver(providers []drepo.Provider, timeout time.Duration, log *logger.Logger, metrics drepo.Metrics) *Resolver {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{providers: providers, timeout: timeout, log: log, metrics: metrics}
}

// SearchAll resolves a query across all providers. Results keep the
// provider precedence order; the first provider to claim a symbol wins
// and later duplicates are dropped. A query that matches nothing still
// yields one manual descriptor so operators can publish unlisted pairs.
func (r *Resolver) SearchAll(ctx context.Context, query string, limit int) []models.Asset {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = 20
	}

	perProvider := make([][]models.RawAsset, len(r.providers))
	var wg sync.WaitGroup
	for i, p := range r.providers {
		wg.Add(1)
		go func(i int, p drepo.Provider) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			raws, err := p.Search(pctx, query)
			if err != nil {
				r.log.Warn("provider search failed",
					logger.String("provider", p.ID()), logger.Error(err))
				r.metrics.RecordError("provider_search")
				return
			}
			perProvider[i] = raws
		}(i, p)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	out := make([]models.Asset, 0, limit)
	for _, raws := range perProvider {
		for _, raw := range raws {
			key := util.NormalizeQuery(raw.Symbol)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, toAsset(raw))
			if len(out) >= limit {
				return out
			}
		}
	}

	if len(out) == 0 {
		out = append(out, ManualAsset(query))
	}
	return out
}

// PopularAssets returns each category's top picks: top-by-volume for
// crypto, head-of-list for the reference buckets. n bounds every bucket
// separately, so a broad crypto universe never pushes equities, ETFs or
// futures out of the response.
func (r *Resolver) PopularAssets(ctx context.Context, n int) models.PopularAssets {
	if n <= 0 {
		n = 10
	}
	var out models.PopularAssets
	for _, p := range r.providers {
		var bucket *[]models.Asset
		switch p.ID() {
		case "binance":
			bucket = &out.Crypto
		case "equities":
			bucket = &out.Equities
		case "etfs":
			bucket = &out.ETFs
		case "futures":
			bucket = &out.Futures
		default:
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		raws, err := p.Popular(pctx, n)
		cancel()
		if err != nil {
			r.log.Warn("provider popular failed",
				logger.String("provider", p.ID()), logger.Error(err))
			continue
		}
		assets := make([]models.Asset, 0, len(raws))
		for _, raw := range raws {
			assets = append(assets, toAsset(raw))
		}
		*bucket = assets
	}
	return out
}

// AssetCounts aggregates per-category instrument totals across providers.
func (r *Resolver) AssetCounts(ctx context.Context) models.AssetCounts {
	var c models.AssetCounts
	for _, p := range r.providers {
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		n := p.Count(pctx)
		cancel()
		switch p.ID() {
		case "binance":
			c.Crypto += n
		case "equities":
			c.Equities += n
		case "etfs":
			c.ETFs += n
		case "futures":
			c.Futures += n
		}
	}
	c.Total = c.Crypto + c.Equities + c.ETFs + c.Futures
	return c
}

// ManualAsset synthesizes a descriptor from raw operator input. The
// category is guessed from the symbol shape; provenance marks it as
// unverified.
func ManualAsset(input string) models.Asset {
	sym := util.NormalizeQuery(input)
	return models.Asset{
		ID:          sym,
		DisplayName: sym,
		Category:    ClassifySymbol(sym),
		Provenance:  models.ProvenanceManual,
	}
}

// ClassifySymbol guesses a category from symbol shape alone. Used only
// for manual entries where no provider vouched for the symbol.
func ClassifySymbol(sym string) models.Category {
	switch {
	case strings.HasSuffix(sym, "USDT") || strings.HasSuffix(sym, "BTC") ||
		strings.HasSuffix(sym, "ETH") || strings.HasSuffix(sym, "PERP"):
		return models.CategoryCrypto
	case strings.HasPrefix(sym, "XAU") || strings.HasPrefix(sym, "XAG") ||
		strings.HasPrefix(sym, "XPT"):
		return models.CategoryFuture
	case len(sym) == 6 && isForexPair(sym):
		return models.CategoryFuture
	default:
		return models.CategoryCustom
	}
}

var forexCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "CHF": {},
	"AUD": {}, "CAD": {}, "NZD": {}, "SGD": {}, "HKD": {},
}

func isForexPair(sym string) bool {
	_, a := forexCurrencies[sym[:3]]
	_, b := forexCurrencies[sym[3:]]
	return a && b
}

func toAsset(raw models.RawAsset) models.Asset {
	a := models.Asset{
		ID:          raw.Symbol,
		DisplayName: raw.DisplayName,
		Category:    raw.Category,
		Provenance:  raw.Provider,
	}
	if raw.HasQuote {
		price := raw.Price
		change := raw.ChangePct
		a.Price = &price
		a.Change24h = &change
		a.Volume = util.FormatMagnitude(raw.QuoteVolume)
	}
	return a
}
