package models

import "github.com/shopspring/decimal"

// Category classifies a resolved market instrument.
type Category string

const (
	CategoryEquity Category = "equity"
	CategoryETF    Category = "etf"
	CategoryFuture Category = "future" // futures and indices
	CategoryCrypto Category = "crypto"
	CategoryCustom Category = "custom" // operator-typed symbol with no provider match
)

// ProvenanceManual marks descriptors synthesized from raw operator input.
const ProvenanceManual = "manual"

// Asset is a resolved, displayable instrument. Built per search call,
// never persisted; provider payloads behind it are cached transiently.
type Asset struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Category    Category `json:"category"`
	Provenance  string   `json:"provenance"`

	// Optional live snapshot.
	Price     *decimal.Decimal `json:"price,omitempty"`
	Change24h *float64         `json:"change_24h,omitempty"`
	Volume    string           `json:"volume,omitempty"` // human magnitude, e.g. "24M"
}

// RawAsset is a normalized provider search record. Classification and
// display formatting happen in the resolver, not in provider clients.
type RawAsset struct {
	Symbol      string // canonical id within the provider namespace
	DisplayName string
	Category    Category
	Provider    string

	Price       decimal.Decimal
	ChangePct   float64
	QuoteVolume float64
	HasQuote    bool
}

// RawQuote is a normalized provider quote record.
type RawQuote struct {
	Symbol      string
	Price       decimal.Decimal
	ChangePct   float64
	QuoteVolume float64
}

// PopularAssets groups each category's top picks. Buckets are sized
// independently so one large universe cannot crowd out the others.
type PopularAssets struct {
	Crypto   []Asset `json:"crypto"`
	Equities []Asset `json:"equities"`
	ETFs     []Asset `json:"etfs"`
	Futures  []Asset `json:"futures"`
}

// AssetCounts aggregates per-category instrument counts.
type AssetCounts struct {
	Crypto   int `json:"crypto"`
	Equities int `json:"equities"`
	ETFs     int `json:"etfs"`
	Futures  int `json:"futures"`
	Total    int `json:"total"`
}
