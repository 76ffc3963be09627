package providers

import (
	"context"
	"strings"

	"SignalHub/internal/domain/models"
)

// refEntry is one instrument in a bundled reference list.
type refEntry struct {
	Symbol string
	Name   string
}

// Static serves a fixed reference list for markets without a free
// metadata API. Lists ship with the binary; no network, no cache, no
// quote data.
type Static struct {
	id       string
	category models.Category
	entries  []refEntry
}

func newStatic(id string, category models.Category, entries []refEntry) *Static {
	return &Static{id: id, category: category, entries: entries}
}

// NewEquities returns the bundled large-cap equity list.
func NewEquities() *Static {
	return newStatic("equities", models.CategoryEquity, equityList)
}

// NewETFs returns the bundled ETF list.
func NewETFs() *Static {
	return newStatic("etfs", models.CategoryETF, etfList)
}

// NewFutures returns the bundled futures, metals, forex and index list.
func NewFutures() *Static {
	return newStatic("futures", models.CategoryFuture, futureList)
}

func (s *Static) ID() string { return s.id }

// Search matches on symbol prefix and name substring, case-insensitive.
func (s *Static) Search(ctx context.Context, query string) ([]models.RawAsset, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	var out []models.RawAsset
	for _, e := range s.entries {
		if strings.HasPrefix(e.Symbol, q) || strings.Contains(strings.ToUpper(e.Name), q) {
			out = append(out, s.toRaw(e))
		}
	}
	return out, nil
}

// Quote is unsupported; static lists carry no market data.
func (s *Static) Quote(ctx context.Context, symbol string) (*models.RawQuote, error) {
	return nil, nil
}

// Popular returns the head of the list, which is ordered by prominence.
func (s *Static) Popular(ctx context.Context, n int) ([]models.RawAsset, error) {
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]models.RawAsset, 0, n)
	for _, e := range s.entries[:n] {
		out = append(out, s.toRaw(e))
	}
	return out, nil
}

func (s *Static) Count(ctx context.Context) int { return len(s.entries) }

func (s *Static) toRaw(e refEntry) models.RawAsset {
	return models.RawAsset{
		Symbol:      e.Symbol,
		DisplayName: e.Symbol + " " + e.Name,
		Category:    s.category,
		Provider:    s.id,
	}
}

var equityList = []refEntry{
	{"AAPL", "Apple Inc."},
	{"MSFT", "Microsoft Corporation"},
	{"GOOGL", "Alphabet Inc."},
	{"AMZN", "Amazon.com Inc."},
	{"NVDA", "NVIDIA Corporation"},
	{"META", "Meta Platforms Inc."},
	{"TSLA", "Tesla Inc."},
	{"BRK.B", "Berkshire Hathaway Inc."},
	{"JPM", "JPMorgan Chase & Co."},
	{"V", "Visa Inc."},
	{"UNH", "UnitedHealth Group Inc."},
	{"XOM", "Exxon Mobil Corporation"},
	{"JNJ", "Johnson & Johnson"},
	{"WMT", "Walmart Inc."},
	{"MA", "Mastercard Incorporated"},
	{"PG", "Procter & Gamble Company"},
	{"HD", "Home Depot Inc."},
	{"AVGO", "Broadcom Inc."},
	{"CVX", "Chevron Corporation"},
	{"MRK", "Merck & Co. Inc."},
	{"ABBV", "AbbVie Inc."},
	{"KO", "Coca-Cola Company"},
	{"PEP", "PepsiCo Inc."},
	{"COST", "Costco Wholesale Corporation"},
	{"ADBE", "Adobe Inc."},
	{"MCD", "McDonald's Corporation"},
	{"CSCO", "Cisco Systems Inc."},
	{"CRM", "Salesforce Inc."},
	{"BAC", "Bank of America Corporation"},
	{"NFLX", "Netflix Inc."},
	{"AMD", "Advanced Micro Devices Inc."},
	{"INTC", "Intel Corporation"},
	{"ORCL", "Oracle Corporation"},
	{"DIS", "Walt Disney Company"},
	{"NKE", "Nike Inc."},
	{"PFE", "Pfizer Inc."},
	{"TMO", "Thermo Fisher Scientific Inc."},
	{"ABT", "Abbott Laboratories"},
	{"QCOM", "QUALCOMM Incorporated"},
	{"IBM", "International Business Machines"},
	{"GE", "General Electric Company"},
	{"CAT", "Caterpillar Inc."},
	{"BA", "Boeing Company"},
	{"GS", "Goldman Sachs Group Inc."},
	{"MS", "Morgan Stanley"},
	{"UBER", "Uber Technologies Inc."},
	{"PYPL", "PayPal Holdings Inc."},
	{"SHOP", "Shopify Inc."},
	{"SQ", "Block Inc."},
	{"COIN", "Coinbase Global Inc."},
}

var etfList = []refEntry{
	{"SPY", "SPDR S&P 500 ETF Trust"},
	{"QQQ", "Invesco QQQ Trust"},
	{"IWM", "iShares Russell 2000 ETF"},
	{"DIA", "SPDR Dow Jones Industrial Average ETF"},
	{"VTI", "Vanguard Total Stock Market ETF"},
	{"VOO", "Vanguard S&P 500 ETF"},
	{"EEM", "iShares MSCI Emerging Markets ETF"},
	{"EFA", "iShares MSCI EAFE ETF"},
	{"GLD", "SPDR Gold Shares"},
	{"SLV", "iShares Silver Trust"},
	{"USO", "United States Oil Fund"},
	{"XLF", "Financial Select Sector SPDR Fund"},
	{"XLE", "Energy Select Sector SPDR Fund"},
	{"XLK", "Technology Select Sector SPDR Fund"},
	{"XLV", "Health Care Select Sector SPDR Fund"},
	{"XLI", "Industrial Select Sector SPDR Fund"},
	{"ARKK", "ARK Innovation ETF"},
	{"SMH", "VanEck Semiconductor ETF"},
	{"TLT", "iShares 20+ Year Treasury Bond ETF"},
	{"HYG", "iShares iBoxx High Yield Corporate Bond ETF"},
	{"LQD", "iShares iBoxx Investment Grade Corporate Bond ETF"},
	{"VNQ", "Vanguard Real Estate ETF"},
	{"GDX", "VanEck Gold Miners ETF"},
	{"IBIT", "iShares Bitcoin Trust"},
	{"SOXL", "Direxion Daily Semiconductor Bull 3X"},
}

var futureList = []refEntry{
	{"XAUUSD", "Gold Spot"},
	{"XAGUSD", "Silver Spot"},
	{"EURUSD", "Euro / US Dollar"},
	{"GBPUSD", "British Pound / US Dollar"},
	{"USDJPY", "US Dollar / Japanese Yen"},
	{"AUDUSD", "Australian Dollar / US Dollar"},
	{"USDCAD", "US Dollar / Canadian Dollar"},
	{"USDCHF", "US Dollar / Swiss Franc"},
	{"NZDUSD", "New Zealand Dollar / US Dollar"},
	{"EURGBP", "Euro / British Pound"},
	{"EURJPY", "Euro / Japanese Yen"},
	{"GBPJPY", "British Pound / Japanese Yen"},
	{"US30", "Dow Jones Industrial Average Index"},
	{"US500", "S&P 500 Index"},
	{"NAS100", "Nasdaq 100 Index"},
	{"US2000", "Russell 2000 Index"},
	{"GER40", "DAX 40 Index"},
	{"UK100", "FTSE 100 Index"},
	{"JPN225", "Nikkei 225 Index"},
	{"HK50", "Hang Seng Index"},
	{"USOIL", "WTI Crude Oil"},
	{"UKOIL", "Brent Crude Oil"},
	{"NATGAS", "Natural Gas"},
	{"COPPER", "Copper"},
	{"XPTUSD", "Platinum Spot"},
	{"DXY", "US Dollar Index"},
}
