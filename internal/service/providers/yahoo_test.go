package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalHub/internal/domain/models"
	"SignalHub/internal/service/ratelimit"
	xhttp "SignalHub/pkg/http"
	"SignalHub/pkg/logger"
)

const yahooSearchBody = `{
	"quotes": [
		{"symbol": "MSTR", "shortname": "MicroStrategy", "longname": "MicroStrategy Incorporated", "quoteType": "EQUITY"},
		{"symbol": "GC=F", "shortname": "Gold", "quoteType": "FUTURE"},
		{"symbol": "", "shortname": "junk row"}
	]
}`

func newTestYahoo(baseURL string) *Yahoo {
	cfg := YahooConfig{
		BaseURL:      baseURL,
		SearchTTL:    time.Minute,
		RateCapacity: 100,
		RatePerSec:   100,
	}
	return NewYahoo(cfg, xhttp.NewClient(), ratelimit.New(), logger.Nop(), nopMetrics{})
}

func TestYahooSearchNormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "microstrategy", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(yahooSearchBody))
	}))
	defer srv.Close()

	out, err := newTestYahoo(srv.URL).Search(context.Background(), "microstrategy")
	require.NoError(t, err)
	require.Len(t, out, 2, "rows without a symbol are dropped")

	assert.Equal(t, "MSTR", out[0].Symbol)
	assert.Equal(t, "MSTR MicroStrategy Incorporated", out[0].DisplayName)
	assert.Equal(t, models.CategoryEquity, out[0].Category)
	assert.Equal(t, "yahoo", out[0].Provider)

	assert.Equal(t, "GC=F", out[1].Symbol)
	assert.Equal(t, models.CategoryFuture, out[1].Category)
}

func TestYahooSearchCachesPerQuery(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(yahooSearchBody))
	}))
	defer srv.Close()

	y := newTestYahoo(srv.URL)
	ctx := context.Background()

	_, err := y.Search(ctx, "MSTR")
	require.NoError(t, err)
	_, err = y.Search(ctx, "mstr") // same query after normalization
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestYahooSearchDegradesToEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	out, err := newTestYahoo(srv.URL).Search(context.Background(), "anything")
	require.NoError(t, err, "provider failures never propagate")
	assert.Empty(t, out)
}
