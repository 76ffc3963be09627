package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, conns chan<- *websocket.Conn) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		// consume subscribe and ping frames so writes keep flowing
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		conns <- conn
	}))
}

func miniTickerFrame(symbol, close, open, volume string) map[string]interface{} {
	return map[string]interface{}{
		"e": "24hrMiniTicker", "s": symbol, "c": close, "o": open, "q": volume,
	}
}

func TestBinanceStreamSurvivesReconnect(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	srv := newStreamServer(t, conns)
	defer srv.Close()

	s := NewBinanceStream(StreamConfig{
		WebSocketURL:   "ws" + strings.TrimPrefix(srv.URL, "http"),
		Symbols:        []string{"BTCUSDT"},
		ReconnectDelay: 10 * time.Millisecond,
		PingInterval:   5 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Subscribe(ctx))
	assert.True(t, s.IsConnected())
	first := <-conns

	quotes, errs := s.Read(ctx)
	require.NoError(t, first.WriteJSON(miniTickerFrame("BTCUSDT", "64250.5", "64000", "1200000")))
	q := <-quotes
	require.NotNil(t, q)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("64250.5")))

	// server drops the connection; the read loop reports and closes
	_ = first.Close()
	<-errs

	require.NoError(t, s.Reconnect(ctx))
	second := <-conns

	quotes, _ = s.Read(ctx)
	require.NoError(t, second.WriteJSON(miniTickerFrame("ETHUSDT", "3100.25", "3000", "900000")))
	q = <-quotes
	require.NotNil(t, q)
	assert.Equal(t, "ETHUSDT", q.Symbol)

	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}

func TestParseMiniTicker(t *testing.T) {
	q, ok := parseMiniTicker([]byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"110","o":"100","q":"5000"}`))
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.InDelta(t, 10.0, q.ChangePct, 1e-9)
	assert.InDelta(t, 5000.0, q.QuoteVolume, 1e-9)

	_, ok = parseMiniTicker([]byte(`{"e":"trade","s":"BTCUSDT","c":"110"}`))
	assert.False(t, ok, "non-ticker events are ignored")

	_, ok = parseMiniTicker([]byte(`{broken`))
	assert.False(t, ok)
}
