package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// StreamConfig holds the Binance WebSocket settings.
type StreamConfig struct {
	WebSocketURL   string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// BinanceStream implements a QuoteStream backed by the Binance
// miniTicker WebSocket feed.
type BinanceStream struct {
	cfg StreamConfig

	mu        sync.Mutex
	conn      *websocket.Conn
	pingStop  chan struct{}
	connected bool
	nextID    int
}

// NewBinanceStream creates a QuoteStream for the configured symbols.
func NewBinanceStream(cfg StreamConfig) drepo.QuoteStream {
	return &BinanceStream{cfg: cfg}
}

// Connect establishes the WebSocket connection and starts a ping loop
// bound to it. The loop stops when the connection is closed or replaced.
func (c *BinanceStream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.WebSocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance stream connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	stop := make(chan struct{})
	c.pingStop = stop
	c.mu.Unlock()

	go c.pingLoop(conn, stop)
	return nil
}

func (c *BinanceStream) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	interval := c.cfg.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.conn == conn {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.mu.Unlock()
		}
	}
}

// Subscribe subscribes to miniTicker channels for configured symbols.
func (c *BinanceStream) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance stream not connected")
	}
	params := make([]string, 0, len(c.cfg.Symbols))
	for _, s := range c.cfg.Symbols {
		params = append(params, strings.ToLower(s)+"@miniTicker")
	}
	c.nextID++
	msg := map[string]interface{}{"method": "SUBSCRIBE", "params": params, "id": c.nextID}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

type miniTicker struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Open      string `json:"o"`
	Volume    string `json:"q"` // quote asset volume
}

// Read streams quote updates and errors from the current connection.
// The channels close when the connection breaks; callers Reconnect and
// call Read again for fresh ones.
func (c *BinanceStream) Read(ctx context.Context) (<-chan *models.RawQuote, <-chan error) {
	quotes := make(chan *models.RawQuote, 1024)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	go func() {
		defer close(quotes)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("binance stream conn nil")
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance stream read: %w", err)
					return
				}
				q, ok := parseMiniTicker(b)
				if !ok {
					continue
				}
				select {
				case quotes <- q:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return quotes, errs
}

func parseMiniTicker(b []byte) (*models.RawQuote, bool) {
	var m miniTicker
	if err := json.Unmarshal(b, &m); err != nil || m.EventType != "24hrMiniTicker" {
		return nil, false
	}
	price, err := decimal.NewFromString(m.Close)
	if err != nil {
		return nil, false
	}
	q := &models.RawQuote{Symbol: m.Symbol, Price: price}
	if open, err := decimal.NewFromString(m.Open); err == nil && !open.IsZero() {
		pct, _ := price.Sub(open).Div(open).Mul(decimal.NewFromInt(100)).Float64()
		q.ChangePct = pct
	}
	fmt.Sscanf(m.Volume, "%f", &q.QuoteVolume)
	return q, true
}

// Reconnect closes and reconnects.
func (c *BinanceStream) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.cfg.ReconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection and stops its ping loop.
func (c *BinanceStream) Close() error {
	c.mu.Lock()
	c.connected = false
	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *BinanceStream) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
