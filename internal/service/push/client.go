package push

import (
	"context"
	"fmt"
	"time"

	"SignalHub/internal/domain/repository"
	"SignalHub/pkg/http"
	"SignalHub/pkg/logger"
)

// Config holds the push gateway client settings.
type Config struct {
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// Client talks to the external push gateway. The gateway owns device
// tokens and plan entitlements; this side only says who and what.
type Client struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

func New(cfg Config, log *logger.Logger) repository.Pusher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: http.NewClient(http.WithTimeout(cfg.Timeout)),
		log:    log,
	}
}

type broadcastRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type sendRequest struct {
	PrincipalID string            `json:"principal_id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

type deliveryResponse struct {
	Delivered int  `json:"delivered"`
	Accepted  bool `json:"accepted"`
}

// Broadcast pushes to every registered device and returns the gateway's
// delivered count.
func (c *Client) Broadcast(ctx context.Context, title, body string, data map[string]string) (int, error) {
	var resp deliveryResponse
	err := c.client.SendAndParse(ctx, &http.RequestOptions{
		Method:  "POST",
		URL:     c.cfg.GatewayURL + "/v1/broadcast",
		Headers: c.headers(),
		Body:    broadcastRequest{Title: title, Body: body, Data: data},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("push broadcast: %w", err)
	}
	return resp.Delivered, nil
}

// SendToPrincipal pushes to one principal's devices. A false return with
// nil error means the gateway knows the principal but has no reachable
// device for them.
func (c *Client) SendToPrincipal(ctx context.Context, principalID, title, body string, data map[string]string) (bool, error) {
	var resp deliveryResponse
	err := c.client.SendAndParse(ctx, &http.RequestOptions{
		Method:  "POST",
		URL:     c.cfg.GatewayURL + "/v1/send",
		Headers: c.headers(),
		Body:    sendRequest{PrincipalID: principalID, Title: title, Body: body, Data: data},
	}, &resp)
	if err != nil {
		return false, fmt.Errorf("push send: %w", err)
	}
	return resp.Accepted, nil
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.cfg.APIKey != "" {
		h["X-API-Key"] = c.cfg.APIKey
	}
	return h
}
