package usecase

import (
	"context"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	"SignalHub/internal/service/providers"
	"SignalHub/pkg/logger"
)

// QuoteCollector pumps live ticks from the market stream into the
// Binance provider's quote cache so searches see fresher prices than
// the REST refresh interval alone would give.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	binance *providers.Binance
	log     *logger.Logger
	metrics drepo.Metrics
}

func NewQuoteCollector(stream drepo.QuoteStream, binance *providers.Binance, log *logger.Logger, metrics drepo.Metrics) *QuoteCollector {
	return &QuoteCollector{stream: stream, binance: binance, log: log, metrics: metrics}
}

func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.RawQuote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.log.Warn("quote stream error", logger.Error(err))
				c.metrics.RecordError("stream")
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("quote stream reconnect failed", logger.Error(rerr))
					return
				}
				qCh, errCh = c.stream.Read(ctx)
			}
		case q := <-qCh:
			if q == nil {
				continue
			}
			c.binance.ApplyTick(q)
		}
	}
}

func (c *QuoteCollector) Stop() error { return c.stream.Close() }
