package di

import (
	"context"
	"fmt"
	"time"

	drepo "SignalHub/internal/domain/repository"
	"SignalHub/internal/handler/api"
	internalrepo "SignalHub/internal/repository"
	"SignalHub/internal/service/auth"
	"SignalHub/internal/service/providers"
	"SignalHub/internal/service/push"
	"SignalHub/internal/service/ratelimit"
	"SignalHub/internal/usecase"
	pkgcache "SignalHub/pkg/cache"
	pkgch "SignalHub/pkg/clickhouse"
	"SignalHub/pkg/config"
	xhttp "SignalHub/pkg/http"
	pkgkafka "SignalHub/pkg/kafka"
	"SignalHub/pkg/logger"
	"SignalHub/pkg/metrics"
	"SignalHub/pkg/queue"
	"SignalHub/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideLimiter creates the shared provider rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPClient creates the outbound HTTP client for providers.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout))
}

// ProvideBinance creates the Binance provider.
func ProvideBinance(cfg *config.Config, client *xhttp.Client, limiter *ratelimit.Limiter, log *logger.Logger, m drepo.Metrics) *providers.Binance {
	return providers.NewBinance(providers.BinanceConfig{
		BaseURL:      cfg.Providers.Binance.BaseURL,
		MetadataTTL:  cfg.Providers.Binance.MetadataTTL,
		QuoteTTL:     cfg.Providers.Binance.QuoteTTL,
		RateCapacity: cfg.Providers.Binance.RateCapacity,
		RatePerSec:   cfg.Providers.Binance.RatePerSec,
	}, client, limiter, log, m)
}

// ProvideProviders assembles the resolver precedence chain. Binance
// first, then the bundled reference lists, Yahoo free-text last.
func ProvideProviders(cfg *config.Config, binance *providers.Binance, client *xhttp.Client, limiter *ratelimit.Limiter, log *logger.Logger, m drepo.Metrics) []drepo.Provider {
	yahoo := providers.NewYahoo(providers.YahooConfig{
		BaseURL:      cfg.Providers.Yahoo.BaseURL,
		SearchTTL:    cfg.Providers.Yahoo.SearchTTL,
		RateCapacity: cfg.Providers.Yahoo.RateCapacity,
		RatePerSec:   cfg.Providers.Yahoo.RatePerSec,
	}, client, limiter, log, m)

	return []drepo.Provider{
		binance,
		providers.NewEquities(),
		providers.NewETFs(),
		providers.NewFutures(),
		yahoo,
	}
}

// ProvideResolver creates the asset resolver.
func ProvideResolver(cfg *config.Config, chain []drepo.Provider, log *logger.Logger, m drepo.Metrics) *usecase.Resolver {
	return usecase.NewResolver(chain, cfg.Providers.Timeout, log, m)
}

// ProvideRedisCache creates the Redis client, nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
		pkgcache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, 5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideMirror creates the Redis signal mirror, nil without Redis.
func ProvideMirror(c *pkgcache.RedisCache) drepo.MirrorStore {
	if c == nil {
		return nil
	}
	return internalrepo.NewRedisMirror(c)
}

// ProvideSubscribers creates the follower directory: Redis when on,
// in-process otherwise.
func ProvideSubscribers(c *pkgcache.RedisCache) drepo.SubscriberDirectory {
	if c == nil {
		return internalrepo.NewMemorySubscribers()
	}
	return internalrepo.NewRedisSubscribers(c)
}

// ProvideSignalStore creates the primary signal store per config.
func ProvideSignalStore(cfg *config.Config) (drepo.SignalStore, error) {
	switch cfg.Store.Type {
	case "", "memory":
		return internalrepo.NewMemorySignalStore(), nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return internalrepo.NewPostgresSignalStore(ctx, cfg.Store.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// ProvideKafkaProducer creates a Kafka producer, nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the lifecycle event publisher.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideClickHouseClient creates the audit log client, nil when
// disabled. The schema is ensured on startup.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.EventLogSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideEventLog creates the ClickHouse audit sink.
func ProvideEventLog(client *pkgch.Client) drepo.EventLog {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseEventLog(client.DB(), "signal_events")
}

// ProvideEventsHandler registers the audit consumer handler.
func ProvideEventsHandler(cfg *config.Config, log drepo.EventLog, m drepo.Metrics) *usecase.SignalEventsHandler {
	if log == nil {
		return nil
	}
	return usecase.NewSignalEventsHandler(cfg.Kafka.EventsTopic, log, m)
}

// ProvideKafkaConsumer creates the audit consumer, nil when either side
// of the pipeline is off.
func ProvideKafkaConsumer(cfg *config.Config, eventLog drepo.EventLog) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || eventLog == nil {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvidePusher creates the push gateway client.
func ProvidePusher(cfg *config.Config, log *logger.Logger) drepo.Pusher {
	return push.New(push.Config{
		GatewayURL: cfg.Push.GatewayURL,
		APIKey:     cfg.Push.APIKey,
		Timeout:    cfg.Push.Timeout,
	}, log)
}

// ProvideAuthorizer creates the operator allowlist.
func ProvideAuthorizer(cfg *config.Config) drepo.Authorizer {
	return auth.New(cfg.Operators)
}

// ProvideQueue creates the Redis delivery queue, nil without Redis.
func ProvideQueue(c *pkgcache.RedisCache, cfg *config.Config, log *logger.Logger) *queue.RedisQueue {
	if c == nil {
		return nil
	}
	return queue.NewRedisQueue(c.Client(), c.Key("dispatch"), queue.Config{
		Workers:    cfg.Dispatch.Workers,
		RetryLimit: cfg.Dispatch.RetryLimit,
		RetryDelay: cfg.Dispatch.RetryDelay,
	}, log)
}

// ProvideDispatcher creates the notification dispatcher and binds the
// delivery queue when one exists.
func ProvideDispatcher(pusher drepo.Pusher, subs drepo.SubscriberDirectory, q *queue.RedisQueue, log *logger.Logger, m drepo.Metrics) *usecase.Dispatcher {
	d := usecase.NewDispatcher(pusher, subs, log, m)
	if q != nil {
		d.BindQueue(q)
	}
	return d
}

// ProvideSignalService creates the signal lifecycle use case.
func ProvideSignalService(
	store drepo.SignalStore,
	mirror drepo.MirrorStore,
	events drepo.EventPublisher,
	subs drepo.SubscriberDirectory,
	authz drepo.Authorizer,
	dispatch *usecase.Dispatcher,
	log *logger.Logger,
	m drepo.Metrics,
) *usecase.SignalService {
	return usecase.NewSignalService(store, mirror, events, subs, authz, dispatch, log, m)
}

// ProvideQuoteCollector creates the live quote collector, nil when the
// stream is off.
func ProvideQuoteCollector(cfg *config.Config, binance *providers.Binance, log *logger.Logger, m drepo.Metrics) *usecase.QuoteCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := providers.NewBinanceStream(providers.StreamConfig{
		WebSocketURL:   cfg.Stream.WebSocketURL,
		Symbols:        cfg.Stream.Symbols,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		PingInterval:   cfg.Stream.PingInterval,
	})
	return usecase.NewQuoteCollector(stream, binance, log, m)
}

// ProvideHandlers assembles the HTTP route handlers.
func ProvideHandlers(log *logger.Logger, resolver *usecase.Resolver, signals *usecase.SignalService) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewAssetsHandler(log, resolver),
		api.NewSignalsHandler(log, signals),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handlers []xhttp.Handler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	eventsHandler *usecase.SignalEventsHandler,
	q *queue.RedisQueue,
	store drepo.SignalStore,
	events drepo.EventPublisher,
	redis *pkgcache.RedisCache,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handlers, collector, consumer, eventsHandler, q, store, events, redis, chClient)
}
