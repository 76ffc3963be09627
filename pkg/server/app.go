package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "SignalHub/internal/domain/repository"
	"SignalHub/internal/usecase"
	pkgcache "SignalHub/pkg/cache"
	pkgch "SignalHub/pkg/clickhouse"
	"SignalHub/pkg/config"
	xhttp "SignalHub/pkg/http"
	pkgkafka "SignalHub/pkg/kafka"
	applogger "SignalHub/pkg/logger"
	"SignalHub/pkg/queue"
)

// App encapsulates the entire application lifecycle. Optional pieces
// (collector, consumer, queue, Redis, ClickHouse) arrive nil when their
// config section is off and are skipped on start and shutdown.
type App struct {
	cfg           *config.Config
	log           *applogger.Logger
	handlers      []xhttp.Handler
	httpServer    *xhttp.Server
	collector     *usecase.QuoteCollector
	consumer      *pkgkafka.Consumer
	eventsHandler *usecase.SignalEventsHandler
	queue         *queue.RedisQueue
	store         drepo.SignalStore
	events        drepo.EventPublisher
	redis         *pkgcache.RedisCache
	chClient      *pkgch.Client
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handlers []xhttp.Handler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	eventsHandler *usecase.SignalEventsHandler,
	q *queue.RedisQueue,
	store drepo.SignalStore,
	events drepo.EventPublisher,
	redis *pkgcache.RedisCache,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:           cfg,
		log:           log,
		handlers:      handlers,
		collector:     collector,
		consumer:      consumer,
		eventsHandler: eventsHandler,
		queue:         q,
		store:         store,
		events:        events,
		redis:         redis,
		chClient:      chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.log, a.handlers,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.queue != nil {
		a.queue.Start()
		a.log.Info("dispatch queue started")
	}

	if a.consumer != nil && a.eventsHandler != nil {
		a.consumer.RegisterHandler(a.eventsHandler)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("audit consumer started", applogger.String("topic", a.eventsHandler.Topic()))
	}

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("quote collector error", applogger.Error(err))
			}
		}()
		a.log.Info("quote collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	// Drain the delivery queue before closing its Redis client.
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("dispatch queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("signal store close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
