//go:build wireinject
// +build wireinject

package di

import (
	"SignalHub/pkg/config"
	"SignalHub/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Resolution chain
		ProvideLimiter,
		ProvideHTTPClient,
		ProvideBinance,
		ProvideProviders,
		ProvideResolver,

		// Storage
		ProvideRedisCache,
		ProvideMirror,
		ProvideSubscribers,
		ProvideSignalStore,

		// Event pipeline
		ProvideKafkaProducer,
		ProvideEventPublisher,
		ProvideClickHouseClient,
		ProvideEventLog,
		ProvideEventsHandler,
		ProvideKafkaConsumer,

		// Dispatch
		ProvidePusher,
		ProvideAuthorizer,
		ProvideQueue,
		ProvideDispatcher,

		// Use cases
		ProvideSignalService,
		ProvideQuoteCollector,

		// Application server
		ProvideHandlers,
		ProvideApp,
	)
	return &server.App{}, nil
}
