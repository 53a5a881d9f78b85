//go:build wireinject
// +build wireinject

package di

import (
	"HostPulse/pkg/config"
	"HostPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCacheService,
		ProvideSnapshotCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaConsumer,

		// Backoffice collaborators
		ProvideDashboardSource,
		ProvidePricingClient,
		ProvidePriceSource,
		ProvideEventSource,
		ProvideHistoryStore,
		ProvideTokenVerifier,

		// Pricing
		ProvideFactorProvider,
		ProvidePricingEngine,

		// Realtime
		ProvideRegistry,
		ProvideTransport,
		ProvideActivityFeed,
		ProvideDashboardAggregator,
		ProvideScheduler,
		ProvideActivityHandler,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
