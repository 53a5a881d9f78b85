package di

import (
	"context"
	"fmt"
	"time"

	domrepo "HostPulse/internal/domain/repository"
	domsvc "HostPulse/internal/domain/service"
	"HostPulse/internal/handler/api"
	"HostPulse/internal/realtime"
	internalrepo "HostPulse/internal/repository"
	icache "HostPulse/internal/service/cache"
	"HostPulse/internal/services/pricing"
	"HostPulse/internal/services/propdata"
	"HostPulse/internal/usecase"
	pkgcache "HostPulse/pkg/cache"
	pkgch "HostPulse/pkg/clickhouse"
	"HostPulse/pkg/config"
	xhttp "HostPulse/pkg/http"
	pkgkafka "HostPulse/pkg/kafka"
	applogger "HostPulse/pkg/logger"
	pkgmetrics "HostPulse/pkg/metrics"
	"HostPulse/pkg/server"
)

// ProvideLogger creates the structured application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return pkgmetrics.New()
}

// ProvideCacheService builds the report cache: layered Redis when enabled,
// in-process memory otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Redis.Enabled && cfg.Redis.Host != "" {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Redis.Host),
			pkgcache.WithRedisPort(cfg.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return pkgcache.NewLayeredCache(rc), nil
	}
	return pkgcache.NewMemoryCache(), nil
}

// ProvideSnapshotCache creates the in-process dashboard snapshot cache.
func ProvideSnapshotCache() *icache.SnapshotCache {
	return icache.NewSnapshotCache()
}

// ProvideClickHouseClient creates a ClickHouse client when the history
// backend requires it. Returns nil for the HTTP backend.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Pricing.HistoryBackend != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.PerformanceSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideDashboardSource creates the backoffice dashboard client.
func ProvideDashboardSource(cfg *config.Config) domrepo.DashboardSource {
	return propdata.NewDashboardClient(cfg)
}

// ProvidePricingClient creates the backoffice pricing client.
func ProvidePricingClient(cfg *config.Config) *propdata.PricingClient {
	return propdata.NewPricingClient(cfg)
}

// ProvidePriceSource exposes the pricing client as the base/competitor
// price source.
func ProvidePriceSource(pc *propdata.PricingClient) domrepo.PriceSource {
	return pc
}

// ProvideEventSource exposes the pricing client as the local-event source.
func ProvideEventSource(pc *propdata.PricingClient) domrepo.EventSource {
	return pc
}

// ProvideHistoryStore selects the performance history backend.
func ProvideHistoryStore(cfg *config.Config, ch *pkgch.Client, pc *propdata.PricingClient, l *applogger.Logger) domrepo.HistoryStore {
	if cfg.Pricing.HistoryBackend == "clickhouse" && ch != nil {
		store := internalrepo.NewCHHistoryStore(ch)
		store.SetLogger(l)
		return store
	}
	return pc
}

// ProvideTokenVerifier creates the identity-service token client.
func ProvideTokenVerifier(cfg *config.Config) domrepo.TokenVerifier {
	return propdata.NewTokenClient(cfg)
}

// ProvideFactorProvider creates the standard five-factor model.
func ProvideFactorProvider(prices domrepo.PriceSource, history domrepo.HistoryStore, events domrepo.EventSource, l *applogger.Logger) domsvc.FactorProvider {
	return pricing.NewStandardFactors(prices, history, events, l)
}

// ProvidePricingEngine creates the price recommendation engine.
func ProvidePricingEngine(prices domrepo.PriceSource, factors domsvc.FactorProvider, cache pkgcache.Service, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *pricing.Engine {
	return pricing.NewEngine(prices, factors, cache, cfg.Pricing.ReportTTL, m, l)
}

// ProvideRegistry creates the websocket connection registry.
func ProvideRegistry(verifier domrepo.TokenVerifier, m domrepo.Metrics, l *applogger.Logger) *realtime.Registry {
	return realtime.NewRegistry(verifier, m, l)
}

// ProvideTransport creates the websocket transport.
func ProvideTransport(registry *realtime.Registry, cfg *config.Config, l *applogger.Logger) *realtime.Transport {
	return realtime.NewTransport(registry, l, realtime.TransportOptions{
		SendBuffer:       cfg.Realtime.SendBuffer,
		WriteWait:        cfg.Realtime.WriteWait,
		PongWait:         cfg.Realtime.PongWait,
		MaxMessageSize:   cfg.Realtime.MaxMessageSize,
		MessageRateLimit: cfg.Realtime.MessageRateLimit,
	})
}

// ProvideActivityFeed creates the per-account activity ring.
func ProvideActivityFeed() *usecase.ActivityFeed {
	return usecase.NewActivityFeed(0)
}

// ProvideDashboardAggregator creates the snapshot aggregator.
func ProvideDashboardAggregator(source domrepo.DashboardSource, feed *usecase.ActivityFeed, cache *icache.SnapshotCache, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *usecase.DashboardAggregator {
	return usecase.NewDashboardAggregator(source, feed, cache, cfg.Pricing.DashboardTTL, m, l)
}

// ProvideScheduler creates the periodic broadcast scheduler.
func ProvideScheduler(registry *realtime.Registry, agg *usecase.DashboardAggregator, cfg *config.Config, l *applogger.Logger) *realtime.Scheduler {
	return realtime.NewScheduler(registry, agg, cfg.Realtime.BroadcastInterval, l)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
// Returns nil when no brokers are configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideActivityHandler registers the handler for the activity topic.
func ProvideActivityHandler(cfg *config.Config, feed *usecase.ActivityFeed, registry *realtime.Registry, m domrepo.Metrics, l *applogger.Logger) pkgkafka.MessageHandler {
	if cfg.Kafka.ActivityTopic == "" {
		return nil
	}
	return usecase.NewActivityHandler(cfg.Kafka.ActivityTopic, feed, registry, m, l)
}

// ProvideHTTPHandler composes the REST and websocket handlers.
func ProvideHTTPHandler(l *applogger.Logger, agg *usecase.DashboardAggregator, engine *pricing.Engine, registry *realtime.Registry, transport *realtime.Transport) xhttp.Handler {
	return api.NewRoutes(
		api.NewDashboardHandler(l, agg),
		api.NewPricingHandler(l, engine, registry),
		api.NewRealtimeHandler(l, transport),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	registry *realtime.Registry,
	scheduler *realtime.Scheduler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, registry, scheduler, consumer, kh, chClient, httpHandler)
}
