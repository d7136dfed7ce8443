package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	forecastclient "github.com/Abka012/Odin-AI/internal/clients/http/forecast"
	invalerts "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/alerts"
	invforecast "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/external/forecast"
	invmemory "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/memory"
	invobs "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/observability"
	invpostgres "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/persistence/postgres"
	invredis "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/persistence/redis"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
	platformobservability "github.com/Abka012/Odin-AI/internal/platform/observability"
	platformpostgres "github.com/Abka012/Odin-AI/internal/platform/postgres"
	platformredis "github.com/Abka012/Odin-AI/internal/platform/redis"
)

// Components holds the inventory collaborators shared by the API and worker processes.
type Components struct {
	// Service is the decorated service handed to transports and activities.
	Service ports.Service
	// StoreBackend names the store actually in use after any fallback.
	StoreBackend string
	closers      []func()
}

// Close releases store connections and flushes the alert writer.
func (c *Components) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// BuildComponents wires store, forecast client, and alert publishers into the inventory service.
func BuildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, error) {
	logger := effectiveLogger(instruments)
	components := &Components{}

	repo, backend, closeRepo := buildRepository(ctx, cfg, logger)
	components.StoreBackend = backend
	components.closers = append(components.closers, closeRepo)

	forecast, err := buildForecastClient(cfg, logger)
	if err != nil {
		components.Close()
		return nil, err
	}

	publisher, closeAlerts := buildAlertPublisher(cfg, logger)
	components.closers = append(components.closers, closeAlerts)

	core := application.NewService(repo, forecast,
		application.WithLogger(logger),
		application.WithAlertPublisher(publisher),
		application.WithForecastTimeout(cfg.ForecastTimeout),
	)
	components.Service = invobs.New(core,
		invobs.WithLogger(logger),
		invobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		invobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)
	return components, nil
}

func buildRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Repository, string, func()) {
	switch cfg.StoreBackend {
	case StorePostgres:
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
			break
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
			break
		}
		logger.Info("item store configured with postgres")
		return invpostgres.NewRepository(db), StorePostgres, func() { _ = sqlDB.Close() }
	case StoreRedis:
		rdb, err := platformredis.Connect(ctx, platformredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn("failed to connect to redis, falling back to memory", slog.String("error", err.Error()))
			break
		}
		logger.Info("item store configured with redis", slog.String("addr", cfg.RedisAddr))
		return invredis.NewRepository(rdb), StoreRedis, func() { _ = rdb.Close() }
	}
	if cfg.StoreBackend == StoreMemory || cfg.StoreBackend == "" {
		logger.Warn("no persistent store configured, using in-memory item store")
	}
	return invmemory.NewRepository(), StoreMemory, func() {}
}

// insightsCacheSize covers every report kind with room to spare.
const insightsCacheSize = 16

func buildForecastClient(cfg Config, logger *slog.Logger) (ports.ForecastClient, error) {
	timeout := cfg.ForecastTimeout
	if timeout <= 0 {
		timeout = forecastclient.DefaultTimeout
	}
	client, err := forecastclient.NewClient(cfg.ForecastBaseURL, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	logger.Info("forecast client configured",
		slog.String("baseURL", cfg.ForecastBaseURL),
		slog.Duration("timeout", timeout),
		slog.Duration("insightsCacheTTL", cfg.InsightsCacheTTL),
	)
	return invforecast.NewAdapter(client, logger, invforecast.WithInsightsCache(insightsCacheSize, cfg.InsightsCacheTTL)), nil
}

func buildAlertPublisher(cfg Config, logger *slog.Logger) (ports.AlertPublisher, func()) {
	publishers := invalerts.Fanout{invalerts.NewLogPublisher(logger)}
	if len(cfg.KafkaBrokers) == 0 {
		return publishers, func() {}
	}
	writer := invalerts.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAlertsTopic)
	publishers = append(publishers, invalerts.NewKafkaPublisher(writer))
	logger.Info("kafka alert publisher configured", slog.String("topic", writer.Topic))
	return publishers, func() {
		if err := writer.Close(); err != nil {
			logger.Warn("failed to close kafka alert writer", slog.String("error", err.Error()))
		}
	}
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
