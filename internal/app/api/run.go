package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	inventoryserver "github.com/Abka012/Odin-AI/go"
	invworkflows "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/workflows"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
	platformmetrics "github.com/Abka012/Odin-AI/internal/platform/metrics"
	platformobservability "github.com/Abka012/Odin-AI/internal/platform/observability"
)

// ServiceName identifies the API process in traces and logs.
const ServiceName = "inventory-api"

// Run boots the inventory HTTP API with observability, stores, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, err := BuildComponents(ctx, cfg, instruments)
	if err != nil {
		return fmt.Errorf("failed to build inventory components: %w", err)
	}
	defer components.Close()

	workflows, closeWorkflows := selectWorkflows(components, logger, func() (client.Client, error) {
		return ConnectTemporalClient(cfg, instruments)
	})
	defer closeWorkflows()
	if _, ok := workflows.(*invworkflows.TemporalInventoryWorkflows); ok {
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(components, workflows, instruments)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inventory API listening", slog.String("addr", server.Addr), slog.String("store", components.StoreBackend))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("inventory API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down inventory API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown inventory API: %w", err)
	}
	return nil
}

// selectWorkflows runs stock optimization on Temporal only when the worker can see
// the same items, i.e. the store is shared. The in-memory store is private to this
// process, so it always optimizes inline.
func selectWorkflows(components *Components, logger *slog.Logger, dial func() (client.Client, error)) (ports.WorkflowOrchestrator, func()) {
	inline := invworkflows.NewInlineInventoryWorkflows(components.Service)
	if components.StoreBackend == StoreMemory {
		logger.Info("in-memory item store is not shared with the worker, running stock optimization inline")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, running stock optimization inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	return invworkflows.NewTemporalInventoryWorkflows(temporalClient), temporalClient.Close
}

// NewRouter assembles the gin engine with tracing, HTTP metrics, and the inventory routes.
func NewRouter(components *Components, workflows ports.WorkflowOrchestrator, instruments *platformobservability.Instruments) *gin.Engine {
	httpMetrics := platformmetrics.NewHTTP(instruments.PrometheusRegistry())

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(ServiceName, otelgin.WithTracerProvider(instruments.TracerProviderOrGlobal())),
		httpMetrics.Middleware(),
	)
	backend := components.StoreBackend
	return inventoryserver.NewRouterWithGinEngine(engine, inventoryserver.ApiHandleFunctions{
		InventoryAPI: inventoryserver.NewInventoryAPI(components.Service, workflows),
		Health: func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "store": backend})
		},
		Metrics: httpMetrics.Handler(),
	})
}
