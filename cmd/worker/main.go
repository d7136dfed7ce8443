package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Abka012/Odin-AI/internal/app/api"
	invactivities "github.com/Abka012/Odin-AI/internal/durable/temporal/activities/inventory"
	invworkflows "github.com/Abka012/Odin-AI/internal/durable/temporal/workflows/inventory"
	platformobservability "github.com/Abka012/Odin-AI/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "inventory-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, err := api.BuildComponents(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build inventory components", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer components.Close()
	if components.StoreBackend == api.StoreMemory {
		logger.Warn("worker is using a private in-memory item store; the API optimizes inline in this mode")
	}
	inventoryActivities := invactivities.NewActivities(components.Service)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, invworkflows.StockOptimizationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(invworkflows.StockOptimizationWorkflow, workflow.RegisterOptions{Name: invworkflows.StockOptimizationWorkflowName})
	w.RegisterActivityWithOptions(inventoryActivities.OptimizeStock, activity.RegisterOptions{Name: invactivities.OptimizeStockActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", invworkflows.StockOptimizationTaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
		slog.String("store", components.StoreBackend),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
