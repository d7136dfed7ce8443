package inventory

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/durable/temporal/sequences"
)

const (
	// StockOptimizationWorkflowName is the public identifier for registering the workflow.
	StockOptimizationWorkflowName = "inventory.workflows.StockOptimization"
	// StockOptimizationTaskQueue is the queue consumed by the inventory worker.
	StockOptimizationTaskQueue = "STOCK_OPTIMIZATION"
)

// StockOptimizationWorkflowInput names the product to reconcile.
type StockOptimizationWorkflowInput struct {
	ProductName string
	TraceID     string
}

// StockOptimizationWorkflow reconciles a product's stock level against its demand forecast.
func StockOptimizationWorkflow(ctx workflow.Context, input StockOptimizationWorkflowInput) (*domain.OptimizationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("StockOptimizationWorkflow started", withTraceID(input.TraceID, "productName", input.ProductName)...)
	result, err := sequences.RunStockOptimizationSequence(ctx, input.ProductName)
	if err != nil {
		logger.Error("StockOptimizationWorkflow failed", withTraceID(input.TraceID, "productName", input.ProductName, "error", err)...)
		return nil, err
	}
	logger.Info("StockOptimizationWorkflow completed", withTraceID(input.TraceID, "productName", input.ProductName, "outcome", string(result.Outcome))...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
