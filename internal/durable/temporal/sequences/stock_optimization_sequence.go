package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	invactivities "github.com/Abka012/Odin-AI/internal/durable/temporal/activities/inventory"
)

// RunStockOptimizationSequence executes the optimization activity with a retry
// policy that absorbs concurrent-write conflicts.
func RunStockOptimizationSequence(ctx workflow.Context, productName string) (*domain.OptimizationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("stock optimization sequence started", "productName", productName)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    200 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result domain.OptimizationResult
	err := workflow.ExecuteActivity(ctx, invactivities.OptimizeStockActivityName, productName).Get(ctx, &result)
	if err != nil {
		logger.Error("stock optimization sequence failed", "productName", productName, "error", err)
		return nil, err
	}
	logger.Info("stock optimization sequence completed", "productName", productName, "outcome", string(result.Outcome))
	return &result, nil
}
