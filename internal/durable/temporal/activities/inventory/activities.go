package inventory

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

const (
	// OptimizeStockActivityName reconciles one product's stock against its forecast.
	OptimizeStockActivityName = "inventory.activities.OptimizeStock"
	// WriteConflictErrorType tags a lost conditional write. Temporal retries it.
	WriteConflictErrorType = "InventoryWriteConflict"
	// ForecastUnavailableErrorType tags a failed forecast service call.
	ForecastUnavailableErrorType = "InventoryForecastUnavailable"
	// ValidationErrorType tags rejected input.
	ValidationErrorType = "InventoryValidation"
	// nonRetryableErrorType tags failures that a retry cannot fix.
	nonRetryableErrorType = "InventoryNonRetryable"
)

// ErrorTypes maps application failure types back to their sentinel so callers
// outside the workflow can keep using errors.Is.
var ErrorTypes = map[string]error{
	WriteConflictErrorType:       application.ErrWriteConflict,
	ForecastUnavailableErrorType: application.ErrForecastUnavailable,
	ValidationErrorType:          application.ErrValidationFailed,
}

// Activities groups activities that operate on the inventory bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the inventory service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// OptimizeStock runs a single optimization attempt. Write conflicts are returned
// as retryable errors; everything else is final.
func (a *Activities) OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("optimize stock activity not initialized", "productName", productName)
		return nil, errors.New("optimize stock activity not initialized")
	}
	logger.Info("OptimizeStock activity started", "productName", productName, "attempt", activity.GetInfo(ctx).Attempt)
	result, err := a.service.OptimizeStock(ctx, productName)
	if err != nil {
		logger.Error("OptimizeStock activity failed", "productName", productName, "error", err)
		switch {
		case errors.Is(err, application.ErrWriteConflict):
			return nil, temporal.NewApplicationError(err.Error(), WriteConflictErrorType, err)
		case errors.Is(err, application.ErrForecastUnavailable):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ForecastUnavailableErrorType, err)
		case errors.Is(err, application.ErrValidationFailed):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ValidationErrorType, err)
		}
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), nonRetryableErrorType, err)
	}
	logger.Info("OptimizeStock activity completed", "productName", productName, "outcome", string(result.Outcome))
	return result, nil
}
