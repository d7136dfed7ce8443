package ports

import (
	"context"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

// WorkflowOrchestrator runs stock optimization either inline or as a durable workflow.
type WorkflowOrchestrator interface {
	OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error)
}
