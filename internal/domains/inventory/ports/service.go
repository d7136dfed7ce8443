package ports

import (
	"context"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

// AddResult reports whether AddOrMergeItem created a record or restocked one.
type AddResult struct {
	Item    *domain.Item
	Created bool
}

// Message is the user-facing summary of the add.
func (r AddResult) Message() string {
	if r.Created {
		return "New item added"
	}
	return "Item stock updated"
}

// Service exposes the inventory use cases to adapters (inbound/driving port).
type Service interface {
	AddOrMergeItem(ctx context.Context, candidate *domain.Item) (*AddResult, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, id string, replacement *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ReduceStock(ctx context.Context, id string, quantity float64) (*domain.Item, error)
	CheckReorderNeeded(ctx context.Context, id string) (bool, error)
	GetDemandForecast(ctx context.Context, productName string) (float64, error)
	OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error)
	TotalInventoryValue(ctx context.Context) (float64, error)
	ItemsNeedingReorder(ctx context.Context) ([]*domain.Item, error)
	ItemsNearingExpiration(ctx context.Context, months int) ([]*domain.Item, error)
	ForecastInsights(ctx context.Context, kind InsightKind) ([]map[string]any, error)
}
