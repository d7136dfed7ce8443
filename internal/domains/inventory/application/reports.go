package application

import (
	"context"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

// TotalInventoryValue sums price * stock over every item; zero when empty.
func (s *Service) TotalInventoryValue(ctx context.Context) (float64, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	var total float64
	for _, item := range items {
		total += item.Value()
	}
	return total, nil
}

// ItemsNeedingReorder lists items at or below their reorder threshold.
func (s *Service) ItemsNeedingReorder(ctx context.Context) ([]*domain.Item, error) {
	return s.filter(ctx, (*domain.Item).NeedsReorder)
}

// ItemsNearingExpiration lists items whose life expectancy falls before now + months.
func (s *Service) ItemsNearingExpiration(ctx context.Context, months int) ([]*domain.Item, error) {
	if months <= 0 {
		return nil, mapError(domain.ErrInvalidHorizon)
	}
	cutoff := domain.ExpirationCutoff(s.now(), months)
	return s.filter(ctx, func(item *domain.Item) bool { return item.ExpiresBefore(cutoff) })
}
