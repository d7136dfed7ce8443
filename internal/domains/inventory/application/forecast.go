package application

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

// GetDemandForecast asks the forecast service for a demand estimate. Every failure,
// including a timeout or a non-finite or negative value, is ErrForecastUnavailable.
func (s *Service) GetDemandForecast(ctx context.Context, productName string) (float64, error) {
	if s.forecast == nil {
		return 0, ErrForecastUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.forecastTimeout)
	defer cancel()

	demand, err := s.forecast.Forecast(ctx, productName)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "forecast unavailable",
			slog.String("item.product_name", productName),
			slog.String("error", err.Error()))
		return 0, ErrForecastUnavailable
	}
	if math.IsNaN(demand) || math.IsInf(demand, 0) || demand < 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "forecast returned an unusable value",
			slog.String("item.product_name", productName),
			slog.Float64("forecast", demand))
		return 0, ErrForecastUnavailable
	}
	return demand, nil
}

// OptimizeStock raises the stock level of productName to the forecast demand when
// it is below it. The level is set to the forecast, not topped up by it.
func (s *Service) OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	result := &domain.OptimizationResult{ProductName: productName}
	demand, err := s.GetDemandForecast(ctx, productName)
	if err != nil {
		result.Outcome = domain.OutcomeForecastUnavailable
		return result, nil
	}
	result.Forecast = demand

	unlockName := s.locks.Lock(nameKey(productName))
	defer unlockName()

	found, err := s.repo.GetByName(ctx, productName)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			result.Outcome = domain.OutcomeProductNotFound
			return result, nil
		}
		return nil, mapError(err)
	}

	unlock := s.locks.Lock(idKey(found.ID))
	defer unlock()
	item, err := s.repo.GetByID(ctx, found.ID)
	if err == nil && item.ProductName != productName {
		err = ports.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			result.Outcome = domain.OutcomeProductNotFound
			return result, nil
		}
		return nil, mapError(err)
	}
	result.CurrentStock = item.StockLevel
	if item.StockLevel >= demand {
		result.Outcome = domain.OutcomeStockSufficient
		result.Item = item
		return result, nil
	}
	item.StockLevel = demand
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	result.Outcome = domain.OutcomeOptimized
	result.Item = saved
	return result, nil
}

// ForecastInsights passes a forecast-service report through unchanged. An
// unreachable or malformed report is an empty list.
func (s *Service) ForecastInsights(ctx context.Context, kind ports.InsightKind) ([]map[string]any, error) {
	if !ports.ValidInsightKind(kind) {
		return nil, invalidField("kind", "unknown report "+string(kind))
	}
	if s.forecast == nil {
		return []map[string]any{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.forecastTimeout)
	defer cancel()
	rows := s.forecast.Insights(ctx, kind)
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}
