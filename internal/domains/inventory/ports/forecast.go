package ports

import (
	"context"
	"errors"
)

// ErrForecastFailed is the single failure reported by forecast adapters.
var ErrForecastFailed = errors.New("forecast request failed")

// InsightKind names a pass-through report served by the forecast service.
type InsightKind string

const (
	InsightReorder           InsightKind = "reorder"
	InsightSupplierScorecard InsightKind = "supplier-scorecard"
	InsightExpirationAlerts  InsightKind = "expiration-alerts"
	InsightStockouts         InsightKind = "predict-stockouts"
)

// ValidInsightKind reports whether kind is one of the known reports.
func ValidInsightKind(kind InsightKind) bool {
	switch kind {
	case InsightReorder, InsightSupplierScorecard, InsightExpirationAlerts, InsightStockouts:
		return true
	default:
		return false
	}
}

// ForecastClient fetches demand estimates from the remote forecasting model.
type ForecastClient interface {
	Forecast(ctx context.Context, productName string) (float64, error)
	// Insights returns the raw report rows; failures yield an empty slice and no error.
	Insights(ctx context.Context, kind InsightKind) []map[string]any
}
