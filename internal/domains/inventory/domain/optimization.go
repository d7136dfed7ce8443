package domain

import (
	"fmt"
	"time"
)

// OptimizationOutcome enumerates the results of reconciling stock against a forecast.
type OptimizationOutcome string

const (
	OutcomeForecastUnavailable OptimizationOutcome = "forecast_unavailable"
	OutcomeProductNotFound     OptimizationOutcome = "product_not_found"
	OutcomeOptimized           OptimizationOutcome = "optimized"
	OutcomeStockSufficient     OptimizationOutcome = "stock_sufficient"
)

// OptimizationResult reports what OptimizeStock decided. CurrentStock is the level
// before any change; Forecast is zero when the forecast was unavailable.
type OptimizationResult struct {
	ProductName  string
	Outcome      OptimizationOutcome
	CurrentStock float64
	Forecast     float64
	Item         *Item
}

// Message renders the result for display.
func (r OptimizationResult) Message() string {
	switch r.Outcome {
	case OutcomeForecastUnavailable:
		return "Failed to optimize stock: Could not fetch forecast"
	case OutcomeProductNotFound:
		return fmt.Sprintf("Product %s not found", r.ProductName)
	case OutcomeOptimized:
		return fmt.Sprintf("Stock optimized for %s to %g", r.ProductName, r.Forecast)
	case OutcomeStockSufficient:
		return fmt.Sprintf("Stock sufficient for %s (Current: %g, Forecast: %g)", r.ProductName, r.CurrentStock, r.Forecast)
	default:
		return string(r.Outcome)
	}
}

// AlertKind distinguishes inventory notifications.
type AlertKind string

const (
	AlertReorder    AlertKind = "reorder_needed"
	AlertExpiration AlertKind = "expiration_warning"
)

// Alert is a notification raised as a side effect of stock checks.
type Alert struct {
	Kind             AlertKind
	ItemID           string
	ProductName      string
	StockLevel       float64
	ReorderThreshold int
	ExpiresAt        *time.Time
}
