package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	forecastclient "github.com/Abka012/Odin-AI/internal/clients/http/forecast"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

var _ ports.ForecastClient = (*Adapter)(nil)

// Adapter implements the forecast port on top of the HTTP client.
// Demand predictions are never cached; report rows may be.
type Adapter struct {
	client   *forecastclient.Client
	logger   *slog.Logger
	insights *expirable.LRU[ports.InsightKind, []map[string]any]
}

// Option configures the adapter.
type Option func(*Adapter)

// WithInsightsCache keeps successful report responses for ttl. A non-positive ttl disables caching.
func WithInsightsCache(size int, ttl time.Duration) Option {
	return func(a *Adapter) {
		if size <= 0 || ttl <= 0 {
			a.insights = nil
			return
		}
		a.insights = expirable.NewLRU[ports.InsightKind, []map[string]any](size, nil, ttl)
	}
}

// NewAdapter wires an HTTP forecast client into the port.
func NewAdapter(client *forecastclient.Client, logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{client: client, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Forecast returns the forecasted demand. Every failure wraps ports.ErrForecastFailed.
func (a *Adapter) Forecast(ctx context.Context, productName string) (float64, error) {
	if a == nil || a.client == nil {
		return 0, fmt.Errorf("%w: client not configured", ports.ErrForecastFailed)
	}
	demand, err := a.client.Predict(ctx, productName)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrForecastFailed, err)
	}
	return demand, nil
}

// Insights returns report rows, or an empty slice when the service cannot answer.
func (a *Adapter) Insights(ctx context.Context, kind ports.InsightKind) []map[string]any {
	if a == nil || a.client == nil {
		return []map[string]any{}
	}
	if a.insights != nil {
		if rows, ok := a.insights.Get(kind); ok {
			return rows
		}
	}
	rows, err := a.client.Report(ctx, string(kind))
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		a.logger.LogAttrs(ctx, level, "forecast insight unavailable",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return []map[string]any{}
	}
	if a.insights != nil {
		a.insights.Add(kind, rows)
	}
	return rows
}
