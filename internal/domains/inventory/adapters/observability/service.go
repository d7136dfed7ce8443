package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

const tracerName = "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core inventory service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) AddOrMergeItem(ctx context.Context, candidate *domain.Item) (*ports.AddResult, error) {
	name := ""
	if candidate != nil {
		name = candidate.ProductName
	}
	ctx, span := s.tracer.Start(ctx, "InventoryService.AddOrMergeItem", trace.WithAttributes(attribute.String("item.product_name", name)))
	defer span.End()

	s.logInfo(ctx, "adding item", slog.String("item.product_name", name))
	result, err := s.inner.AddOrMergeItem(ctx, candidate)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add item", slog.String("item.product_name", name))
	}
	span.SetAttributes(attribute.String("item.id", result.Item.ID), attribute.Bool("item.created", result.Created))
	s.metrics.recordAdded(ctx, result.Created)
	s.logInfo(ctx, result.Message(), slog.String("item.id", result.Item.ID), slog.Float64("item.stock_level", result.Item.StockLevel))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetByID", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load item", slog.String("item.id", id))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.List")
	defer span.End()

	result, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list items")
	}
	span.SetAttributes(attribute.Int("items.count", len(result)))
	return result, nil
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListByCategory", trace.WithAttributes(attribute.String("item.category", category)))
	defer span.End()

	result, err := s.inner.ListByCategory(ctx, category)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list items by category", slog.String("item.category", category))
	}
	span.SetAttributes(attribute.Int("items.count", len(result)))
	return result, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, replacement *domain.Item) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.UpdateItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating item", slog.String("item.id", id))
	result, err := s.inner.UpdateItem(ctx, id, replacement)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update item", slog.String("item.id", id))
	}
	s.logInfo(ctx, "item updated", slog.String("item.id", id), slog.Int64("item.version", result.Version))
	return result, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.DeleteItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting item", slog.String("item.id", id))
	if err := s.inner.DeleteItem(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete item", slog.String("item.id", id))
	}
	s.logInfo(ctx, "item deleted", slog.String("item.id", id))
	return nil
}

func (s *Service) ReduceStock(ctx context.Context, id string, quantity float64) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ReduceStock",
		trace.WithAttributes(attribute.String("item.id", id), attribute.Float64("stock.quantity", quantity)))
	defer span.End()

	result, err := s.inner.ReduceStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientStock) {
			s.metrics.recordInsufficient(ctx)
		}
		return nil, s.handleError(ctx, span, err, "failed to reduce stock", slog.String("item.id", id), slog.Float64("stock.quantity", quantity))
	}
	s.metrics.recordReduced(ctx)
	s.logInfo(ctx, "stock reduced", slog.String("item.id", id), slog.Float64("item.stock_level", result.StockLevel))
	return result, nil
}

func (s *Service) CheckReorderNeeded(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.CheckReorderNeeded", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	needed, err := s.inner.CheckReorderNeeded(ctx, id)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check reorder", slog.String("item.id", id))
	}
	span.SetAttributes(attribute.Bool("item.reorder_needed", needed))
	return needed, nil
}

func (s *Service) GetDemandForecast(ctx context.Context, productName string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetDemandForecast", trace.WithAttributes(attribute.String("item.product_name", productName)))
	defer span.End()

	demand, err := s.inner.GetDemandForecast(ctx, productName)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to fetch forecast", slog.String("item.product_name", productName))
	}
	span.SetAttributes(attribute.Float64("forecast.demand", demand))
	return demand, nil
}

func (s *Service) OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.OptimizeStock", trace.WithAttributes(attribute.String("item.product_name", productName)))
	defer span.End()

	s.logInfo(ctx, "optimizing stock", slog.String("item.product_name", productName))
	result, err := s.inner.OptimizeStock(ctx, productName)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to optimize stock", slog.String("item.product_name", productName))
	}
	span.SetAttributes(attribute.String("optimization.outcome", string(result.Outcome)))
	s.metrics.recordOptimization(ctx, result.Outcome)
	s.logInfo(ctx, result.Message(), slog.String("optimization.outcome", string(result.Outcome)))
	return result, nil
}

func (s *Service) TotalInventoryValue(ctx context.Context) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.TotalInventoryValue")
	defer span.End()

	total, err := s.inner.TotalInventoryValue(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to compute inventory value")
	}
	span.SetAttributes(attribute.Float64("inventory.value", total))
	return total, nil
}

func (s *Service) ItemsNeedingReorder(ctx context.Context) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ItemsNeedingReorder")
	defer span.End()

	result, err := s.inner.ItemsNeedingReorder(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list reorder items")
	}
	span.SetAttributes(attribute.Int("items.count", len(result)))
	return result, nil
}

func (s *Service) ItemsNearingExpiration(ctx context.Context, months int) ([]*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ItemsNearingExpiration", trace.WithAttributes(attribute.Int("horizon.months", months)))
	defer span.End()

	result, err := s.inner.ItemsNearingExpiration(ctx, months)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list expiring items", slog.Int("horizon.months", months))
	}
	span.SetAttributes(attribute.Int("items.count", len(result)))
	return result, nil
}

func (s *Service) ForecastInsights(ctx context.Context, kind ports.InsightKind) ([]map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ForecastInsights", trace.WithAttributes(attribute.String("insight.kind", string(kind))))
	defer span.End()

	rows, err := s.inner.ForecastInsights(ctx, kind)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to fetch insights", slog.String("insight.kind", string(kind)))
	}
	span.SetAttributes(attribute.Int("insight.rows", len(rows)))
	return rows, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	itemsAdded        metric.Int64Counter
	itemsRestocked    metric.Int64Counter
	stockReductions   metric.Int64Counter
	insufficientStock metric.Int64Counter
	optimizations     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsAdded, _ := m.Int64Counter("inventory.service.items_added", metric.WithDescription("Number of items created"))
	itemsRestocked, _ := m.Int64Counter("inventory.service.items_restocked", metric.WithDescription("Number of adds merged into an existing item"))
	stockReductions, _ := m.Int64Counter("inventory.service.stock_reductions", metric.WithDescription("Number of successful stock reductions"))
	insufficient, _ := m.Int64Counter("inventory.service.insufficient_stock", metric.WithDescription("Number of reductions rejected for insufficient stock"))
	optimizations, _ := m.Int64Counter("inventory.service.optimizations", metric.WithDescription("Number of stock optimizations by outcome"))
	return serviceMetrics{
		itemsAdded:        itemsAdded,
		itemsRestocked:    itemsRestocked,
		stockReductions:   stockReductions,
		insufficientStock: insufficient,
		optimizations:     optimizations,
	}
}

func (m serviceMetrics) recordAdded(ctx context.Context, created bool) {
	counter := m.itemsRestocked
	if created {
		counter = m.itemsAdded
	}
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordReduced(ctx context.Context) {
	if m.stockReductions != nil {
		m.stockReductions.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordInsufficient(ctx context.Context) {
	if m.insufficientStock != nil {
		m.insufficientStock.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordOptimization(ctx context.Context, outcome domain.OptimizationOutcome) {
	if m.optimizations != nil {
		m.optimizations.Add(ctx, 1, metric.WithAttributes(attribute.String("optimization.outcome", string(outcome))))
	}
}

var _ ports.Service = (*Service)(nil)
