package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
	invactivities "github.com/Abka012/Odin-AI/internal/durable/temporal/activities/inventory"
	invworkflows "github.com/Abka012/Odin-AI/internal/durable/temporal/workflows/inventory"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalInventoryWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineInventoryWorkflows)(nil)
)

// workflowStarter is the subset of client.Client the orchestrator uses.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalInventoryWorkflows starts stock optimization workflows on a Temporal cluster.
type TemporalInventoryWorkflows struct {
	client    workflowStarter
	taskQueue string
}

// NewTemporalInventoryWorkflows wires a Temporal client into the orchestrator.
func NewTemporalInventoryWorkflows(c client.Client) *TemporalInventoryWorkflows {
	return &TemporalInventoryWorkflows{client: c, taskQueue: invworkflows.StockOptimizationTaskQueue}
}

// OptimizeStock starts the workflow and waits for its result.
func (o *TemporalInventoryWorkflows) OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal inventory workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        buildStockOptimizationWorkflowID(productName, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		invworkflows.StockOptimizationWorkflow,
		invworkflows.StockOptimizationWorkflowInput{ProductName: productName, TraceID: traceComponent},
	)
	if err != nil {
		return nil, err
	}
	var result domain.OptimizationResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, unwrapWorkflowError(err)
	}
	return &result, nil
}

// unwrapWorkflowError restores the application sentinel carried by an
// activity failure. Temporal serializes errors across the worker boundary, so
// only the application error type survives.
func unwrapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	if sentinel, ok := invactivities.ErrorTypes[appErr.Type()]; ok {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// InlineInventoryWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineInventoryWorkflows struct {
	service ports.Service
}

// NewInlineInventoryWorkflows wraps the inventory service for synchronous execution.
func NewInlineInventoryWorkflows(service ports.Service) *InlineInventoryWorkflows {
	return &InlineInventoryWorkflows{service: service}
}

// OptimizeStock delegates to the application service without durable orchestration.
func (o *InlineInventoryWorkflows) OptimizeStock(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline inventory workflows not configured")
	}
	return o.service.OptimizeStock(ctx, productName)
}

func buildStockOptimizationWorkflowID(productName, traceComponent string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(productName))
	return fmt.Sprintf("stock-optimization-%s-%s", slug, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
