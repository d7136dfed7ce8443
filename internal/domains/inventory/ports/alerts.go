package ports

import (
	"context"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

// AlertPublisher receives reorder and expiration notifications. Publishing is
// best effort: the service logs a failure and carries on.
type AlertPublisher interface {
	Publish(ctx context.Context, alert domain.Alert) error
}
