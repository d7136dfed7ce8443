package ports

import (
	"context"
	"errors"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
)

var (
	ErrNotFound = errors.New("item not found")
	// ErrVersionConflict is returned when a conditional write observes a newer version.
	ErrVersionConflict = errors.New("item version conflict")
	// ErrDuplicateName is returned when a store enforces product name uniqueness and an insert collides.
	ErrDuplicateName = errors.New("duplicate product name")
)

// Repository persists inventory items keyed by id.
//
// Save inserts when item.ID is empty (assigning an id and Version 1). Otherwise it
// replaces the stored record only if the stored Version equals item.Version, and
// bumps Version; a mismatch yields ErrVersionConflict, a missing id ErrNotFound.
type Repository interface {
	Save(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByName(ctx context.Context, productName string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Delete(ctx context.Context, id string) error
}
