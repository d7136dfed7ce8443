package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory item store used for local runs and tests.
type Repository struct {
	mu     sync.RWMutex
	items  map[string]*domain.Item
	byName map[string]string
	newID  func() string
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		items:  map[string]*domain.Item{},
		byName: map[string]string{},
		newID:  uuid.NewString,
	}
}

// WithIDGenerator overrides id assignment, mainly for deterministic tests.
func (r *Repository) WithIDGenerator(fn func() string) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.newID = fn
	return r
}

// Save inserts a new item or conditionally replaces an existing one.
func (r *Repository) Save(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	clone := item.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byName[clone.ProductName]; ok && owner != clone.ID {
		return nil, ports.ErrDuplicateName
	}
	if clone.ID == "" {
		clone.ID = r.newID()
		clone.Version = 1
	} else {
		stored, ok := r.items[clone.ID]
		if !ok {
			return nil, ports.ErrNotFound
		}
		if stored.Version != clone.Version {
			return nil, ports.ErrVersionConflict
		}
		if stored.ProductName != clone.ProductName {
			delete(r.byName, stored.ProductName)
		}
		clone.Version++
	}
	r.items[clone.ID] = clone
	r.byName[clone.ProductName] = clone.ID
	return clone.Clone(), nil
}

// GetByID fetches an item if present.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return item.Clone(), nil
}

// GetByName fetches the item with exactly this product name.
func (r *Repository) GetByName(_ context.Context, productName string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[productName]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

// List returns all items ordered by product name.
func (r *Repository) List(_ context.Context) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Item, 0, len(r.items))
	for _, item := range r.items {
		list = append(list, item.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductName < list[j].ProductName })
	return list, nil
}

// Delete removes an item.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.byName, item.ProductName)
	delete(r.items, id)
	return nil
}
