package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
	"github.com/Abka012/Odin-AI/internal/shared/keylock"
)

// DefaultForecastTimeout bounds a single forecast round-trip.
const DefaultForecastTimeout = 5 * time.Second

// Service owns the inventory business rules.
//
// Read-modify-write sequences run under a per-key lock: "name:<productName>" for
// add and optimize, "id:<id>" for anything that rewrites a stored record. The name
// lock is always taken before the id lock. Every write is also conditional on the
// item version, so a second process writing the same store loses with
// ErrWriteConflict rather than overwriting.
type Service struct {
	repo            ports.Repository
	forecast        ports.ForecastClient
	alerts          ports.AlertPublisher
	logger          *slog.Logger
	locks           *keylock.Locker
	now             func() time.Time
	forecastTimeout time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithAlertPublisher forwards reorder and expiration alerts to p.
func WithAlertPublisher(p ports.AlertPublisher) Option {
	return func(s *Service) {
		s.alerts = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithForecastTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.forecastTimeout = d
		}
	}
}

// NewService wires the inventory service with its collaborators.
func NewService(repo ports.Repository, forecast ports.ForecastClient, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		forecast:        forecast,
		logger:          slog.Default(),
		locks:           keylock.New(),
		now:             time.Now,
		forecastTimeout: DefaultForecastTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AddOrMergeItem stores candidate as a new item, or restocks the existing item
// with the same product name. A restock only changes the stock level.
func (s *Service) AddOrMergeItem(ctx context.Context, candidate *domain.Item) (*ports.AddResult, error) {
	if candidate == nil {
		return nil, invalidField("item", "item is required")
	}
	if err := candidate.Validate(); err != nil {
		return nil, mapError(err)
	}
	unlockName := s.locks.Lock(nameKey(candidate.ProductName))
	defer unlockName()

	existing, err := s.repo.GetByName(ctx, candidate.ProductName)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(err)
	}
	if existing != nil {
		restocked, err := s.restock(ctx, existing.ID, candidate.ProductName, candidate.StockLevel)
		if err == nil {
			return &ports.AddResult{Item: restocked}, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(err)
		}
		// Gone or renamed between the name lookup and the id lock: fall through to insert.
	}

	item := candidate.Clone()
	item.ID = ""
	item.Version = 0
	if item.DateAdded.IsZero() {
		item.DateAdded = s.now()
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.AddResult{Item: saved, Created: true}, nil
}

// restock adds quantity to the item at id as long as it still carries productName.
func (s *Service) restock(ctx context.Context, id, productName string, quantity float64) (*domain.Item, error) {
	unlock := s.locks.Lock(idKey(id))
	defer unlock()
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ProductName != productName {
		return nil, ports.ErrNotFound
	}
	current.Restock(quantity)
	return s.repo.Save(ctx, current)
}

// GetByID loads a single item.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

// List returns every item.
func (s *Service) List(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// ListByCategory filters items by category, ignoring case.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]*domain.Item, error) {
	return s.filter(ctx, func(item *domain.Item) bool { return item.InCategory(category) })
}

// UpdateItem replaces the record at id. It never creates: a missing id is ErrNotFound.
// A rename also holds the name locks of both the old and the new name.
func (s *Service) UpdateItem(ctx context.Context, id string, replacement *domain.Item) (*domain.Item, error) {
	if replacement == nil {
		return nil, invalidField("item", "item is required")
	}
	if err := replacement.Validate(); err != nil {
		return nil, mapError(err)
	}
	for {
		seen, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, mapError(err)
		}
		saved, retry, err := s.replace(ctx, id, seen.ProductName, replacement)
		if !retry {
			return saved, err
		}
	}
}

// replace runs one locked attempt of UpdateItem. retry is set when the stored name
// moved away from seenName before the locks were held.
func (s *Service) replace(ctx context.Context, id, seenName string, replacement *domain.Item) (*domain.Item, bool, error) {
	if replacement.ProductName != seenName {
		unlockNames := s.lockNames(seenName, replacement.ProductName)
		defer unlockNames()
	}
	unlock := s.locks.Lock(idKey(id))
	defer unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, mapError(err)
	}
	if current.ProductName != seenName {
		return nil, true, nil
	}
	if replacement.ProductName != current.ProductName {
		other, err := s.repo.GetByName(ctx, replacement.ProductName)
		switch {
		case err == nil && other.ID != id:
			return nil, false, ErrDuplicateConflict
		case err != nil && !errors.Is(err, ports.ErrNotFound):
			return nil, false, mapError(err)
		}
	}
	item := replacement.Clone()
	item.ID = id
	item.Version = current.Version
	if item.DateAdded.IsZero() {
		item.DateAdded = current.DateAdded
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, false, mapError(err)
	}
	return saved, false, nil
}

// lockNames takes the name locks in sorted order and returns their joint release.
func (s *Service) lockNames(a, b string) func() {
	if b < a {
		a, b = b, a
	}
	first := s.locks.Lock(nameKey(a))
	second := s.locks.Lock(nameKey(b))
	return func() {
		second()
		first()
	}
}

// DeleteItem removes the item at id.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	unlock := s.locks.Lock(idKey(id))
	defer unlock()
	return mapError(s.repo.Delete(ctx, id))
}

// ReduceStock depletes stock and then runs the reorder and expiration checks.
func (s *Service) ReduceStock(ctx context.Context, id string, quantity float64) (*domain.Item, error) {
	if !domain.ValidQuantity(quantity) {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	saved, err := s.deplete(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	s.checkReorder(ctx, saved)
	s.checkExpiration(ctx, saved)
	return saved, nil
}

func (s *Service) deplete(ctx context.Context, id string, quantity float64) (*domain.Item, error) {
	unlock := s.locks.Lock(idKey(id))
	defer unlock()

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	available := item.StockLevel
	if err := item.Deplete(quantity); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, &InsufficientStockError{
				ItemID:      item.ID,
				ProductName: item.ProductName,
				Requested:   quantity,
				Available:   available,
			}
		}
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// CheckReorderNeeded reports whether the item is at or below its threshold. A
// missing item is not an error: callers polling many ids get false.
func (s *Service) CheckReorderNeeded(ctx context.Context, id string) (bool, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return false, nil
		}
		return false, mapError(err)
	}
	return s.checkReorder(ctx, item), nil
}

func (s *Service) checkReorder(ctx context.Context, item *domain.Item) bool {
	if !item.NeedsReorder() {
		return false
	}
	s.publish(ctx, domain.Alert{
		Kind:             domain.AlertReorder,
		ItemID:           item.ID,
		ProductName:      item.ProductName,
		StockLevel:       item.StockLevel,
		ReorderThreshold: item.ReorderThreshold,
	})
	return true
}

func (s *Service) checkExpiration(ctx context.Context, item *domain.Item) {
	cutoff := domain.ExpirationCutoff(s.now(), domain.DefaultExpirationHorizonMonths)
	if !item.ExpiresBefore(cutoff) {
		return
	}
	s.publish(ctx, domain.Alert{
		Kind:        domain.AlertExpiration,
		ItemID:      item.ID,
		ProductName: item.ProductName,
		StockLevel:  item.StockLevel,
		ExpiresAt:   item.LifeExpectancy,
	})
}

func (s *Service) publish(ctx context.Context, alert domain.Alert) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.Publish(ctx, alert); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to publish inventory alert",
			slog.String("alert.kind", string(alert.Kind)),
			slog.String("item.id", alert.ItemID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) filter(ctx context.Context, keep func(*domain.Item) bool) ([]*domain.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	result := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result, nil
}

func nameKey(productName string) string { return "name:" + productName }

func idKey(id string) string { return "id:" + id }

var _ ports.Service = (*Service)(nil)
