package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

const defaultKeyPrefix = "inventory:"

var _ ports.Repository = (*Repository)(nil)

// insertScript stores a new document unless the product name is already claimed.
// KEYS: item, name, index. ARGV: id, document.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return -1
end
redis.call('SET', KEYS[1], ARGV[2])
redis.call('SET', KEYS[2], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[1])
return 1
`)

// updateScript replaces a document only if its stored version is still the expected one.
// KEYS: item, old name, new name. ARGV: id, expected version, document.
var updateScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	return 0
end
local doc = cjson.decode(current)
if tonumber(doc['version']) ~= tonumber(ARGV[2]) then
	return -2
end
if KEYS[2] ~= KEYS[3] then
	local owner = redis.call('GET', KEYS[3])
	if owner and owner ~= ARGV[1] then
		return -1
	end
	if redis.call('GET', KEYS[2]) == ARGV[1] then
		redis.call('DEL', KEYS[2])
	end
end
redis.call('SET', KEYS[1], ARGV[3])
redis.call('SET', KEYS[3], ARGV[1])
return 1
`)

// deleteScript removes a document and releases its name if still owned.
// KEYS: item, name, index. ARGV: id.
var deleteScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
	redis.call('DEL', KEYS[2])
end
redis.call('SREM', KEYS[3], ARGV[1])
return 1
`)

// Repository stores items as JSON documents in Redis. Writes run as Lua scripts
// so the version check and the name index update are atomic.
type Repository struct {
	client redis.UniversalClient
	prefix string
}

// Option configures the repository.
type Option func(*Repository)

// WithKeyPrefix namespaces every key; useful when sharing a Redis database.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// NewRepository wires a Redis-backed repository. The caller owns the client.
func NewRepository(client redis.UniversalClient, opts ...Option) *Repository {
	r := &Repository{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type itemDocument struct {
	ID               string     `json:"id"`
	ProductName      string     `json:"productName"`
	ProductType      string     `json:"productType"`
	StockLevel       float64    `json:"stockLevel"`
	ReorderThreshold int        `json:"reorderThreshold"`
	Price            float64    `json:"price"`
	DateAdded        time.Time  `json:"dateAdded"`
	LifeExpectancy   *time.Time `json:"lifeExpectancy,omitempty"`
	SupplierName     string     `json:"supplierName"`
	Category         string     `json:"category"`
	IsActive         bool       `json:"isActive"`
	Version          int64      `json:"version"`
}

// Save inserts a new item or conditionally replaces an existing one.
func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("redis inventory repository not configured")
	}
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	if item.ID == "" {
		return r.insert(ctx, item)
	}

	current, err := r.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if current.Version != item.Version {
		return nil, ports.ErrVersionConflict
	}
	next := item.Clone()
	next.Version = item.Version + 1
	payload, err := json.Marshal(toDocument(next))
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	keys := []string{r.itemKey(item.ID), r.nameKey(current.ProductName), r.nameKey(next.ProductName)}
	result, err := updateScript.Run(ctx, r.client, keys, item.ID, item.Version, payload).Int()
	if err != nil {
		return nil, err
	}
	switch result {
	case 0:
		return nil, ports.ErrNotFound
	case -1:
		return nil, ports.ErrDuplicateName
	case -2:
		return nil, ports.ErrVersionConflict
	}
	return next, nil
}

func (r *Repository) insert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	next := item.Clone()
	next.ID = uuid.NewString()
	next.Version = 1
	payload, err := json.Marshal(toDocument(next))
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	keys := []string{r.itemKey(next.ID), r.nameKey(next.ProductName), r.indexKey()}
	result, err := insertScript.Run(ctx, r.client, keys, next.ID, payload).Int()
	if err != nil {
		return nil, err
	}
	if result == -1 {
		return nil, ports.ErrDuplicateName
	}
	return next, nil
}

// GetByID fetches an item by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	raw, err := r.client.Get(ctx, r.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// GetByName resolves the product name index and loads the item.
func (r *Repository) GetByName(ctx context.Context, productName string) (*domain.Item, error) {
	id, err := r.client.Get(ctx, r.nameKey(productName)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List returns every item ordered by product name.
func (r *Repository) List(ctx context.Context) ([]*domain.Item, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Item{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.itemKey(id))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		item, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductName < items[j].ProductName })
	return items, nil
}

// Delete removes an item by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	keys := []string{r.itemKey(id), r.nameKey(current.ProductName), r.indexKey()}
	result, err := deleteScript.Run(ctx, r.client, keys, id).Int()
	if err != nil {
		return err
	}
	if result == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) itemKey(id string) string { return r.prefix + "item:" + id }

func (r *Repository) nameKey(name string) string { return r.prefix + "name:" + name }

func (r *Repository) indexKey() string { return r.prefix + "items" }

func decode(raw []byte) (*domain.Item, error) {
	var doc itemDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return doc.toDomain(), nil
}

func toDocument(item *domain.Item) itemDocument {
	return itemDocument{
		ID:               item.ID,
		ProductName:      item.ProductName,
		ProductType:      item.ProductType,
		StockLevel:       item.StockLevel,
		ReorderThreshold: item.ReorderThreshold,
		Price:            item.Price,
		DateAdded:        item.DateAdded,
		LifeExpectancy:   item.LifeExpectancy,
		SupplierName:     item.SupplierName,
		Category:         item.Category,
		IsActive:         item.IsActive,
		Version:          item.Version,
	}
}

func (d itemDocument) toDomain() *domain.Item {
	return &domain.Item{
		ID:               d.ID,
		ProductName:      d.ProductName,
		ProductType:      d.ProductType,
		StockLevel:       d.StockLevel,
		ReorderThreshold: d.ReorderThreshold,
		Price:            d.Price,
		DateAdded:        d.DateAdded,
		LifeExpectancy:   d.LifeExpectancy,
		SupplierName:     d.SupplierName,
		Category:         d.Category,
		IsActive:         d.IsActive,
		Version:          d.Version,
	}
}
