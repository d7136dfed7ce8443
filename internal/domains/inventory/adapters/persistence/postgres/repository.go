package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists inventory items in PostgreSQL using GORM. Updates are
// conditional on the version column.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB
// lifecycle and the schema, see migrations.Run. The DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type itemRecord struct {
	ID               string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	ProductName      string     `gorm:"column:product_name;size:100;uniqueIndex:idx_inventory_items_product_name"`
	ProductType      string     `gorm:"column:product_type"`
	StockLevel       float64    `gorm:"column:stock_level"`
	ReorderThreshold int        `gorm:"column:reorder_threshold"`
	Price            float64    `gorm:"column:price"`
	DateAdded        time.Time  `gorm:"column:date_added"`
	LifeExpectancy   *time.Time `gorm:"column:life_expectancy;index"`
	SupplierName     string     `gorm:"column:supplier_name;size:100"`
	Category         string     `gorm:"column:category;size:50;index"`
	IsActive         bool       `gorm:"column:is_active"`
	Version          int64      `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "inventory_items" }

// Save inserts a new item or updates an existing one if its version still matches.
func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	if item.ID == "" {
		return r.insert(ctx, item)
	}
	record := toRecord(item)
	result := r.db.WithContext(ctx).
		Model(&itemRecord{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(map[string]any{
			"product_name":      record.ProductName,
			"product_type":      record.ProductType,
			"stock_level":       record.StockLevel,
			"reorder_threshold": record.ReorderThreshold,
			"price":             record.Price,
			"date_added":        record.DateAdded,
			"life_expectancy":   record.LifeExpectancy,
			"supplier_name":     record.SupplierName,
			"category":          record.Category,
			"is_active":         record.IsActive,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, record.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrVersionConflict
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) insert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	record := toRecord(item)
	record.ID = uuid.NewString()
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an item by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByName fetches an item by exact product name.
func (r *Repository) GetByName(ctx context.Context, productName string) (*domain.Item, error) {
	return r.first(ctx, "product_name = ?", productName)
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns every item ordered by product name.
func (r *Repository) List(ctx context.Context) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []itemRecord
	if err := r.db.WithContext(ctx).Order("product_name").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

// Delete removes an item by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&itemRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres inventory repository not configured")
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrDuplicateName
	}
	return err
}

func toRecord(item *domain.Item) itemRecord {
	return itemRecord{
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

func (r itemRecord) toDomain() *domain.Item {
	item := &domain.Item{
		ID:               r.ID,
		ProductName:      r.ProductName,
		ProductType:      r.ProductType,
		StockLevel:       r.StockLevel,
		ReorderThreshold: r.ReorderThreshold,
		Price:            r.Price,
		DateAdded:        r.DateAdded,
		SupplierName:     r.SupplierName,
		Category:         r.Category,
		IsActive:         r.IsActive,
		Version:          r.Version,
	}
	if r.LifeExpectancy != nil {
		expiry := *r.LifeExpectancy
		item.LifeExpectancy = &expiry
	}
	return item
}
