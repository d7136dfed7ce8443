package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the inventory schema.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&itemRecord{})
}

// Item schema mirrors the inventory Postgres adapter.
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
