package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Abka012/Odin-AI/internal/platform/validation"
)

// DefaultExpirationHorizonMonths is the look-ahead used when warning about expiring stock.
const DefaultExpirationHorizonMonths = 2

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidHorizon    = errors.New("horizon months must be greater than zero")
)

// Item is the inventory aggregate. ProductName is the natural merge key.
type Item struct {
	ID               string     `validate:"-"`
	ProductName      string     `validate:"required,min=2,max=100"`
	ProductType      string     `validate:"required"`
	StockLevel       float64    `validate:"gte=0"`
	ReorderThreshold int        `validate:"gt=0"`
	Price            float64    `validate:"gt=0"`
	DateAdded        time.Time  `validate:"-"`
	LifeExpectancy   *time.Time `validate:"-"`
	SupplierName     string     `validate:"required,min=2,max=100"`
	Category         string     `validate:"required,min=2,max=50"`
	IsActive         bool       `validate:"-"`
	// Version is the optimistic concurrency token maintained by the store.
	Version int64 `validate:"-"`
}

// Validate checks the field constraints and returns a *validation.Error on failure.
func (i *Item) Validate() error {
	return validation.Struct(i)
}

// NeedsReorder reports whether stock sits at or below the reorder threshold.
func (i *Item) NeedsReorder() bool {
	return i.StockLevel <= float64(i.ReorderThreshold)
}

// ExpiresBefore reports whether the item has a life expectancy earlier than the cutoff.
func (i *Item) ExpiresBefore(cutoff time.Time) bool {
	return i.LifeExpectancy != nil && i.LifeExpectancy.Before(cutoff)
}

// Restock adds quantity to the stock level.
func (i *Item) Restock(quantity float64) {
	i.StockLevel += quantity
}

// Deplete removes quantity from the stock level. It never clamps: insufficient
// stock is rejected and the item is left untouched.
func (i *Item) Deplete(quantity float64) error {
	if !ValidQuantity(quantity) {
		return ErrInvalidQuantity
	}
	if i.StockLevel < quantity {
		return ErrInsufficientStock
	}
	i.StockLevel -= quantity
	return nil
}

// Value is price times stock on hand.
func (i *Item) Value() float64 {
	return i.Price * i.StockLevel
}

// InCategory matches the category case-insensitively.
func (i *Item) InCategory(category string) bool {
	return strings.EqualFold(i.Category, category)
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	if i.LifeExpectancy != nil {
		expiry := *i.LifeExpectancy
		clone.LifeExpectancy = &expiry
	}
	return &clone
}

// ExpirationCutoff returns now shifted forward by the given number of months.
func ExpirationCutoff(now time.Time, months int) time.Time {
	return now.AddDate(0, months, 0)
}

// ValidQuantity reports whether quantity is a positive finite number.
func ValidQuantity(quantity float64) bool {
	return quantity > 0 && !math.IsInf(quantity, 0)
}
