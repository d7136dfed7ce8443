package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

// timestampLayouts are accepted on input; zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp decodes RFC 3339 and zone-less local date-times.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts a string in one of timestampLayouts or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// MarshalJSON writes RFC 3339 in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ItemPayload captures inbound create and update bodies while preserving field presence.
type ItemPayload struct {
	ProductName      string     `json:"productName"`
	ProductType      string     `json:"productType"`
	StockLevel       float64    `json:"stockLevel"`
	ReorderThreshold int        `json:"reorderThreshold"`
	Price            float64    `json:"price"`
	DateAdded        *Timestamp `json:"dateAdded,omitempty"`
	LifeExpectancy   *Timestamp `json:"lifeExpectancy,omitempty"`
	SupplierName     string     `json:"supplierName"`
	Category         string     `json:"category"`
	IsActive         *bool      `json:"isActive,omitempty"`
}

// Item is the HTTP representation of an inventory item.
type Item struct {
	ID               string     `json:"id"`
	ProductName      string     `json:"productName"`
	ProductType      string     `json:"productType"`
	StockLevel       float64    `json:"stockLevel"`
	ReorderThreshold int        `json:"reorderThreshold"`
	Price            float64    `json:"price"`
	DateAdded        Timestamp  `json:"dateAdded"`
	LifeExpectancy   *Timestamp `json:"lifeExpectancy"`
	SupplierName     string     `json:"supplierName"`
	Category         string     `json:"category"`
	IsActive         bool       `json:"isActive"`
	Version          int64      `json:"version"`
}

// AddItemResponse is the body returned by POST /items.
type AddItemResponse struct {
	Item    Item   `json:"item"`
	Message string `json:"message"`
	Created bool   `json:"created"`
}

// OptimizationResponse is the body returned by POST /items/optimize/{productName}.
type OptimizationResponse struct {
	Message      string  `json:"message"`
	Outcome      string  `json:"outcome"`
	ProductName  string  `json:"productName"`
	CurrentStock float64 `json:"currentStock"`
	Forecast     float64 `json:"forecast"`
	Item         *Item   `json:"item,omitempty"`
}

// TotalValueResponse is the body returned by GET /items/total-value.
type TotalValueResponse struct {
	TotalValue float64 `json:"totalValue"`
}

// ToDomainItem maps an inbound payload to a domain candidate. A missing isActive defaults to true.
func ToDomainItem(payload ItemPayload) *domain.Item {
	item := &domain.Item{
		ProductName:      strings.TrimSpace(payload.ProductName),
		ProductType:      strings.TrimSpace(payload.ProductType),
		StockLevel:       payload.StockLevel,
		ReorderThreshold: payload.ReorderThreshold,
		Price:            payload.Price,
		SupplierName:     strings.TrimSpace(payload.SupplierName),
		Category:         strings.TrimSpace(payload.Category),
		IsActive:         true,
	}
	if payload.IsActive != nil {
		item.IsActive = *payload.IsActive
	}
	if payload.DateAdded != nil && !payload.DateAdded.IsZero() {
		item.DateAdded = payload.DateAdded.Time
	}
	if payload.LifeExpectancy != nil && !payload.LifeExpectancy.IsZero() {
		expiry := payload.LifeExpectancy.Time
		item.LifeExpectancy = &expiry
	}
	return item
}

// FromDomainItem maps a domain item to its HTTP representation.
func FromDomainItem(item *domain.Item) Item {
	if item == nil {
		return Item{}
	}
	out := Item{
		ID:               item.ID,
		ProductName:      item.ProductName,
		ProductType:      item.ProductType,
		StockLevel:       item.StockLevel,
		ReorderThreshold: item.ReorderThreshold,
		Price:            item.Price,
		DateAdded:        Timestamp{Time: item.DateAdded},
		SupplierName:     item.SupplierName,
		Category:         item.Category,
		IsActive:         item.IsActive,
		Version:          item.Version,
	}
	if item.LifeExpectancy != nil {
		out.LifeExpectancy = &Timestamp{Time: *item.LifeExpectancy}
	}
	return out
}

// FromDomainItems maps a list, never returning nil.
func FromDomainItems(items []*domain.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromDomainItem(item))
	}
	return out
}

// FromAddResult maps the outcome of an add-or-merge.
func FromAddResult(result *ports.AddResult) AddItemResponse {
	return AddItemResponse{
		Item:    FromDomainItem(result.Item),
		Message: result.Message(),
		Created: result.Created,
	}
}

// FromOptimizationResult maps an optimization outcome.
func FromOptimizationResult(result *domain.OptimizationResult) OptimizationResponse {
	resp := OptimizationResponse{
		Message:      result.Message(),
		Outcome:      string(result.Outcome),
		ProductName:  result.ProductName,
		CurrentStock: result.CurrentStock,
		Forecast:     result.Forecast,
	}
	if result.Item != nil {
		item := FromDomainItem(result.Item)
		resp.Item = &item
	}
	return resp
}
