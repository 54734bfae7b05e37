package domain

import (
	"time"
)

// ItemStatus is the lifecycle status of a catalog item.
type ItemStatus string

// Catalog item status constants.
const (
	ItemStatusActive     ItemStatus = "active"
	ItemStatusInactive   ItemStatus = "inactive"
	ItemStatusOutOfStock ItemStatus = "out_of_stock"
)

// IsValid reports whether s is one of the known item statuses.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusOutOfStock:
		return true
	}
	return false
}

// Ref is a denormalized brand or category reference carried on a catalog item.
type Ref struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CatalogItem represents a product as handed to the ranking pipeline.
// Items are owned by the catalog repository and never mutated by search.
type CatalogItem struct {
	ID            string     `json:"id" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Model         string     `json:"model"`
	Description   string     `json:"description"`
	Brand         Ref        `json:"brand"`
	Category      Ref        `json:"category"`
	Price         float64    `json:"price" validate:"gte=0"`
	OriginalPrice *float64   `json:"original_price,omitempty"`
	StockQuantity int        `json:"stock_quantity" validate:"gte=0"`
	Status        ItemStatus `json:"status" validate:"required,oneof=active inactive out_of_stock"`
	IsFeatured    bool       `json:"is_featured"`
	IsBestseller  bool       `json:"is_bestseller"`
	AverageRating float64    `json:"average_rating" validate:"gte=0,lte=5"`
	CreatedAt     time.Time  `json:"created_at"`
}

// InStock reports whether the item has any units available.
func (c *CatalogItem) InStock() bool {
	return c.StockQuantity > 0
}
