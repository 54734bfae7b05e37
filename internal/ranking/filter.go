package ranking

import (
	"github.com/utafrali/catalog-search/internal/domain"
)

// Criteria is the structured part of a search request, with brand and
// category already resolved from slugs to identifiers.
type Criteria struct {
	BrandID    string
	CategoryID string
	MinPrice   float64
	MaxPrice   *float64
	InStock    bool
}

// CriteriaFor builds filter criteria from a normalized request and the
// resolved reference identifiers. Empty identifiers mean "no filter".
func CriteriaFor(req domain.SearchRequest, brandID, categoryID string) Criteria {
	return Criteria{
		BrandID:    brandID,
		CategoryID: categoryID,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		InStock:    req.InStock,
	}
}

// Filter returns the items satisfying every criterion. An empty result is
// valid and not an error.
func Filter(items []domain.CatalogItem, c Criteria) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for i := range items {
		if c.accepts(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func (c Criteria) accepts(item *domain.CatalogItem) bool {
	if item.Status != domain.ItemStatusActive {
		return false
	}
	if c.BrandID != "" && item.Brand.ID != c.BrandID {
		return false
	}
	if c.CategoryID != "" && item.Category.ID != c.CategoryID {
		return false
	}
	if item.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && item.Price > *c.MaxPrice {
		return false
	}
	if c.InStock && !item.InStock() {
		return false
	}
	return true
}
