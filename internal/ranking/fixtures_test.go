package ranking

import (
	"time"

	"github.com/utafrali/catalog-search/internal/domain"
)

var (
	apple   = domain.Ref{ID: "b-apple", Name: "Apple", Slug: "apple"}
	samsung = domain.Ref{ID: "b-samsung", Name: "Samsung", Slug: "samsung"}
	google  = domain.Ref{ID: "b-google", Name: "Google", Slug: "google"}

	phones  = domain.Ref{ID: "c-phones", Name: "Smartphones", Slug: "smartphones"}
	laptops = domain.Ref{ID: "c-laptops", Name: "Laptops", Slug: "laptops"}
)

func newItem(id, name string, brand, category domain.Ref, price float64, stock int) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		Name:          name,
		Brand:         brand,
		Category:      category,
		Price:         price,
		StockQuantity: stock,
		Status:        domain.ItemStatusActive,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func catalog() []domain.CatalogItem {
	iphone := newItem("p-1", "iPhone 14", apple, phones, 799, 10)
	iphone.Model = "A2649"
	iphone.Description = "Apple smartphone with A15 Bionic chip"

	galaxy := newItem("p-2", "Galaxy S23", samsung, phones, 699, 25)
	galaxy.Model = "SM-S911"
	galaxy.AverageRating = 4.6

	pixel := newItem("p-3", "Pixel 8", google, phones, 599, 0)
	pixel.Model = "GKWS6"

	macbook := newItem("p-4", "MacBook Air", apple, laptops, 1199, 3)
	macbook.IsFeatured = true

	hidden := newItem("p-5", "iPhone 13", apple, phones, 599, 4)
	hidden.Status = domain.ItemStatusInactive

	return []domain.CatalogItem{iphone, galaxy, pixel, macbook, hidden}
}

func ids(items []domain.CatalogItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func resultIDs(res *domain.SearchResult) []string {
	out := make([]string, len(res.Results))
	for i := range res.Results {
		out[i] = res.Results[i].ID
	}
	return out
}
