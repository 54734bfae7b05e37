package ranking

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/catalog-search/internal/domain"
)

// Sort orders records in place by key and order. The sort is stable so
// records that compare equal keep their merge order. Relevance is
// descending by nature and asc inverts it; every other key is ascending by
// nature and desc inverts it.
func Sort(records []domain.MatchRecord, key domain.SortKey, order domain.SortOrder) {
	less := lessFunc(records, key)

	invert := order == domain.OrderDesc
	if key == domain.SortRelevance || !domain.IsValidSort(key) {
		invert = order == domain.OrderAsc
	}

	sort.SliceStable(records, func(i, j int) bool {
		if invert {
			return less(j, i)
		}
		return less(i, j)
	})
}

func lessFunc(records []domain.MatchRecord, key domain.SortKey) func(i, j int) bool {
	switch key {
	case domain.SortPrice:
		return func(i, j int) bool { return records[i].Item.Price < records[j].Item.Price }
	case domain.SortRating:
		return func(i, j int) bool { return records[i].Item.AverageRating < records[j].Item.AverageRating }
	case domain.SortStock:
		return func(i, j int) bool { return records[i].Item.StockQuantity < records[j].Item.StockQuantity }
	case domain.SortDate:
		return func(i, j int) bool { return records[i].Item.CreatedAt.Before(records[j].Item.CreatedAt) }
	case domain.SortName:
		// Collators hold scratch buffers and are not safe for concurrent use.
		c := collate.New(language.English, collate.IgnoreCase)
		return func(i, j int) bool {
			return c.CompareString(records[i].Item.Name, records[j].Item.Name) < 0
		}
	default:
		// Relevance: higher score first.
		return func(i, j int) bool { return records[i].Score > records[j].Score }
	}
}
