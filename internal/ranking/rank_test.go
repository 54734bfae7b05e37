package ranking

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-search/internal/domain"
)

func rank(items []domain.CatalogItem, req domain.SearchRequest) *domain.SearchResult {
	n := req.Normalize()
	return Rank(items, n, CriteriaFor(n, "", ""))
}

func TestRank_ExactNameMatch(t *testing.T) {
	items := []domain.CatalogItem{newItem("p-1", "iPhone 14", apple, phones, 799, 10)}

	res := rank(items, domain.SearchRequest{Query: "iphone"})

	require.Equal(t, 1, res.Total)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "p-1", res.Results[0].ID)
	assert.Greater(t, res.Results[0].Score, 0.8)
	assert.Contains(t, res.Results[0].Matches, domain.FieldMatch{Field: "name", Value: "iPhone 14"})
}

func TestRank_NoMatch(t *testing.T) {
	items := []domain.CatalogItem{newItem("p-1", "iPhone 14", apple, phones, 799, 10)}

	res := rank(items, domain.SearchRequest{Query: "zzz-no-match"})

	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.False(t, res.HasNext)
}

func TestRank_InStockFilterBeatsTextScore(t *testing.T) {
	items := catalog()

	res := rank(items, domain.SearchRequest{Query: "pixel", InStock: true})

	for _, r := range res.Results {
		assert.NotEqual(t, "p-3", r.ID)
		assert.Greater(t, r.StockQuantity, 0)
	}
}

func TestRank_FeaturedBoostOrdersFirst(t *testing.T) {
	plain := newItem("p-plain", "Phone", domain.Ref{ID: "b-acme", Name: "Acme"}, domain.Ref{}, 100, 5)
	featured := plain
	featured.ID = "p-featured"
	featured.IsFeatured = true

	res := rank([]domain.CatalogItem{plain, featured}, domain.SearchRequest{Query: "phnoe"})

	require.Len(t, res.Results, 2)
	assert.Equal(t, "p-featured", res.Results[0].ID)
	assert.Equal(t, "p-plain", res.Results[1].ID)
	require.Greater(t, res.Results[1].Score, 0.0)
	assert.InDelta(t, 1.2, res.Results[0].Score/res.Results[1].Score, 1e-9)
}

func TestRank_NoQueryScoresEveryItem(t *testing.T) {
	res := rank(catalog(), domain.SearchRequest{})

	require.Equal(t, 4, res.Total)
	scores := make(map[string]float64)
	for _, r := range res.Results {
		scores[r.ID] = r.Score
		assert.NotNil(t, r.Matches)
	}
	assert.Equal(t, 1.0, scores["p-1"])
	assert.Equal(t, 1.0, scores["p-2"])
	assert.Equal(t, 0.5, scores["p-3"], "out of stock is penalized")
	assert.Equal(t, 1.0, scores["p-4"])
	assert.Equal(t, "p-3", res.Results[3].ID)
}

func TestRank_AppliesCriteria(t *testing.T) {
	n := domain.SearchRequest{}.Normalize()

	res := Rank(catalog(), n, CriteriaFor(n, apple.ID, ""))

	assert.ElementsMatch(t, []string{"p-1", "p-4"}, resultIDs(res))
}

func TestRank_Pagination(t *testing.T) {
	var items []domain.CatalogItem
	for i := 0; i < 5; i++ {
		items = append(items, newItem(fmt.Sprintf("p-%d", i), fmt.Sprintf("Item %d", i), apple, phones, float64(100+i), 5))
	}

	tests := []struct {
		name     string
		limit    int
		offset   int
		wantIDs  []string
		wantNext bool
		wantPrev bool
	}{
		{"first page", 2, 0, []string{"p-0", "p-1"}, true, false},
		{"middle page", 2, 2, []string{"p-2", "p-3"}, true, true},
		{"last page", 2, 4, []string{"p-4"}, false, true},
		{"past the end", 2, 10, []string{}, false, true},
		{"exact fit", 5, 0, []string{"p-0", "p-1", "p-2", "p-3", "p-4"}, false, false},
		{"maximum offset", 20, math.MaxInt, []string{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rank(items, domain.SearchRequest{SortBy: domain.SortPrice, SortOrder: domain.OrderAsc, Limit: tt.limit, Offset: tt.offset})

			assert.Equal(t, 5, res.Total)
			assert.Equal(t, tt.wantIDs, resultIDs(res))
			assert.Equal(t, tt.wantNext, res.HasNext)
			assert.Equal(t, tt.wantPrev, res.HasPrev)
			assert.Equal(t, tt.limit, res.Limit)
			assert.Equal(t, tt.offset, res.Offset)
		})
	}
}

func TestRank_ScoresStayInUnitInterval(t *testing.T) {
	items := catalog()
	for i := range items {
		items[i].IsFeatured = true
		items[i].IsBestseller = true
		items[i].AverageRating = 5
		items[i].StockQuantity += 20
	}

	for _, q := range []string{"", "iphone", "apple", "galaxy samsung", "macbok", "phone"} {
		res := rank(items, domain.SearchRequest{Query: q, Limit: 100})
		for _, r := range res.Results {
			assert.GreaterOrEqual(t, r.Score, 0.0, q)
			assert.LessOrEqual(t, r.Score, 1.0, q)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	req := domain.SearchRequest{Query: "apple", SortBy: domain.SortRelevance}

	first := rank(catalog(), req)
	for i := 0; i < 10; i++ {
		again := rank(catalog(), req)
		assert.Equal(t, first, again)
	}
}

func TestRank_EchoesFilters(t *testing.T) {
	res := rank(catalog(), domain.SearchRequest{Query: " Apple ", Brand: "Apple", InStock: true})

	assert.Equal(t, "apple", res.Filters.Query)
	assert.Equal(t, "apple", res.Filters.Brand)
	assert.True(t, res.Filters.InStock)
	assert.Equal(t, domain.SortRelevance, res.Filters.SortBy)
}
