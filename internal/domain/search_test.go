package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 { return &f }

func TestNormalize_Defaults(t *testing.T) {
	n := SearchRequest{}.Normalize()

	assert.Equal(t, "", n.Query)
	assert.Equal(t, DefaultLimit, n.Limit)
	assert.Equal(t, 0, n.Offset)
	assert.Equal(t, SortRelevance, n.SortBy)
	assert.Equal(t, OrderDesc, n.SortOrder)
	assert.Equal(t, 0.0, n.MinPrice)
	assert.Nil(t, n.MaxPrice)
}

func TestNormalize_ClampsLimitAndOffset(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"negative limit", -5, 0, MinLimit, 0},
		{"oversized limit", 1000, 0, MaxLimit, 0},
		{"max limit kept", 100, 0, 100, 0},
		{"min limit kept", 1, 0, 1, 0},
		{"negative offset", 10, -3, 10, 0},
		{"offset kept", 10, 40, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := SearchRequest{Limit: tt.limit, Offset: tt.offset}.Normalize()
			assert.Equal(t, tt.wantLimit, n.Limit)
			assert.Equal(t, tt.wantOffset, n.Offset)
			assert.GreaterOrEqual(t, n.Limit, MinLimit)
			assert.LessOrEqual(t, n.Limit, MaxLimit)
			assert.GreaterOrEqual(t, n.Offset, 0)
		})
	}
}

func TestNormalize_QueryAndSlugs(t *testing.T) {
	n := SearchRequest{
		Query:    "  iPhone 14 ",
		Brand:    " Apple",
		Category: "SMART-Phones ",
	}.Normalize()

	assert.Equal(t, "iphone 14", n.Query)
	assert.Equal(t, "apple", n.Brand)
	assert.Equal(t, "smart-phones", n.Category)
}

func TestNormalize_UnknownSortFallsBack(t *testing.T) {
	n := SearchRequest{SortBy: "popularity", SortOrder: "sideways"}.Normalize()

	assert.Equal(t, SortRelevance, n.SortBy)
	assert.Equal(t, OrderDesc, n.SortOrder)
}

func TestNormalize_DoesNotReorderPriceRange(t *testing.T) {
	n := SearchRequest{MinPrice: 500, MaxPrice: float64Ptr(100)}.Normalize()

	assert.Equal(t, 500.0, n.MinPrice)
	require.NotNil(t, n.MaxPrice)
	assert.Equal(t, 100.0, *n.MaxPrice)
}

func TestNormalize_NegativeMinPrice(t *testing.T) {
	n := SearchRequest{MinPrice: -10}.Normalize()
	assert.Equal(t, 0.0, n.MinPrice)
}

func TestNormalize_CopiesMaxPrice(t *testing.T) {
	maxPrice := 300.0
	req := SearchRequest{MaxPrice: &maxPrice}
	n := req.Normalize()

	maxPrice = 1
	require.NotNil(t, n.MaxPrice)
	assert.Equal(t, 300.0, *n.MaxPrice)
}

func TestEmptyResult(t *testing.T) {
	n := SearchRequest{Query: "x", Offset: 20}.Normalize()
	res := EmptyResult(n)

	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrev)
	assert.Equal(t, "x", res.Filters.Query)
}

func TestCacheStats_MarshalJSON(t *testing.T) {
	stats := CacheStats{Total: 3, Active: 2, Expired: 1, TTL: 5 * time.Minute}

	b, err := json.Marshal(stats)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, float64(3), out["total"])
	assert.Equal(t, float64(2), out["active"])
	assert.Equal(t, float64(1), out["expired"])
	assert.Equal(t, "5m0s", out["ttl"])
	assert.Equal(t, float64(300), out["ttlSeconds"])
}

func TestScoredItem_JSONFlattensItem(t *testing.T) {
	item := ScoredItem{
		CatalogItem: CatalogItem{ID: "p-1", Name: "iPhone 14", Status: ItemStatusActive},
		Score:       0.9,
		Matches:     []FieldMatch{{Field: "name", Value: "iPhone 14"}},
	}

	b, err := json.Marshal(item)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "p-1", out["id"])
	assert.Equal(t, "iPhone 14", out["name"])
	assert.Equal(t, 0.9, out["score"])
	assert.Len(t, out["matches"], 1)
}
