package domain

import (
	"strings"

	"github.com/utafrali/catalog-search/pkg/pagination"
)

// SortKey selects the ordering applied to ranked results.
type SortKey string

// Sort keys accepted by the search endpoint.
const (
	SortRelevance SortKey = "relevance"
	SortPrice     SortKey = "price"
	SortName      SortKey = "name"
	SortRating    SortKey = "rating"
	SortDate      SortKey = "date"
	SortStock     SortKey = "stock"
)

// ValidSortKeys returns the list of valid sort keys.
func ValidSortKeys() []SortKey {
	return []SortKey{SortRelevance, SortPrice, SortName, SortRating, SortDate, SortStock}
}

// IsValidSort checks whether the given sort key is known.
func IsValidSort(key SortKey) bool {
	for _, k := range ValidSortKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// SortOrder is the direction of the sort.
type SortOrder string

// Sort directions.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Request bounds.
const (
	DefaultLimit = pagination.DefaultLimit
	MinLimit     = pagination.MinLimit
	MaxLimit     = pagination.MaxLimit
)

// SearchRequest holds all parameters for a search call.
type SearchRequest struct {
	Query     string    `json:"query"`
	Brand     string    `json:"brand,omitempty"`
	Category  string    `json:"category,omitempty"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  *float64  `json:"max_price,omitempty"`
	InStock   bool      `json:"in_stock"`
	SortBy    SortKey   `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// Normalize returns a copy of the request with defaults substituted and
// out-of-range values clamped. It never fails; a max price below the min
// price is kept as given.
func (r SearchRequest) Normalize() SearchRequest {
	n := r
	n.Query = NormalizeQuery(r.Query)
	n.Brand = strings.ToLower(strings.TrimSpace(r.Brand))
	n.Category = strings.ToLower(strings.TrimSpace(r.Category))

	if n.MinPrice < 0 {
		n.MinPrice = 0
	}
	if r.MaxPrice != nil {
		maxPrice := *r.MaxPrice
		n.MaxPrice = &maxPrice
	}

	page := n.Page().Clamp()
	n.Limit, n.Offset = page.Limit, page.Offset

	if !IsValidSort(n.SortBy) {
		n.SortBy = SortRelevance
	}
	if n.SortOrder != OrderAsc && n.SortOrder != OrderDesc {
		n.SortOrder = OrderDesc
	}

	return n
}

// Page returns the pagination window of the request.
func (r SearchRequest) Page() pagination.Params {
	return pagination.Params{Limit: r.Limit, Offset: r.Offset}
}

// NormalizeQuery trims and lowercases a free-text query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// FieldMatch explains which field of an item matched and on what value.
type FieldMatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// MatchRecord is a scored candidate produced by a matcher. It lives only
// for the duration of a single search call.
type MatchRecord struct {
	Item    *CatalogItem
	Score   float64
	Matches []FieldMatch
}

// ScoredItem is a catalog item annotated with its final score and the
// fields that matched the query.
type ScoredItem struct {
	CatalogItem
	Score   float64      `json:"score"`
	Matches []FieldMatch `json:"matches"`
}

// AppliedFilters echoes the normalized request back to the caller.
type AppliedFilters struct {
	Query     string    `json:"query"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	MinPrice  float64   `json:"minPrice"`
	MaxPrice  *float64  `json:"maxPrice"`
	InStock   bool      `json:"inStock"`
	SortBy    SortKey   `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// FiltersOf builds the echo of a normalized request.
func FiltersOf(r SearchRequest) AppliedFilters {
	return AppliedFilters{
		Query:     r.Query,
		Brand:     r.Brand,
		Category:  r.Category,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		InStock:   r.InStock,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}
}

// SearchResult holds the paginated, ranked search response.
type SearchResult struct {
	Results    []ScoredItem   `json:"results"`
	Total      int            `json:"total"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	HasNext    bool           `json:"hasNext"`
	HasPrev    bool           `json:"hasPrev"`
	DurationMs int64          `json:"durationMs"`
	Filters    AppliedFilters `json:"filters"`
}

// EmptyResult returns a valid zero-total result for a normalized request.
func EmptyResult(r SearchRequest) *SearchResult {
	return &SearchResult{
		Results: []ScoredItem{},
		Total:   0,
		Limit:   r.Limit,
		Offset:  r.Offset,
		HasPrev: r.Offset > 0,
		Filters: FiltersOf(r),
	}
}
