// Package ranking turns a candidate set and a normalized search request
// into a ranked, paginated result. It performs no I/O.
package ranking

import (
	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/pkg/pagination"
)

// Rank filters, matches, scores, sorts and paginates items for req, which
// must already be normalized.
func Rank(items []domain.CatalogItem, req domain.SearchRequest, c Criteria) *domain.SearchResult {
	filtered := Filter(items, c)
	if len(filtered) == 0 {
		return domain.EmptyResult(req)
	}

	var records []domain.MatchRecord
	if req.Query == "" {
		records = matchAll(filtered)
	} else {
		records = Match(filtered, req.Query)
	}

	for i := range records {
		records[i] = Boost(records[i])
	}

	Sort(records, req.SortBy, req.SortOrder)

	page := req.Page()
	total := len(records)
	start, end := pagination.Window(total, page)

	results := make([]domain.ScoredItem, 0, end-start)
	for _, rec := range records[start:end] {
		matches := rec.Matches
		if matches == nil {
			matches = []domain.FieldMatch{}
		}
		results = append(results, domain.ScoredItem{
			CatalogItem: *rec.Item,
			Score:       rec.Score,
			Matches:     matches,
		})
	}

	return &domain.SearchResult{
		Results: results,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasNext: pagination.HasNext(total, page),
		HasPrev: pagination.HasPrev(page),
		Filters: domain.FiltersOf(req),
	}
}
