package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/popularity"
	apperrors "github.com/utafrali/catalog-search/pkg/errors"
)

// Bounds for popular-query and suggestion listings.
const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 100
)

const popularityDependency = "popularity store"

// ItemRemover is implemented by self-hosted catalog stores that can drop a
// single item when the upstream catalog deletes it.
type ItemRemover interface {
	Delete(ctx context.Context, id string) error
}

// ClampPopularLimit maps a requested listing size into [1, MaxPopularLimit],
// substituting the default for non-positive values.
func ClampPopularLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPopularLimit
	case limit > MaxPopularLimit:
		return MaxPopularLimit
	default:
		return limit
	}
}

// ClearCache drops every cached search result.
func (s *SearchService) ClearCache(ctx context.Context) {
	s.cache.Clear()
	s.logger.InfoContext(ctx, "search cache cleared")
}

// CacheStats reports the occupancy of the result cache.
func (s *SearchService) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}

// PopularQueries returns the most searched queries, most frequent first.
func (s *SearchService) PopularQueries(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	top, err := s.tracker.Top(ctx, ClampPopularLimit(limit))
	if err != nil {
		return nil, apperrors.Unavailable(popularityDependency, err)
	}
	return top, nil
}

// ClearPopularity resets all query counters.
func (s *SearchService) ClearPopularity(ctx context.Context) error {
	if err := s.tracker.Clear(ctx); err != nil {
		return apperrors.Unavailable(popularityDependency, err)
	}
	s.logger.InfoContext(ctx, "query popularity cleared")
	return nil
}

// Suggest returns popular queries starting with prefix, most frequent
// first. An empty prefix yields no suggestions.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = popularity.Normalize(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	limit = ClampPopularLimit(limit)

	top, err := s.tracker.Top(ctx, MaxPopularLimit)
	if err != nil {
		return nil, apperrors.Unavailable(popularityDependency, err)
	}

	suggestions := make([]string, 0, limit)
	for _, pq := range top {
		if !strings.HasPrefix(pq.Query, prefix) {
			continue
		}
		suggestions = append(suggestions, pq.Query)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// InvalidateCatalog clears the result cache after the catalog changed
// upstream. The cache holds no per-item index, so every entry goes.
func (s *SearchService) InvalidateCatalog(ctx context.Context, reason string) {
	s.cache.Clear()
	s.logger.InfoContext(ctx, "search cache invalidated",
		slog.String("reason", reason),
	)
}

// RemoveItem drops an item from a self-hosted catalog store, if the
// configured store supports it, and invalidates the cache.
func (s *SearchService) RemoveItem(ctx context.Context, id string) error {
	if remover, ok := s.catalog.(ItemRemover); ok {
		if err := remover.Delete(ctx, id); err != nil {
			return apperrors.Wrap(err, "remove catalog item")
		}
	}
	s.InvalidateCatalog(ctx, "item removed")
	return nil
}
