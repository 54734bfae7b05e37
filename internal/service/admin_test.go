package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-search/internal/cache"
	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/popularity"
	apperrors "github.com/utafrali/catalog-search/pkg/errors"
)

func TestClampPopularLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPopularLimit},
		{-4, DefaultPopularLimit},
		{1, 1},
		{55, 55},
		{100, 100},
		{101, MaxPopularLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPopularLimit(tt.in), "limit %d", tt.in)
	}
}

func TestPopularQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, q := range []string{"iphone", "galaxy", "iphone", "macbook", "iPhone"} {
		_, err := f.svc.Search(ctx, domain.SearchRequest{Query: q})
		require.NoError(t, err)
	}

	top, err := f.svc.PopularQueries(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.PopularQuery{
		{Query: "iphone", Count: 3},
		{Query: "galaxy", Count: 1},
	}, top)

	all, err := f.svc.PopularQueries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClearPopularity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, domain.SearchRequest{Query: "iphone"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearPopularity(ctx))

	top, err := f.svc.PopularQueries(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestPopularity_TrackerFailure(t *testing.T) {
	store := seedCatalog(t)
	svc := NewSearchService(store, store, cache.New(), failingTracker{}, newTestLogger())
	ctx := context.Background()

	_, err := svc.PopularQueries(ctx, 10)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))

	err = svc.ClearPopularity(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))

	_, err = svc.Suggest(ctx, "ip", 5)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestSuggest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, q := range []string{"iphone 14", "ipad", "iphone 14", "galaxy", "iphone case"} {
		require.NoError(t, f.tracker.Record(ctx, q))
	}

	got, err := f.svc.Suggest(ctx, " IP", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"iphone 14", "ipad", "iphone case"}, got)

	got, err = f.svc.Suggest(ctx, "iphone", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"iphone 14"}, got)

	got, err = f.svc.Suggest(ctx, "   ", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClearCacheAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, domain.SearchRequest{Query: "iphone"})
	require.NoError(t, err)
	_, err = f.svc.Search(ctx, domain.SearchRequest{Query: "galaxy"})
	require.NoError(t, err)

	stats := f.svc.CacheStats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, cache.DefaultTTL, stats.TTL)

	f.svc.ClearCache(ctx)
	assert.Equal(t, 0, f.svc.CacheStats().Total)

	_, err = f.svc.Search(ctx, domain.SearchRequest{Query: "iphone"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.catalog.calls.Load())
}

func TestInvalidateCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, domain.SearchRequest{Query: "iphone"})
	require.NoError(t, err)

	f.svc.InvalidateCatalog(ctx, "product.updated")
	assert.Equal(t, 0, f.cache.Len())
}

func TestRemoveItem(t *testing.T) {
	store := seedCatalog(t)
	c := cache.New()
	svc := NewSearchService(store, store, c, popularity.NewMemory(), newTestLogger())
	ctx := context.Background()

	res, err := svc.Search(ctx, domain.SearchRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)

	require.NoError(t, svc.RemoveItem(ctx, "p-2"))
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 0, c.Len())

	res, err = svc.Search(ctx, domain.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-3"}, resultIDs(res))
}

func TestRemoveItem_ReadOnlyCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, domain.SearchRequest{})
	require.NoError(t, err)

	// countingCatalog exposes only Candidates, so nothing is deleted.
	require.NoError(t, f.svc.RemoveItem(ctx, "p-2"))
	assert.Equal(t, 3, f.store.Len())
	assert.Equal(t, 0, f.cache.Len())
}
