package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/catalog-search/internal/cache"
	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/popularity"
	"github.com/utafrali/catalog-search/internal/ranking"
	"github.com/utafrali/catalog-search/internal/repository"
	apperrors "github.com/utafrali/catalog-search/pkg/errors"
	"github.com/utafrali/catalog-search/pkg/tracing"
)

const tracerName = "github.com/utafrali/catalog-search/internal/service"

// catalogDependency names the catalog store in client-facing errors.
const catalogDependency = "catalog"

// SearchService answers search requests by ranking catalog candidates,
// memoizing results in the result cache and counting query popularity.
type SearchService struct {
	catalog repository.CatalogRepository
	refs    repository.ReferenceLookup
	cache   *cache.Cache
	tracker popularity.Tracker
	logger  *slog.Logger
	tracer  trace.Tracer

	group         singleflight.Group
	maxCandidates int
	now           func() time.Time
}

// Option configures a SearchService.
type Option func(*SearchService)

// WithMaxCandidates caps how many items are fetched from the catalog per
// search. Zero means no cap.
func WithMaxCandidates(n int) Option {
	return func(s *SearchService) {
		if n >= 0 {
			s.maxCandidates = n
		}
	}
}

// WithClock overrides the clock used to measure search duration.
func WithClock(now func() time.Time) Option {
	return func(s *SearchService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSearchService creates a new SearchService.
func NewSearchService(
	catalog repository.CatalogRepository,
	refs repository.ReferenceLookup,
	c *cache.Cache,
	tracker popularity.Tracker,
	logger *slog.Logger,
	opts ...Option,
) *SearchService {
	s := &SearchService{
		catalog: catalog,
		refs:    refs,
		cache:   c,
		tracker: tracker,
		logger:  logger,
		tracer:  tracing.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search normalizes req, records the query, and returns the ranked page.
// Identical normalized requests are served from the cache until the entry
// expires; concurrent identical misses share one computation.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "SearchService.Search")
	defer span.End()

	n := req.Normalize()
	span.SetAttributes(
		attribute.String("search.query", n.Query),
		attribute.String("search.sort", string(n.SortBy)),
		attribute.Int("search.limit", n.Limit),
		attribute.Int("search.offset", n.Offset),
	)

	if n.Query != "" {
		if err := s.tracker.Record(ctx, n.Query); err != nil {
			s.logger.WarnContext(ctx, "failed to record query popularity",
				slog.String("query", n.Query),
				slog.String("error", err.Error()),
			)
		}
	}

	key := cache.KeyFor(n)
	if res, ok := s.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return res, nil
	}
	span.SetAttributes(attribute.Bool("search.cache_hit", false))

	// The computation outlives a cancelled leader so that followers sharing
	// the flight still get a result. Flights are keyed by cache generation
	// so a request arriving after an invalidation never joins a flight that
	// read the catalog before it.
	gen := s.cache.Generation()
	flightKey := strconv.FormatUint(gen, 10) + ":" + string(key[:])
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(flightKey, func() (any, error) {
		return s.compute(flightCtx, n, key, gen)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if shared {
		span.SetAttributes(attribute.Bool("search.shared", true))
	}
	return v.(*domain.SearchResult), nil
}

// compute runs a search end to end and stores the result under key,
// unless the cache was cleared after gen was read.
func (s *SearchService) compute(ctx context.Context, n domain.SearchRequest, key cache.Key, gen uint64) (*domain.SearchResult, error) {
	start := s.now()

	brandID, categoryID, found, err := s.resolveRefs(ctx, n)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve search references",
			slog.String("brand", n.Brand),
			slog.String("category", n.Category),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unavailable(catalogDependency, err)
	}

	var result *domain.SearchResult
	if !found {
		result = domain.EmptyResult(n)
	} else {
		items, err := s.catalog.Candidates(ctx, repository.CandidateFilter{
			BrandID:    brandID,
			CategoryID: categoryID,
			Limit:      s.maxCandidates,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to fetch search candidates",
				slog.String("query", n.Query),
				slog.String("error", err.Error()),
			)
			return nil, apperrors.Unavailable(catalogDependency, err)
		}
		result = ranking.Rank(items, n, ranking.CriteriaFor(n, brandID, categoryID))
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	if !s.cache.SetIfGeneration(key, result, gen) {
		s.logger.DebugContext(ctx, "catalog changed during search, result not cached",
			slog.String("query", n.Query),
		)
	}

	s.logger.DebugContext(ctx, "search computed",
		slog.String("query", n.Query),
		slog.Int("total", result.Total),
		slog.Int64("duration_ms", result.DurationMs),
	)
	return result, nil
}

// resolveRefs turns the brand and category slugs of n into identifiers.
// found is false when a non-empty slug is unknown, in which case the
// search matches nothing.
func (s *SearchService) resolveRefs(ctx context.Context, n domain.SearchRequest) (brandID, categoryID string, found bool, err error) {
	if n.Brand == "" && n.Category == "" {
		return "", "", true, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if n.Brand != "" {
		g.Go(func() error {
			id, err := s.refs.BrandID(gctx, n.Brand)
			if err != nil {
				return fmt.Errorf("resolve brand %q: %w", n.Brand, err)
			}
			brandID = id
			return nil
		})
	}
	if n.Category != "" {
		g.Go(func() error {
			id, err := s.refs.CategoryID(gctx, n.Category)
			if err != nil {
				return fmt.Errorf("resolve category %q: %w", n.Category, err)
			}
			categoryID = id
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return brandID, categoryID, true, nil
}
