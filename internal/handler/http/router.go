package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/catalog-search/internal/service"
	"github.com/utafrali/catalog-search/pkg/health"
	"github.com/utafrali/catalog-search/pkg/middleware"
)

const serviceName = "catalog-search"

// RouterConfig carries the HTTP-facing settings of the router.
type RouterConfig struct {
	CORS middleware.CORSConfig
	// AdminCIDRs restricts the admin and pprof routes. Empty denies
	// every caller.
	AdminCIDRs   []string
	PprofEnabled bool
	// SuggestMaxAge is the Cache-Control max-age, in seconds, of the
	// suggest and popular listings.
	SuggestMaxAge int
	// RateLimit bounds each client on the public search routes.
	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all search service routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.AdminCIDRs, logger)
	}

	searchHandler := NewSearchHandler(searchService, logger)
	adminHandler := NewAdminHandler(searchService, logger)

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimit, logger))
			r.Get("/", searchHandler.Search)

			r.Group(func(r chi.Router) {
				r.Use(middleware.CacheControl(cfg.SuggestMaxAge))
				r.Get("/suggest", searchHandler.Suggest)
				r.Get("/popular", searchHandler.Popular)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.IPAllowlist(cfg.AdminCIDRs, logger))
			r.Get("/cache", adminHandler.CacheStats)
			r.Delete("/cache", adminHandler.ClearCache)
			r.Delete("/popular", adminHandler.ClearPopular)
		})
	})

	return r
}
