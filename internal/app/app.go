package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalog-search/internal/cache"
	"github.com/utafrali/catalog-search/internal/config"
	"github.com/utafrali/catalog-search/internal/event"
	handler "github.com/utafrali/catalog-search/internal/handler/http"
	"github.com/utafrali/catalog-search/internal/popularity"
	"github.com/utafrali/catalog-search/internal/repository"
	esrepo "github.com/utafrali/catalog-search/internal/repository/elasticsearch"
	"github.com/utafrali/catalog-search/internal/repository/memory"
	pgrepo "github.com/utafrali/catalog-search/internal/repository/postgres"
	"github.com/utafrali/catalog-search/internal/service"
	"github.com/utafrali/catalog-search/pkg/database"
	"github.com/utafrali/catalog-search/pkg/health"
	pkgkafka "github.com/utafrali/catalog-search/pkg/kafka"
	"github.com/utafrali/catalog-search/pkg/logger"
	"github.com/utafrali/catalog-search/pkg/middleware"
	"github.com/utafrali/catalog-search/pkg/tracing"
)

// ServiceName identifies the service in logs, traces and metrics.
const ServiceName = "catalog-search"

const shutdownTimeout = 10 * time.Second

// App wires together all dependencies and runs the search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	consumer   *pkgkafka.Consumer
	httpServer *http.Server

	pool           *pgxpool.Pool
	redis          *redis.Client
	shutdownTracer func(context.Context) error
}

// catalogBackend is what a configured catalog source contributes to the app.
type catalogBackend struct {
	catalog repository.CatalogRepository
	refs    repository.ReferenceLookup
	ping    health.Checker
}

// NewApp creates a new application instance, initializing all dependencies.
// Resources opened before a failure are released before returning.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.closeResources(context.Background())
		}
	}()

	a.shutdownTracer, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	backend, err := a.openCatalog(ctx)
	if err != nil {
		return nil, err
	}

	tracker, err := a.openPopularity(ctx)
	if err != nil {
		return nil, err
	}

	resultCache := cache.New(
		cache.WithTTL(cfg.CacheTTL),
		cache.WithMaxEntries(cfg.CacheMaxEntries),
	)

	searchService := service.NewSearchService(
		backend.catalog,
		backend.refs,
		resultCache,
		tracker,
		logger.WithComponent(log, "search"),
		service.WithMaxCandidates(cfg.MaxCandidates),
	)

	healthHandler := health.NewHandler()
	if backend.ping != nil {
		healthHandler.RegisterCritical("catalog", backend.ping)
	}
	if a.redis != nil {
		healthHandler.RegisterNonCritical("popularity", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	if cfg.EventsEnabled {
		eventConsumer := event.NewConsumer(searchService, logger.WithComponent(log, "events"))
		a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaGroupID,
			Topics:   event.Topics(),
			MinBytes: 1,
			MaxBytes: 10e6,
		}, eventConsumer.Handle, log)
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
		log.Info("kafka consumer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Any("topics", event.Topics()),
		)
	}

	router := handler.NewRouter(searchService, healthHandler, log, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		AdminCIDRs:    cfg.AdminAllowedCIDRs,
		PprofEnabled:  cfg.PprofEnabled,
		SuggestMaxAge: cfg.SuggestMaxAgeSecs,
		RateLimit: middleware.RateLimitConfig{
			RPS:            cfg.RateLimitRPS,
			Burst:          cfg.RateLimitBurst,
			TrustedProxies: cfg.TrustedProxyCIDRs,
		},
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) openCatalog(ctx context.Context) (catalogBackend, error) {
	cfg := a.cfg

	switch cfg.CatalogBackend {
	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), a.logger)
		if err != nil {
			return catalogBackend{}, fmt.Errorf("connect catalog database: %w", err)
		}
		a.pool = pool

		database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), a.logger)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		a.logger.Info("postgres catalog initialized",
			slog.String("host", cfg.PostgresHost),
			slog.String("database", cfg.PostgresDB),
		)
		return catalogBackend{
			catalog: pgrepo.NewCatalogRepository(pool),
			refs:    pgrepo.NewReferenceRepository(pool),
			ping:    pool.Ping,
		}, nil

	case config.BackendElasticsearch:
		es, err := esrepo.New(ctx, esrepo.Config{
			Addresses:     cfg.ElasticsearchURLs,
			Index:         cfg.ElasticsearchIndex,
			MaxCandidates: cfg.ElasticsearchMaxCandidates,
			PageSize:      cfg.ElasticsearchPageSize,
		}, a.logger)
		if err != nil {
			return catalogBackend{}, fmt.Errorf("init elasticsearch catalog: %w", err)
		}

		// The index holds no brand or category documents, so slugs resolve
		// against the seed catalog.
		refs, err := a.loadSeed(ctx)
		if err != nil {
			return catalogBackend{}, err
		}
		if refs.Len() > 0 {
			items, err := refs.Candidates(ctx, repository.CandidateFilter{})
			if err != nil {
				return catalogBackend{}, fmt.Errorf("read catalog seed: %w", err)
			}
			if err := es.BulkIndex(ctx, items); err != nil {
				return catalogBackend{}, fmt.Errorf("index catalog seed: %w", err)
			}
		}

		a.logger.Info("elasticsearch catalog initialized",
			slog.Any("urls", cfg.ElasticsearchURLs),
			slog.String("index", cfg.ElasticsearchIndex),
			slog.Int("seeded", refs.Len()),
		)
		return catalogBackend{catalog: es, refs: refs, ping: es.Ping}, nil

	default:
		store, err := a.loadSeed(ctx)
		if err != nil {
			return catalogBackend{}, err
		}
		a.logger.Info("in-memory catalog initialized", slog.Int("items", store.Len()))
		return catalogBackend{catalog: store, refs: store}, nil
	}
}

func (a *App) loadSeed(ctx context.Context) (*memory.Catalog, error) {
	store := memory.New()
	if a.cfg.CatalogSeedFile == "" {
		return store, nil
	}
	if err := store.LoadFile(ctx, a.cfg.CatalogSeedFile); err != nil {
		return nil, fmt.Errorf("load catalog seed %s: %w", a.cfg.CatalogSeedFile, err)
	}
	return store, nil
}

func (a *App) openPopularity(ctx context.Context) (popularity.Tracker, error) {
	if a.cfg.PopularityBackend != config.PopularityRedis {
		a.logger.Info("in-memory popularity tracker initialized")
		return popularity.NewMemory(), nil
	}

	client, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect popularity store: %w", err)
	}
	a.redis = client

	a.logger.Info("redis popularity tracker initialized",
		slog.String("addr", a.cfg.RedisAddr),
		slog.String("key", a.cfg.PopularityKey),
	)
	return popularity.NewRedis(client, a.cfg.PopularityKey), nil
}

// Run starts the HTTP server and, when enabled, the event consumer. It
// blocks until ctx is canceled or a component fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed", slog.String("error", runErr.Error()))
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	errs = append(errs, a.closeResources(ctx)...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeResources(ctx context.Context) []error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	return errs
}
