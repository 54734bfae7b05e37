package config

import (
	"fmt"
	"net"
	"time"

	pkgconfig "github.com/utafrali/catalog-search/pkg/config"
	"github.com/utafrali/catalog-search/pkg/database"
)

// Catalog backends.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
	BackendMemory        = "memory"
)

// Popularity backends.
const (
	PopularityMemory = "memory"
	PopularityRedis  = "redis"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Catalog source selection (postgres, elasticsearch or memory)
	CatalogBackend  string `env:"CATALOG_BACKEND" envDefault:"postgres"`
	CatalogSeedFile string `env:"CATALOG_SEED_FILE"`
	// MaxCandidates caps the items fetched per search; 0 means no cap.
	MaxCandidates int `env:"SEARCH_MAX_CANDIDATES" envDefault:"0"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"product_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Elasticsearch
	ElasticsearchURLs     []string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200" envSeparator:","`
	ElasticsearchIndex    string   `env:"ELASTICSEARCH_INDEX" envDefault:"catalog_items"`
	ElasticsearchPageSize int      `env:"ELASTICSEARCH_PAGE_SIZE" envDefault:"500"`
	// ElasticsearchMaxCandidates optionally caps a candidate fetch; 0 reads
	// every matching document.
	ElasticsearchMaxCandidates int `env:"ELASTICSEARCH_MAX_CANDIDATES" envDefault:"0"`

	// Result cache
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"100"`

	// Popularity tracking (memory or redis)
	PopularityBackend string `env:"POPULARITY_BACKEND" envDefault:"memory"`
	PopularityKey     string `env:"POPULARITY_REDIS_KEY" envDefault:"search:popular"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID  string   `env:"KAFKA_GROUP_ID" envDefault:"search-service"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP surface
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SuggestMaxAgeSecs  int      `env:"SUGGEST_CACHE_MAX_AGE" envDefault:"30"`
	// AdminAllowedCIDRs restricts the admin endpoints and pprof. An empty
	// list denies every caller.
	AdminAllowedCIDRs []string `env:"ADMIN_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`

	// Per-client rate limit on the search routes; 0 disables it.
	RateLimitRPS   float64 `env:"SEARCH_RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"SEARCH_RATE_LIMIT_BURST" envDefault:"20"`
	// TrustedProxyCIDRs are the peers whose forwarding headers identify
	// the client for rate limiting.
	TrustedProxyCIDRs []string `env:"SEARCH_TRUSTED_PROXY_CIDRS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.CatalogBackend {
	case BackendPostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
	case BackendElasticsearch:
		if len(c.ElasticsearchURLs) == 0 {
			return fmt.Errorf("ELASTICSEARCH_URL is required")
		}
		if c.ElasticsearchPageSize < 1 {
			return fmt.Errorf("ELASTICSEARCH_PAGE_SIZE must be at least 1, got %d", c.ElasticsearchPageSize)
		}
		if c.ElasticsearchMaxCandidates < 0 {
			return fmt.Errorf("ELASTICSEARCH_MAX_CANDIDATES must not be negative, got %d", c.ElasticsearchMaxCandidates)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("CATALOG_BACKEND must be one of postgres, elasticsearch, memory, got %q", c.CatalogBackend)
	}

	switch c.PopularityBackend {
	case PopularityMemory:
	case PopularityRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return fmt.Errorf("POPULARITY_BACKEND must be one of memory, redis, got %q", c.PopularityBackend)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheMaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1, got %d", c.CacheMaxEntries)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("SEARCH_MAX_CANDIDATES must not be negative, got %d", c.MaxCandidates)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	for _, cidr := range c.AdminAllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("ADMIN_ALLOWED_CIDRS has invalid entry %q", cidr)
		}
	}
	for _, cidr := range c.TrustedProxyCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("SEARCH_TRUSTED_PROXY_CIDRS has invalid entry %q", cidr)
		}
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection pool settings for the catalog database.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// SlowQueryThreshold returns the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// Redis returns the connection settings for the popularity store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}
