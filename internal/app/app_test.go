package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog-search/internal/config"
)

const seed = `[
  {"id": "p-1", "name": "iPhone 14", "brand": {"id": "b-apple", "name": "Apple"}, "category": {"id": "c-phones", "name": "Smartphones"}, "price": 799, "stock_quantity": 10, "status": "active"},
  {"id": "p-2", "name": "Galaxy S23", "brand": {"id": "b-samsung", "name": "Samsung"}, "category": {"id": "c-phones", "name": "Smartphones"}, "price": 699, "stock_quantity": 25, "status": "active"}
]`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func baseConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		HTTPPort:          8010,
		CatalogBackend:    config.BackendMemory,
		CacheTTL:          time.Minute,
		CacheMaxEntries:   10,
		PopularityBackend: config.PopularityMemory,
		PopularityKey:     "search:popular",
		SuggestMaxAgeSecs: 30,
	}
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestNewApp_MemoryCatalogFromSeed(t *testing.T) {
	cfg := baseConfig()
	cfg.CatalogSeedFile = writeSeed(t, seed)

	a, err := NewApp(context.Background(), cfg, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	assert.Equal(t, ":8010", a.httpServer.Addr)
	assert.Nil(t, a.consumer)

	code, body := get(t, a.httpServer.Handler, "/api/v1/search?q=galaxy")
	require.Equal(t, http.StatusOK, code)

	var res struct {
		Total   int `json:"total"`
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &res))
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "p-2", res.Results[0].ID)

	code, _ = get(t, a.httpServer.Handler, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
}

func TestNewApp_RedisPopularity(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.CatalogSeedFile = writeSeed(t, seed)
	cfg.PopularityBackend = config.PopularityRedis
	cfg.RedisAddr = mr.Addr()

	a, err := NewApp(context.Background(), cfg, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	code, _ := get(t, a.httpServer.Handler, "/api/v1/search?q=iPhone")
	require.Equal(t, http.StatusOK, code)

	score, err := mr.ZScore(cfg.PopularityKey, "iphone")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	code, body := get(t, a.httpServer.Handler, "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body["checks"]), "popularity")
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("missing seed file", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CatalogSeedFile = filepath.Join(t.TempDir(), "missing.json")

		_, err := NewApp(context.Background(), cfg, newTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load catalog seed")
	})

	t.Run("invalid seed item", func(t *testing.T) {
		cfg := baseConfig()
		cfg.CatalogSeedFile = writeSeed(t, `[{"id": "p-1", "status": "active", "brand": {"id": "b"}, "category": {"id": "c"}}]`)

		_, err := NewApp(context.Background(), cfg, newTestLogger())
		require.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := baseConfig()
		cfg.PopularityBackend = config.PopularityRedis
		cfg.RedisAddr = "127.0.0.1:1"

		_, err := NewApp(context.Background(), cfg, newTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect popularity store")
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := baseConfig()
	a, err := NewApp(context.Background(), cfg, newTestLogger())
	require.NoError(t, err)
	a.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
