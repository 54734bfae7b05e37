// Package client is a typed client for the catalog search HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/pkg/httpclient"
)

const apiPrefix = "/api/v1/search"

// CacheStats is the admin view of the result cache as sent over the wire.
type CacheStats struct {
	Total      int     `json:"total"`
	Active     int     `json:"active"`
	Expired    int     `json:"expired"`
	TTL        string  `json:"ttl"`
	TTLSeconds float64 `json:"ttlSeconds"`
}

// SearchParams are the query parameters of a search call. Zero values are
// omitted so the server applies its defaults.
type SearchParams struct {
	Query    string
	Brand    string
	Category string
	MinPrice float64
	MaxPrice *float64
	InStock  bool
	Sort     string
	Order    string
	Limit    int
	Offset   int
}

// Values encodes p as URL query parameters.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", p.Query)
	set("brand", p.Brand)
	set("category", p.Category)
	set("sort", p.Sort)
	set("order", p.Order)
	if p.MinPrice > 0 {
		v.Set("min_price", strconv.FormatFloat(p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.InStock {
		v.Set("in_stock", "true")
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

// Client talks to one search service instance through a circuit breaker.
type Client struct {
	baseURL string
	http    *httpclient.Breaker
}

// New creates a client for the service at baseURL.
func New(baseURL string, cfg httpclient.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.NewBreaker(httpclient.New(cfg), httpclient.DefaultBreakerConfig("catalog-search"), logger),
	}
}

// Search runs a ranked search.
func (c *Client) Search(ctx context.Context, p SearchParams) (*domain.SearchResult, error) {
	var result domain.SearchResult
	if err := c.get(ctx, apiPrefix+"?"+p.Values().Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Suggest lists popular queries starting with prefix.
func (c *Client) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	q := url.Values{"q": {prefix}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.get(ctx, apiPrefix+"/suggest?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// Popular lists the most searched queries.
func (c *Client) Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	path := apiPrefix + "/popular"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Queries []domain.PopularQuery `json:"queries"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

// CacheStats reports result cache occupancy.
func (c *Client) CacheStats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	if err := c.get(ctx, apiPrefix+"/admin/cache", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ClearCache empties the result cache.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.delete(ctx, apiPrefix+"/admin/cache")
}

// ClearPopular resets every popularity counter.
func (c *Client) ClearPopular(ctx context.Context) error {
	return c.delete(ctx, apiPrefix+"/admin/popular")
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	resp, err := c.http.Get(ctx, c.baseURL+path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return decode(resp, dst)
}

func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.http.Delete(ctx, c.baseURL+path)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	return decode(resp, nil)
}

// decode unwraps the data member of the response envelope into dst and
// closes the body. Non-2xx responses become errors.
func decode(resp *http.Response, dst any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, "catalog-search")
	}
	defer func() { _ = resp.Body.Close() }()

	if dst == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("decode response: missing data")
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
