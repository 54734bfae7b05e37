// Package elasticsearch fetches candidate catalog items from an
// Elasticsearch index.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/repository"
	"github.com/utafrali/catalog-search/pkg/database"
)

// DefaultPageSize is the number of hits fetched per search_after page.
const DefaultPageSize = 500

// Config holds the connection settings of the candidate source.
type Config struct {
	Addresses     []string
	Index string
	// MaxCandidates optionally caps a candidate fetch; 0 fetches every
	// matching item.
	MaxCandidates int
	// PageSize is the number of hits per request; 0 means DefaultPageSize.
	PageSize int
	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// Catalog is an Elasticsearch-backed repository.CatalogRepository.
type Catalog struct {
	client        *elasticsearch.Client
	indexName     string
	maxCandidates int
	pageSize      int
	logger        *slog.Logger
}

var _ repository.CatalogRepository = (*Catalog)(nil)

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source domain.CatalogItem `json:"_source"`
			Sort   json.RawMessage    `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID    string `json:"_id"`
			Error struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// New connects to Elasticsearch and makes sure the catalog index exists.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Catalog, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndexName
	}
	if cfg.MaxCandidates < 0 {
		cfg.MaxCandidates = 0
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	c := &Catalog{
		client:        client,
		indexName:     cfg.Index,
		maxCandidates: cfg.MaxCandidates,
		pageSize:      cfg.PageSize,
		logger:        logger,
	}

	if err := c.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}

	return c, nil
}

// Ping checks whether the cluster is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (c *Catalog) ensureIndex(ctx context.Context) error {
	res, err := c.client.Indices.Exists([]string{c.indexName}, c.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		c.logger.Info("elasticsearch index already exists", slog.String("index", c.indexName))
		return nil
	}

	res, err = c.client.Indices.Create(
		c.indexName,
		c.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		c.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}

	c.logger.Info("elasticsearch index created", slog.String("index", c.indexName))
	return nil
}

// Candidates returns every active item matching the filter, paging
// through the index with search_after on the (created_at, id) sort. A
// configured or requested limit stops the walk early.
func (c *Catalog) Candidates(ctx context.Context, filter repository.CandidateFilter) (_ []domain.CatalogItem, err error) {
	limit := c.maxCandidates
	if filter.Limit > 0 && (limit == 0 || filter.Limit < limit) {
		limit = filter.Limit
	}

	items := []domain.CatalogItem{}
	var after json.RawMessage
	for {
		size := c.pageSize
		if limit > 0 && limit-len(items) < size {
			size = limit - len(items)
		}

		page, last, err := c.candidatePage(ctx, filter, size, after)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if len(page) < size || last == nil {
			return items, nil
		}
		if limit > 0 && len(items) >= limit {
			c.logger.WarnContext(ctx, "elasticsearch candidate cap reached, remaining items skipped",
				slog.Int("cap", limit),
				slog.String("index", c.indexName),
			)
			return items, nil
		}
		after = last
	}
}

// candidatePage fetches one page of candidates after the given sort
// values. It returns the sort values of the last hit for the next page.
func (c *Catalog) candidatePage(ctx context.Context, filter repository.CandidateFilter, size int, after json.RawMessage) (_ []domain.CatalogItem, _ json.RawMessage, err error) {
	data, err := json.Marshal(buildCandidateQuery(filter, size, after))
	if err != nil {
		return nil, nil, fmt.Errorf("elasticsearch candidates: marshal query: %w", err)
	}

	ctx, end := database.TraceOperation(ctx, database.SystemElasticsearch, "Candidates", string(data))
	defer func() { end(err) }()

	res, err := c.client.Search(
		c.client.Search.WithIndex(c.indexName),
		c.client.Search.WithBody(bytes.NewReader(data)),
		c.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("elasticsearch candidates: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, nil, responseError("elasticsearch candidates", res.Status(), res.Body)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, nil, fmt.Errorf("elasticsearch candidates: decode response: %w", err)
	}

	hits := esResp.Hits.Hits
	items := make([]domain.CatalogItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, hit.Source)
	}
	if len(hits) == 0 {
		return items, nil, nil
	}
	return items, hits[len(hits)-1].Sort, nil
}

// buildCandidateQuery constructs a filter-only query; relevance is not
// computed by Elasticsearch. after holds the sort values of the previous
// page's last hit, if any.
func buildCandidateQuery(filter repository.CandidateFilter, size int, after json.RawMessage) map[string]any {
	filters := []any{
		map[string]any{"term": map[string]any{"status": domain.ItemStatusActive}},
	}
	if filter.BrandID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"brand.id": filter.BrandID}})
	}
	if filter.CategoryID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category.id": filter.CategoryID}})
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"filter": filters},
		},
		"size": size,
		"sort": []any{
			map[string]any{"created_at": "asc"},
			map[string]any{"id": "asc"},
		},
	}
	if len(after) > 0 {
		query["search_after"] = after
	}
	return query
}

// BulkIndex adds or replaces items using the bulk NDJSON API. It is used
// to load a seed file into an empty index.
func (c *Catalog) BulkIndex(ctx context.Context, items []domain.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range items {
		action := map[string]any{
			"index": map[string]any{"_index": c.indexName, "_id": items[i].ID},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(items[i]); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := c.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.client.Bulk.WithIndex(c.indexName),
		c.client.Bulk.WithRefresh("true"),
		c.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("elasticsearch bulk index", res.Status(), res.Body)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var msgs []string
		for _, it := range bulkResp.Items {
			if it.Index.Error.Type != "" {
				msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", it.Index.ID, it.Index.Error.Type, it.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(msgs, "; "))
	}

	c.logger.Info("bulk indexed catalog items", slog.Int("count", len(items)))
	return nil
}

// Delete removes an item document. A missing document is not an error.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.client.Delete(c.indexName, id, c.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete", res.Status(), res.Body)
	}
	return nil
}

func responseError(op, status string, body io.Reader) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}
