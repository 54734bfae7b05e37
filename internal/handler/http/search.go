package http

import (
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utafrali/catalog-search/internal/domain"
	"github.com/utafrali/catalog-search/internal/service"
	"github.com/utafrali/catalog-search/pkg/httputil"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := ParseSearchRequest(r.URL.Query())

	result, err := h.service.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, result)
}

// Suggest handles GET /api/v1/search/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	suggestions, err := h.service.Suggest(r.Context(), q.Get("q"), intParam(q, "limit", service.DefaultPopularLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, map[string]any{"suggestions": suggestions})
}

// Popular handles GET /api/v1/search/popular
func (h *SearchHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query(), "limit", service.DefaultPopularLimit)

	queries, err := h.service.PopularQueries(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, map[string]any{"queries": queries})
}

// ParseSearchRequest builds a search request from URL query parameters.
// Malformed numbers and booleans are treated as absent, so the request
// falls back to its defaults instead of being rejected.
func ParseSearchRequest(q url.Values) domain.SearchRequest {
	req := domain.SearchRequest{
		Query:     q.Get("q"),
		Brand:     q.Get("brand"),
		Category:  q.Get("category"),
		SortBy:    domain.SortKey(q.Get("sort")),
		SortOrder: domain.SortOrder(q.Get("order")),
		Limit:     intParam(q, "limit", 0),
		Offset:    intParam(q, "offset", 0),
	}

	if v, ok := priceParam(q, "min_price"); ok {
		req.MinPrice = v
	}
	if v, ok := priceParam(q, "max_price"); ok {
		req.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(q.Get("in_stock")); err == nil {
		req.InStock = v
	}

	return req
}

func priceParam(q url.Values, name string) (float64, bool) {
	v, err := strconv.ParseFloat(q.Get(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func intParam(q url.Values, name string, fallback int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return fallback
	}
	return v
}
