package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/catalog-search/internal/service"
	"github.com/utafrali/catalog-search/pkg/httputil"
)

// AdminHandler exposes cache and popularity maintenance endpoints.
type AdminHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.SearchService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// CacheStats handles GET /api/v1/search/admin/cache
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.CacheStats())
}

// ClearCache handles DELETE /api/v1/search/admin/cache
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache(r.Context())
	httputil.WriteData(w, map[string]string{"status": "cleared"})
}

// ClearPopular handles DELETE /api/v1/search/admin/popular
func (h *AdminHandler) ClearPopular(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearPopularity(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, map[string]string{"status": "cleared"})
}
