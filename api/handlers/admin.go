package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/quillcache/llmproxy/internal/cache"
	"github.com/quillcache/llmproxy/internal/embedding"
	"github.com/quillcache/llmproxy/internal/metrics"
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

// AdminHandler serves the operator-facing cache-clear and stats
// endpoints. Neither endpoint requires authentication, per the
// specification's explicit non-goal of request auth.
type AdminHandler struct {
	exact    *cache.Manager
	vector   *vectorcache.Client
	embedder *embedding.Client
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(exact *cache.Manager, vector *vectorcache.Client, embedder *embedding.Client, registry *metrics.Registry, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{exact: exact, vector: vector, embedder: embedder, registry: registry, logger: logger}
}

// HandleCacheClear serves POST /admin/cache/clear: flushes the exact
// tier only. The vector tier is intentionally untouched.
func (h *AdminHandler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.exact.FlushAll(r.Context()); err != nil {
		h.logger.Error("admin cache clear failed", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "exact cache cleared",
	})
}

// adminStatsResponse is the /admin/stats payload: MetricsSnapshot plus
// the same live service status used by /health.
type adminStatsResponse struct {
	CacheStats metrics.Snapshot `json:"cache_stats"`
	Services   Services         `json:"services"`
}

// HandleStats serves GET /admin/stats.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	services, _ := probeServices(r.Context(), h.exact, h.vector, h.embedder)

	WriteJSON(w, http.StatusOK, adminStatsResponse{
		CacheStats: h.registry.Snapshot(),
		Services:   services,
	})
}
