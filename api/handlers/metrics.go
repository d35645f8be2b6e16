package handlers

import (
	"net/http"

	"github.com/quillcache/llmproxy/internal/metrics"
)

// MetricsHandler serves GET /metrics with the current registry snapshot.
type MetricsHandler struct {
	registry *metrics.Registry
}

// NewMetricsHandler creates a metrics handler.
func NewMetricsHandler(registry *metrics.Registry) *MetricsHandler {
	return &MetricsHandler{registry: registry}
}

// HandleMetrics serves GET /metrics.
func (h *MetricsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.Snapshot())
}
