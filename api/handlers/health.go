package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quillcache/llmproxy/internal/cache"
	"github.com/quillcache/llmproxy/internal/embedding"
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

// probeDeadline bounds the shared deadline for the three concurrent
// dependency probes behind /health and /admin/stats.
const probeDeadline = 5 * time.Second

// ServiceStatus reports whether a dependency responded within the probe
// deadline.
type ServiceStatus struct {
	Status string `json:"status"` // "up" or "down"
}

// Services is the per-dependency status map returned by /health and
// embedded in /admin/stats.
type Services struct {
	Redis      ServiceStatus `json:"redis"`
	Qdrant     ServiceStatus `json:"qdrant"`
	Embeddings ServiceStatus `json:"embeddings"`
}

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Services  Services  `json:"services"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler probes the three external dependencies concurrently and
// reports their combined status.
type HealthHandler struct {
	exact    *cache.Manager
	vector   *vectorcache.Client
	embedder *embedding.Client
	logger   *zap.Logger
}

// NewHealthHandler creates a health handler wired to the three
// dependency clients.
func NewHealthHandler(exact *cache.Manager, vector *vectorcache.Client, embedder *embedding.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{exact: exact, vector: vector, embedder: embedder, logger: logger}
}

// probeServices runs the three health checks concurrently with a shared
// deadline and returns the per-service status map plus whether all three
// are up. Shared by HealthHandler and AdminHandler's /admin/stats.
func probeServices(ctx context.Context, exact *cache.Manager, vector *vectorcache.Client, embedder *embedding.Client) (Services, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeDeadline)
	defer cancel()

	var redisUp, qdrantUp, embeddingsUp bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		redisUp = exact.Ping(gctx) == nil
		return nil
	})
	g.Go(func() error {
		qdrantUp = vector.Health(gctx) == nil
		return nil
	})
	g.Go(func() error {
		embeddingsUp = embedder.Health(gctx) == nil
		return nil
	})
	g.Wait()

	services := Services{
		Redis:      statusOf(redisUp),
		Qdrant:     statusOf(qdrantUp),
		Embeddings: statusOf(embeddingsUp),
	}
	return services, redisUp && qdrantUp && embeddingsUp
}

func statusOf(up bool) ServiceStatus {
	if up {
		return ServiceStatus{Status: "up"}
	}
	return ServiceStatus{Status: "down"}
}

// HandleHealth serves GET /health: 200 iff all three dependencies are up.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	services, allUp := probeServices(r.Context(), h.exact, h.vector, h.embedder)

	resp := HealthResponse{
		Services:  services,
		Timestamp: time.Now().UTC(),
	}

	status := http.StatusOK
	resp.Status = "healthy"
	if !allUp {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}

	WriteJSON(w, status, resp)
}
