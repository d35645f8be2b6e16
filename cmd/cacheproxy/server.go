// Package main provides the cache proxy server implementation.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quillcache/llmproxy/api/handlers"
	"github.com/quillcache/llmproxy/internal/cache"
	"github.com/quillcache/llmproxy/internal/config"
	"github.com/quillcache/llmproxy/internal/embedding"
	"github.com/quillcache/llmproxy/internal/metrics"
	"github.com/quillcache/llmproxy/internal/pipeline"
	"github.com/quillcache/llmproxy/internal/requestlog"
	"github.com/quillcache/llmproxy/internal/server"
	"github.com/quillcache/llmproxy/internal/upstream"
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

// internalMetricsAddr is the separate port the Prometheus text-format
// mirror listens on. GET /metrics on the main port returns the JSON
// MetricsSnapshot the dashboard polls; Prometheus scrapes this one.
const internalMetricsAddr = ":9090"

// Server wires the cache proxy's dependency graph: config, cache/vector/
// embedding/upstream clients, the request pipeline, HTTP handlers, and
// the two listeners (API + Prometheus scrape).
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	exact    *cache.Manager
	vector   *vectorcache.Client
	embedder *embedding.Client

	httpManager    *server.Manager
	metricsManager *server.Manager
}

// NewServer constructs every dependency but does not start listening.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Addr = redisOpts.Addr
	cacheConfig.Password = redisOpts.Password
	cacheConfig.DB = redisOpts.DB

	exact, err := cache.NewManager(cacheConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting exact cache: %w", err)
	}

	vector := vectorcache.New(cfg.QdrantURL, cfg.VectorCollection, logger)
	if err := vector.EnsureCollection(context.Background()); err != nil {
		logger.Warn("vector cache collection not ready, semantic tier degraded", zap.Error(err))
	}

	embedder := embedding.New(cfg.EmbeddingURL)
	upstreamClient := upstream.New(config.UpstreamBaseURL, cfg.GroqAPIKey)

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector("llmproxy", logger)
	log := requestlog.New(cfg.LogPath)

	pipe := pipeline.New(exact, vector, embedder, upstreamClient, registry, collector, log, logger)

	chatHandler := handlers.NewChatHandler(pipe, logger)
	healthHandler := handlers.NewHealthHandler(exact, vector, embedder, logger)
	adminHandler := handlers.NewAdminHandler(exact, vector, embedder, registry, logger)
	metricsHandler := handlers.NewMetricsHandler(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", chatHandler.HandleCompletion)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/metrics", metricsHandler.HandleMetrics)
	mux.HandleFunc("/dashboard", handlers.HandleDashboard)
	mux.HandleFunc("/admin/cache/clear", adminHandler.HandleCacheClear)
	mux.HandleFunc("/admin/stats", adminHandler.HandleStats)

	serverConfig := server.DefaultConfig()
	serverConfig.Addr = ":" + cfg.Port
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServerConfig := server.DefaultConfig()
	metricsServerConfig.Addr = internalMetricsAddr
	metricsServerConfig.ShutdownTimeout = cfg.ShutdownTimeout

	return &Server{
		cfg:            cfg,
		logger:         logger,
		exact:          exact,
		vector:         vector,
		embedder:       embedder,
		httpManager:    server.NewManager(mux, serverConfig, logger),
		metricsManager: server.NewManager(metricsMux, metricsServerConfig, logger),
	}, nil
}

// Start launches both listeners. Non-blocking.
func (s *Server) Start() error {
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	s.logger.Info("API server started", zap.String("addr", s.httpManager.Addr()))

	if err := s.metricsManager.Start(); err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	s.logger.Info("Prometheus metrics server started", zap.String("addr", s.metricsManager.Addr()))

	return nil
}

// WaitForShutdown blocks on the API server's signal handling, then
// cleans up.
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()
	s.Shutdown()
}

// Shutdown tears down the metrics server and the exact-cache pool. The
// API manager shuts itself down as part of WaitForShutdown.
func (s *Server) Shutdown() {
	ctx := context.Background()

	if err := s.metricsManager.Shutdown(ctx); err != nil {
		s.logger.Error("metrics server shutdown error", zap.Error(err))
	}

	if err := s.exact.Close(); err != nil {
		s.logger.Error("exact cache shutdown error", zap.Error(err))
	}

	s.logger.Info("graceful shutdown completed")
}
