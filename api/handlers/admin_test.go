package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quillcache/llmproxy/internal/cache"
	"github.com/quillcache/llmproxy/internal/embedding"
	"github.com/quillcache/llmproxy/internal/metrics"
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

func newTestAdminHandler(t *testing.T) (*AdminHandler, *cache.Manager) {
	t.Helper()
	logger := zap.NewNop()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	exactMgr, err := cache.NewManager(cache.Config{Addr: mr.Addr(), DefaultTTL: time.Hour}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { exactMgr.Close() })

	vectorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	t.Cleanup(vectorSrv.Close)

	embedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(embedSrv.Close)

	registry := metrics.NewRegistry()
	h := NewAdminHandler(exactMgr, vectorcache.New(vectorSrv.URL, "llm_cache", logger), embedding.New(embedSrv.URL+"/embed"), registry, logger)
	return h, exactMgr
}

func TestAdminHandler_CacheClear(t *testing.T) {
	h, exactMgr := newTestAdminHandler(t)
	require.NoError(t, exactMgr.Set(context.Background(), "cache:exact:abc:model", `{"id":"x"}`, time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/admin/cache/clear", nil)
	rec := httptest.NewRecorder()
	h.HandleCacheClear(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])

	_, err := exactMgr.Get(context.Background(), "cache:exact:abc:model")
	assert.True(t, cache.IsCacheMiss(err), "flushed key must read back as a cache miss")
}

func TestAdminHandler_Stats(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp adminStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Services.Redis.Status)
	assert.Equal(t, uint64(0), resp.CacheStats.TotalRequests)
}
