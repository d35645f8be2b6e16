package handlers

import (
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
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

func newTestHealthHandler(t *testing.T, vectorUp, embeddingUp bool) (*HealthHandler, *miniredis.Miniredis) {
	t.Helper()
	logger := zap.NewNop()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	exactMgr, err := cache.NewManager(cache.Config{Addr: mr.Addr(), DefaultTTL: time.Hour}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { exactMgr.Close() })

	vectorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !vectorUp {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	}))
	t.Cleanup(vectorSrv.Close)

	embedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !embeddingUp {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(embedSrv.Close)

	h := NewHealthHandler(exactMgr, vectorcache.New(vectorSrv.URL, "llm_cache", logger), embedding.New(embedSrv.URL+"/embed"), logger)
	return h, mr
}

func TestHealthHandler_AllUp(t *testing.T) {
	h, _ := newTestHealthHandler(t, true, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "up", resp.Services.Redis.Status)
	assert.Equal(t, "up", resp.Services.Qdrant.Status)
	assert.Equal(t, "up", resp.Services.Embeddings.Status)
}

func TestHealthHandler_RedisDown(t *testing.T) {
	h, mr := newTestHealthHandler(t, true, true)
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Services.Redis.Status)
}

func TestHealthHandler_VectorDown(t *testing.T) {
	h, _ := newTestHealthHandler(t, false, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler_ProbesRunConcurrently(t *testing.T) {
	h, _ := newTestHealthHandler(t, true, true)

	start := time.Now()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "three probes run concurrently, not serially")
}
