// Package vectorcache implements the semantic-tier cache client over
// Qdrant's REST API. The specification calls for a "pooled gRPC
// client", but no repository in the reference corpus carries a grounded
// Qdrant gRPC stack (generated protobuf stubs, a gRPC-specific Qdrant
// module) — every grounded implementation talks to Qdrant over its REST
// API with a pooled *http.Client. Pooling is achieved the same way: a
// shared http.Transport with keep-alives and HTTP/2 enabled, reused by
// every request path, matching the teacher's rag.QdrantStore.
package vectorcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	// VectorDim is hard-coded per the specification: the embedding
	// service, the collection schema, and this client must all agree.
	VectorDim = 384

	distanceMetric  = "Cosine"
	scoreThreshold  = 0.90
)

// Payload is stored alongside each vector point.
type Payload struct {
	CacheKey string `json:"cache_key"`
	Response string `json:"response"`
}

// Match is a above-threshold search result.
type Match struct {
	Payload Payload
	Score   float64
}

// Client is the semantic-tier cache client.
type Client struct {
	baseURL    string
	collection string
	client     *http.Client
	logger     *zap.Logger

	ensureOnce sync.Once
	ensureErr  error
}

// New creates a vector cache client against a Qdrant-compatible REST
// endpoint. The HTTP transport is pooled and shared by every call the
// process makes.
func New(baseURL, collection string, logger *zap.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		transport.ForceAttemptHTTP2 = false
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		client:     &http.Client{Transport: transport, Timeout: 10 * time.Second},
		logger:     logger.With(zap.String("component", "vector_cache")),
	}
}

// EnsureCollection creates the collection if absent. A 409 ("already
// exists") is treated as success. Any other failure is returned without
// being logged here; callers log it and continue serving traffic with
// the semantic tier degraded rather than aborting startup. The first
// call's result is remembered and returned by every later call.
func (c *Client) EnsureCollection(ctx context.Context) error {
	c.ensureOnce.Do(func() {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     VectorDim,
				"distance": distanceMetric,
			},
		}

		endpoint := fmt.Sprintf("%s/collections/%s", c.baseURL, url.PathEscape(c.collection))
		raw, _ := json.Marshal(body)

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(raw))
		if err != nil {
			c.ensureErr = err
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			c.ensureErr = err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusConflict {
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			c.ensureErr = fmt.Errorf("qdrant create collection failed: status=%d body=%s", resp.StatusCode, string(respBody))
		}
	})

	return c.ensureErr
}

// Search returns the best match with score >= 0.90, or (nil, nil) if no
// match clears the threshold, or a non-nil error on a transport/protocol
// failure.
func (c *Client) Search(ctx context.Context, vector []float32) (*Match, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        1,
		"with_payload": true,
		"score_threshold": scoreThreshold,
	}

	var result struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload Payload `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(c.collection))
	if err := c.doJSON(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}

	if len(result.Result) == 0 {
		return nil, nil
	}

	top := result.Result[0]
	if top.Score < scoreThreshold {
		return nil, nil
	}

	return &Match{Payload: top.Payload, Score: top.Score}, nil
}

// Upsert writes a new point with a fresh random UUID identity.
func (c *Client) Upsert(ctx context.Context, vector []float32, payload Payload) error {
	point := map[string]any{
		"id":      uuid.New().String(),
		"vector":  vector,
		"payload": payload,
	}
	body := map[string]any{
		"points": []any{point},
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(c.collection))
	if err := c.doJSON(ctx, http.MethodPut, path, body, nil); err != nil {
		c.logger.Warn("vector cache upsert failed", zap.Error(err))
		return err
	}

	return nil
}

// Health issues a list-collections call.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/collections", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
