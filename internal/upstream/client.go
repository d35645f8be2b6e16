// Package upstream implements the client that forwards chat-completion
// requests to the OpenAI-compatible upstream LLM API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/quillcache/llmproxy/api"
)

// hardTimeout is the end-to-end deadline for a single completion call.
const hardTimeout = 60 * time.Second

// Client forwards chat-completion requests to an OpenAI-compatible
// upstream over a single shared, pooled HTTP client.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates an upstream client. The bearer credential is read once at
// startup and never changes for the life of the process.
func New(baseURL, apiKey string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: 1000,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		transport.ForceAttemptHTTP2 = false
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Transport: transport, Timeout: hardTimeout},
	}
}

// Complete forwards req verbatim and returns the upstream's parsed
// response.
func (c *Client) Complete(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, hardTimeout)
	defer cancel()

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp api.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding upstream response: %w", err)
	}

	return &chatResp, nil
}
