// Package embedding calls the external embedding service that turns a
// prompt into a 384-float vector.
package embedding

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

// Client calls the embedding service's POST /embed endpoint.
type Client struct {
	embedURL   string
	healthURL  string
	client     *http.Client
	healthOnly *http.Client
}

// New creates an embedding client. embedURL is the full POST endpoint
// (e.g. "http://127.0.0.1:8001/embed"); the health probe URL is derived
// by stripping a trailing "/embed", if present, and appending "/health".
func New(embedURL string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		transport.ForceAttemptHTTP2 = false
	}

	base := strings.TrimSuffix(embedURL, "/embed")

	return &Client{
		embedURL:  embedURL,
		healthURL: base + "/health",
		client:    &http.Client{Transport: transport, Timeout: 5 * time.Second},
		healthOnly: &http.Client{
			Transport: transport,
			Timeout:   3 * time.Second,
		},
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the 384-float embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	raw, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.embedURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	return result.Embedding, nil
}

// Health performs a bounded GET /health probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.healthOnly.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding health check failed: status %d", resp.StatusCode)
	}
	return nil
}

// PromptText concatenates a conversation's messages as "{role}: {content}"
// lines, the full-context text handed to Embed. Two conversations with an
// identical final turn but different history embed differently — this is
// intentional.
func PromptText(messages []api.ChatMessage) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}
