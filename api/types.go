// Package api provides the wire types for the cache proxy's HTTP surface.
package api

import (
	"encoding/json"
	"time"
)

// =============================================================================
// Chat completion types
// =============================================================================

// ChatMessage is one turn of a conversation. Order within a request is
// semantically significant.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound /v1/chat/completions body. Fields beyond
// Model/Messages/Temperature/MaxTokens are accepted and preserved
// verbatim for forwarding upstream, but play no part in the exact-tier
// fingerprint.
type ChatRequest struct {
	Model       string                     `json:"model"`
	Messages    []ChatMessage              `json:"messages"`
	Temperature *float32                   `json:"temperature,omitempty"`
	MaxTokens   *int                       `json:"max_tokens,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

type chatRequestKnownFields struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// UnmarshalJSON captures every field not in the known set into Extra so
// it can be replayed verbatim to the upstream API.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var known chatRequestKnownFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range []string{"model", "messages", "temperature", "max_tokens"} {
		delete(raw, k)
	}

	r.Model = known.Model
	r.Messages = known.Messages
	r.Temperature = known.Temperature
	r.MaxTokens = known.MaxTokens
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// MarshalJSON re-merges Extra so the forwarded upstream body carries every
// field the client sent. Extra values are copied byte for byte; the body
// as a whole is re-encoded, so key order, whitespace and the number
// formatting of the known fields may differ from the client's bytes.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}

	modelJSON, err := json.Marshal(r.Model)
	if err != nil {
		return nil, err
	}
	out["model"] = modelJSON

	messagesJSON, err := json.Marshal(r.Messages)
	if err != nil {
		return nil, err
	}
	out["messages"] = messagesJSON

	if r.Temperature != nil {
		v, err := json.Marshal(*r.Temperature)
		if err != nil {
			return nil, err
		}
		out["temperature"] = v
	}
	if r.MaxTokens != nil {
		v, err := json.Marshal(*r.MaxTokens)
		if err != nil {
			return nil, err
		}
		out["max_tokens"] = v
	}

	return json.Marshal(out)
}

// Validate checks the minimal data-model invariants: a model name and a
// non-empty message list.
func (r *ChatRequest) Validate() error {
	if r.Model == "" {
		return errModelRequired
	}
	if len(r.Messages) == 0 {
		return errMessagesRequired
	}
	return nil
}

var (
	errModelRequired    = jsonErr("model is required")
	errMessagesRequired = jsonErr("messages must be non-empty")
)

type jsonErr string

func (e jsonErr) Error() string { return string(e) }

// ChatUsage mirrors the upstream token accounting.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatResponse mirrors the upstream OpenAI-compatible shape and is
// stored verbatim as the cached artifact.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// =============================================================================
// Response envelope
// =============================================================================

// Response is the canonical API envelope for operator endpoints that are
// not pass-through upstream responses.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo describes a failed request in the Response envelope.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	HTTPStatus int    `json:"http_status,omitempty"`
}
