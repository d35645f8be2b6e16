package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/quillcache/llmproxy/api"
	"github.com/quillcache/llmproxy/internal/pipeline"
	"github.com/quillcache/llmproxy/types"
)

// ChatHandler serves POST /v1/chat/completions by driving the cache
// pipeline end to end.
type ChatHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewChatHandler creates a chat completions handler.
func NewChatHandler(p *pipeline.Pipeline, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{pipeline: p, logger: logger}
}

// HandleCompletion decodes a ChatRequest, runs it through the pipeline,
// and writes the resulting ChatResponse verbatim.
//
// Unlike DecodeJSONBody, this does not reject unknown fields: extra
// fields in the request body are preserved and forwarded upstream on a
// miss, per the data model's verbatim-forwarding contract.
func (h *ChatHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		WriteError(w, types.NewError(types.ErrMalformedRequest, "request body is empty"), h.logger)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, types.NewError(types.ErrMalformedRequest, "invalid JSON body").
			WithCause(err).WithHTTPStatus(http.StatusBadRequest), h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		WriteError(w, types.NewError(types.ErrMalformedRequest, err.Error()).
			WithHTTPStatus(http.StatusBadRequest), h.logger)
		return
	}

	opts := pipeline.OptionsFromHeaders(r.Header.Get("x-bypass-cache"), r.Header.Get("x-cache-ttl"))

	result, err := h.pipeline.Execute(r.Context(), &req, opts)
	if err != nil {
		WriteError(w, types.NewError(types.ErrUpstreamError, "upstream request failed").
			WithCause(err).WithHTTPStatus(http.StatusInternalServerError), h.logger)
		return
	}

	h.logger.Info("chat completion",
		zap.String("model", req.Model),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("total_tokens", result.Response.Usage.TotalTokens),
	)

	WriteJSON(w, http.StatusOK, result.Response)
}
