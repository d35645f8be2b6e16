package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/quillcache/llmproxy/api"
	"github.com/quillcache/llmproxy/types"
	"go.uber.org/zap"
)

// =============================================================================
// Response helpers
// =============================================================================

// Response is an alias for the canonical envelope defined in api/types.go.
type Response = api.Response

// ErrorInfo is an alias for the canonical error shape defined in api/types.go.
type ErrorInfo = api.ErrorInfo

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// WriteError writes an error envelope derived from a *types.Error.
func WriteError(w http.ResponseWriter, err *types.Error, logger *zap.Logger) {
	status := err.HTTPStatus
	if status == 0 {
		status = mapErrorCodeToHTTPStatus(err.Code)
	}

	errorInfo := &ErrorInfo{
		Code:       string(err.Code),
		Message:    err.Message,
		Retryable:  err.Retryable,
		HTTPStatus: status,
	}

	if logger != nil {
		logger.Error("API error",
			zap.String("code", string(err.Code)),
			zap.String("message", err.Message),
			zap.Int("status", status),
			zap.Bool("retryable", err.Retryable),
			zap.Error(err.Cause),
		)
	}

	WriteJSON(w, status, Response{
		Success:   false,
		Error:     errorInfo,
		Timestamp: time.Now(),
	})
}

// =============================================================================
// Error code to HTTP status mapping
// =============================================================================

// mapErrorCodeToHTTPStatus maps the six pipeline error kinds to HTTP
// status codes. Most cache-tier errors (exact, vector, embedding) never
// reach this mapping in practice — the pipeline degrades to an upstream
// call instead of surfacing them, and /admin/cache/clear reports its own
// failure as a 500 without going through WriteError — but the mapping
// covers every ErrorCode so WriteError can handle any of them.
func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	case types.ErrMalformedRequest:
		return http.StatusBadRequest
	case types.ErrConfigError:
		return http.StatusInternalServerError
	case types.ErrExactCacheError, types.ErrVectorCacheError, types.ErrEmbeddingUnavailable:
		return http.StatusBadGateway
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Request validation helpers
// =============================================================================

// DecodeJSONBody decodes a JSON request body, rejecting unknown fields.
// Use this for operator endpoints with a fixed schema. The chat endpoint
// decodes api.ChatRequest directly instead, since it must preserve
// fields outside the known schema verbatim.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) error {
	if r.Body == nil {
		err := types.NewError(types.ErrMalformedRequest, "request body is empty")
		WriteError(w, err, logger)
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		apiErr := types.NewError(types.ErrMalformedRequest, "invalid JSON body").
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
		WriteError(w, apiErr, logger)
		return apiErr
	}

	return nil
}

// ValidateContentType verifies the Content-Type header is application/json,
// tolerating case variants and parameters (e.g. "; charset=UTF-8").
func ValidateContentType(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		apiErr := types.NewError(types.ErrMalformedRequest, "Content-Type must be application/json")
		WriteError(w, apiErr, logger)
		return false
	}
	return true
}

