// Package fingerprint derives a deterministic exact-cache key from a
// chat completion request.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/quillcache/llmproxy/api"
)

const exactKeyPrefix = "cache:exact:"

// Normalize builds the fingerprint string described in the normalization
// rules: per-message role/content are lowercased and trimmed, joined with
// " | ", followed by the verbatim model, temperature and max_tokens
// fields.
func Normalize(req *api.ChatRequest) string {
	var sb strings.Builder
	for i, m := range req.Messages {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(strings.ToLower(strings.TrimSpace(m.Role)))
		sb.WriteByte(':')
		sb.WriteString(strings.ToLower(strings.TrimSpace(m.Content)))
	}

	sb.WriteString(" | model:")
	sb.WriteString(req.Model)

	sb.WriteString(" | temp:")
	if req.Temperature == nil {
		sb.WriteString("none")
	} else {
		sb.WriteString(strconv.FormatFloat(float64(*req.Temperature), 'g', -1, 32))
	}

	sb.WriteString(" | tokens:")
	if req.MaxTokens == nil {
		sb.WriteString("none")
	} else {
		sb.WriteString(strconv.Itoa(*req.MaxTokens))
	}

	return sb.String()
}

// ExactKey returns the normalized fingerprint and the derived exact-tier
// cache key: "cache:exact:<sha256 hex>:<model>".
func ExactKey(req *api.ChatRequest) (normalized string, key string) {
	normalized = Normalize(req)
	sum := sha256.Sum256([]byte(normalized))
	key = exactKeyPrefix + hex.EncodeToString(sum[:]) + ":" + req.Model
	return normalized, key
}
