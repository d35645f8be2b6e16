package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/quillcache/llmproxy/api"
)

func ptrF32(v float32) *float32 { return &v }
func ptrInt(v int) *int         { return &v }

func req(model string, temp *float32, maxTok *int, msgs ...api.ChatMessage) *api.ChatRequest {
	return &api.ChatRequest{Model: model, Messages: msgs, Temperature: temp, MaxTokens: maxTok}
}

func TestExactKey_WhitespaceAndCaseInsensitive(t *testing.T) {
	r1 := req("llama-3.3-70b-versatile", ptrF32(0.7), nil, api.ChatMessage{Role: "user", Content: "What is Rust?"})
	r2 := req("llama-3.3-70b-versatile", ptrF32(0.7), nil, api.ChatMessage{Role: "  USER  ", Content: "   what is Rust?   "})

	_, k1 := ExactKey(r1)
	_, k2 := ExactKey(r2)
	assert.Equal(t, k1, k2)
}

func TestExactKey_PunctuationDiffers(t *testing.T) {
	r1 := req("m", nil, nil, api.ChatMessage{Role: "user", Content: "hello"})
	r2 := req("m", nil, nil, api.ChatMessage{Role: "user", Content: "hello!"})

	_, k1 := ExactKey(r1)
	_, k2 := ExactKey(r2)
	assert.NotEqual(t, k1, k2)
}

func TestExactKey_ModelCasingDiffers(t *testing.T) {
	r1 := req("Llama", nil, nil, api.ChatMessage{Role: "user", Content: "hi"})
	r2 := req("llama", nil, nil, api.ChatMessage{Role: "user", Content: "hi"})

	_, k1 := ExactKey(r1)
	_, k2 := ExactKey(r2)
	assert.NotEqual(t, k1, k2)
}

func TestExactKey_TemperatureNoneVsZero(t *testing.T) {
	r1 := req("m", nil, nil, api.ChatMessage{Role: "user", Content: "hi"})
	r2 := req("m", ptrF32(0), nil, api.ChatMessage{Role: "user", Content: "hi"})

	_, k1 := ExactKey(r1)
	_, k2 := ExactKey(r2)
	assert.NotEqual(t, k1, k2)
}

func TestExactKey_InternalWhitespaceNotCollapsed(t *testing.T) {
	r1 := req("m", nil, nil, api.ChatMessage{Role: "user", Content: "a  b"})
	r2 := req("m", nil, nil, api.ChatMessage{Role: "user", Content: "a b"})

	_, k1 := ExactKey(r1)
	_, k2 := ExactKey(r2)
	assert.NotEqual(t, k1, k2)
}

// TestExactKey_DeterministicProperty asserts ExactKey is a pure function
// of its normalized-equivalent inputs across arbitrary generated pairs
// that only differ in whitespace/case of role and content.
func TestExactKey_DeterministicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		role := rapid.SampledFrom([]string{"user", "system", "assistant"}).Draw(t, "role")
		content := rapid.StringMatching(`[a-zA-Z0-9 ]{1,20}`).Draw(t, "content")
		model := rapid.StringMatching(`[a-z0-9\-\.]{1,20}`).Draw(t, "model")

		r1 := req(model, nil, nil, api.ChatMessage{Role: role, Content: content})
		r2 := req(model, nil, nil, api.ChatMessage{Role: "  " + strings.ToUpper(role) + "  ", Content: "  " + strings.ToUpper(content) + "  "})

		_, k1 := ExactKey(r1)
		_, k2 := ExactKey(r2)
		if k1 != k2 {
			t.Fatalf("expected equal keys for case/whitespace variants: %q vs %q", k1, k2)
		}
	})
}
