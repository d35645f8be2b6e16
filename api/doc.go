// Package api defines the request/response types shared by the cache
// proxy's HTTP handlers: the OpenAI-compatible chat-completion schema
// (ChatRequest/ChatResponse) and the operator-endpoint envelope
// (Response/ErrorInfo).
//
// # API Overview
//
// The proxy exposes:
//   - POST /v1/chat/completions — cached chat completions, OpenAI-compatible
//   - GET /health, GET /metrics, GET /dashboard — operator visibility
//   - POST /admin/cache/clear, GET /admin/stats — operator control
//
// # Request headers
//
// x-bypass-cache: true disables both cache reads and writes for that
// request. x-cache-ttl: N overrides the resolved TTL, in seconds.
//
// # Base URL
//
// The default listen address is http://localhost:3000.
package api
