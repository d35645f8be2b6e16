// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main provides the llmproxy server entry point.

# Overview

cmd/cacheproxy is the executable entry point for the caching reverse
proxy: a two-tier cache (exact fingerprint + semantic vector) in front
of an OpenAI-compatible chat-completions API, plus health, metrics,
dashboard, and admin HTTP endpoints.

# Core types

  - Server — wires config, cache/vector/embedding/upstream clients, the
    request pipeline, and both HTTP listeners (API + Prometheus scrape)

# Capabilities

  - Subcommands: serve (start the server), version, health
  - Configuration is read entirely from environment variables; see
    internal/config
  - Two listeners: the API port (chat completions, health, metrics,
    dashboard, admin) and a separate internal port exposing the
    Prometheus text-format mirror of the JSON metrics snapshot
  - Graceful shutdown: signal → stop API listener → stop metrics
    listener → close the exact-cache pool
  - Build metadata: Version, BuildTime, GitCommit injected via ldflags
*/
package main
