// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package config loads the proxy's runtime configuration from a fixed set
of environment variables: GROQ_API_KEY (required), REDIS_URL, QDRANT_URL,
EMBEDDING_URL, LOG_PATH, PORT, LOG_FORMAT and VECTOR_COLLECTION. The
graceful shutdown budget is a fixed 10s and is not read from the
environment. There is no file-based layering — the
external interface this proxy exposes to operators is the flat env-var
contract, so the loader reads os.Getenv directly rather than parsing a
config file.
*/
package config
