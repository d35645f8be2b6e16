// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供缓存代理的统一错误类型。请求/响应模型位于
api 包。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 api/handlers
等上层模块提供共享的错误契约，避免循环依赖。

# 核心类型

  - ErrorCode — 六种错误码之一：MALFORMED_REQUEST、EXACT_CACHE_ERROR、
    EMBEDDING_UNAVAILABLE、VECTOR_CACHE_ERROR、UPSTREAM_ERROR、
    CONFIG_ERROR
  - Error     — 结构化错误，含 Code、Message、HTTPStatus、Retryable、
    Cause

# 主要能力

  - 错误码到 HTTP 状态码的映射由 api/handlers 负责，本包只定义契约
*/
package types
