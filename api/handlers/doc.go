// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 实现缓存代理所有 HTTP 端点的请求处理逻辑，
包括聊天补全、健康检查、指标、仪表盘与管理端点。所有 Handler
均遵循标准 net/http 接口。

# 核心类型

  - ChatHandler    — 驱动 internal/pipeline 完成十步请求流程
  - HealthHandler  — /health，并发探测 Redis、Qdrant、嵌入服务
  - AdminHandler   — /admin/cache/clear、/admin/stats
  - MetricsHandler — /metrics，返回 Registry 快照的 JSON 表示
  - Response       — 统一 JSON 响应结构（success + data + error）
  - ErrorInfo      — 结构化错误信息，含 code、message、retryable 标记

# 主要能力

  - 统一响应格式：WriteError / WriteJSON 辅助函数
  - 请求验证：DecodeJSONBody（操作端点专用，严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射
  - 并发健康探测：probeServices 在共享的 5 秒期限内探测三个依赖
  - 静态仪表盘：go:embed 打包的单页 HTML，轮询 /metrics
*/
package handlers
