// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 实现精确命中层缓存客户端：一个共享的 Redis 连接池，
向请求流水线暴露 get/set/flush/ping 四个操作。

# 概述

Manager 封装 go-redis 客户端，Get 区分"缺失"（ErrCacheMiss）与
"错误"两种失败——流水线据此决定是继续按未命中处理还是记录告警。
Set 按调用方传入的 TTL 写入；FlushAll 仅清空精确层，不触及向量层。

# 核心类型

  - Manager：精确层缓存客户端，持有 Redis 客户端与连接池配置。
  - Config：连接池配置（地址、密码、池大小、默认 TTL、健康检查间隔）。

# 主要能力

  - 三态读取：Get 返回 (value, nil)、("", ErrCacheMiss) 或 ("", err)。
  - 按调用 TTL 写入：Set 的 ttl 为 0 时退回 Config.DefaultTTL。
  - 健康检查：后台定时 Ping，异常通过 zap 日志告警，不影响服务可用性。
  - 优雅关闭：Close 安全释放底层连接池。
*/
package cache
