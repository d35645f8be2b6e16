// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP 服务器生命周期管理，支持非阻塞启动、
优雅关闭与系统信号监听。

# 概述

本包通过 Manager 封装 net/http.Server，统一管理监听、服务、
关闭与错误传播流程，内置 SIGINT/SIGTERM 信号处理，适用于
生产环境的优雅停机需求。代理只对外提供明文 HTTP，因此本包
不携带 TLS 启动路径。

# 核心类型

  - Manager：HTTP 服务器管理器，持有 http.Server、net.Listener
    与异步错误通道，提供 Start/Shutdown/WaitForShutdown 等生命
    周期方法。
  - Config：服务器配置，包含监听地址、读写超时、空闲超时、
    最大请求头大小与优雅关闭超时。

# 主要能力

  - 非阻塞启动：Start 在后台 goroutine 中运行服务，主线程不阻塞。
  - 优雅关闭：Shutdown 在配置的超时内完成请求排空与连接释放，
    重复调用是幂等的。
  - 信号监听：WaitForShutdown 监听 SIGINT/SIGTERM 或服务器的
    意外退出，收到后自动触发优雅关闭流程。
  - 状态查询：Addr 返回配置的监听地址。
*/
package server
