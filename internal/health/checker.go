package health

import (
	"context"
	"time"
)

// Status 组件健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 受损但仍可服务（如死信堆积、连接池吃紧）
	StatusUnhealthy Status = "unhealthy" // 无法服务
)

// CheckResult 单项检查结果
type CheckResult struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// Checker 健康检查器。各依赖（数据库、Redis、TCP 网关、会话、下行队列）
// 各自实现一个，由 Aggregator 并发汇总。
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
