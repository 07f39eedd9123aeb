package health

import (
	"context"
	"fmt"
	"time"
)

// queueStats 下行队列统计入口（由 storage/redis.OutboundQueue 实现）
type queueStats interface {
	GetPendingCount(ctx context.Context) (int64, error)
	GetDeadCount(ctx context.Context) (int64, error)
}

// OutboundChecker 下行队列检查器。
// 统计读取失败视为 unhealthy（队列依赖的 Redis 不可达）；
// 死信堆积视为 degraded：补发仍在工作，但有指令永久失败待人工处理。
type OutboundChecker struct {
	queue queueStats
}

func NewOutboundChecker(queue queueStats) *OutboundChecker {
	return &OutboundChecker{queue: queue}
}

func (c *OutboundChecker) Name() string { return "outbound" }

func (c *OutboundChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	pending, err := c.queue.GetPendingCount(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("queue unreachable: %v", err),
			Latency: time.Since(start),
		}
	}
	dead, err := c.queue.GetDeadCount(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("queue unreachable: %v", err),
			Latency: time.Since(start),
		}
	}

	status := StatusHealthy
	message := "ok"
	if dead > 0 {
		status = StatusDegraded
		message = "dead letters pending"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"pending": pending,
			"dead":    dead,
		},
		Latency: time.Since(start),
	}
}
