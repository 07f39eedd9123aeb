package health

import (
	"context"
	"time"

	"github.com/taoyao-code/tracker-server/internal/session"
)

// SessionChecker 会话层检查器：暴露当前在线设备数。
// 会话管理器本身无失败模式（Redis 实现的失败由 redis 检查器体现），
// 因此始终 healthy，在线数只作为观测信息输出。
type SessionChecker struct {
	sess session.SessionManager
}

func NewSessionChecker(sess session.SessionManager) *SessionChecker {
	return &SessionChecker{sess: sess}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	online := c.sess.OnlineCount(start)
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{
			"online_devices": online,
		},
		Latency: time.Since(start),
	}
}
