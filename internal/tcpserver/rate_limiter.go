package tcpserver

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 新连接接纳速率限流（令牌桶）
type RateLimiter struct {
	limiter       *rate.Limiter
	rejectedCount atomic.Int64
}

// NewRateLimiter 创建速率限流器；ratePerSec 为稳定速率，burst 为桶容量
func NewRateLimiter(ratePerSec, burst int) *RateLimiter {
	if ratePerSec <= 0 {
		ratePerSec = 100
	}
	if burst <= 0 {
		burst = ratePerSec * 2
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Allow 非阻塞判断是否接纳
func (l *RateLimiter) Allow() bool {
	if l.limiter.Allow() {
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// RejectedCount 被拒绝的连接数（累计）
func (l *RateLimiter) RejectedCount() int64 { return l.rejectedCount.Load() }
