package tcpserver

import (
	"context"
	"testing"
	"time"
)

func TestConnectionLimiter_AcquireRelease(t *testing.T) {
	limiter := NewConnectionLimiter(2, 100*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if limiter.Current() != 2 {
		t.Fatalf("expected 2 active, got %d", limiter.Current())
	}

	// 满额后获取超时拒绝
	if err := limiter.Acquire(ctx); err == nil {
		t.Fatalf("expected rejection at limit")
	}
	if limiter.Stats().RejectedTotal != 1 {
		t.Fatalf("rejected count: %+v", limiter.Stats())
	}

	limiter.Release()
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestConnectionLimiter_Defaults(t *testing.T) {
	limiter := NewConnectionLimiter(0, 0)
	if limiter.MaxConnections() != 10000 {
		t.Fatalf("default max connections: %d", limiter.MaxConnections())
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	if !rl.Allow() || !rl.Allow() {
		t.Fatalf("burst capacity must admit first two")
	}
	if rl.Allow() {
		t.Fatalf("third immediate connection must be rejected")
	}
	if rl.RejectedCount() != 1 {
		t.Fatalf("rejected count: %d", rl.RejectedCount())
	}
}
