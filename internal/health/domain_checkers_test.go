package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taoyao-code/tracker-server/internal/session"
)

func TestSessionChecker(t *testing.T) {
	sess := session.New(5 * time.Minute)
	sess.OnHeartbeat("8800000015", time.Now())
	sess.OnHeartbeat("8800000016", time.Now())

	res := NewSessionChecker(sess).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Fatalf("期望StatusHealthy，实际: %v", res.Status)
	}
	if res.Details["online_devices"] != 2 {
		t.Fatalf("期望在线数2，实际: %v", res.Details["online_devices"])
	}
}

// fakeQueueStats 模拟下行队列统计
type fakeQueueStats struct {
	pending int64
	dead    int64
	err     error
}

func (f *fakeQueueStats) GetPendingCount(ctx context.Context) (int64, error) {
	return f.pending, f.err
}

func (f *fakeQueueStats) GetDeadCount(ctx context.Context) (int64, error) {
	return f.dead, f.err
}

func TestOutboundChecker(t *testing.T) {
	t.Run("正常", func(t *testing.T) {
		res := NewOutboundChecker(&fakeQueueStats{pending: 3}).Check(context.Background())
		if res.Status != StatusHealthy {
			t.Errorf("期望StatusHealthy，实际: %v", res.Status)
		}
		if res.Details["pending"] != int64(3) {
			t.Errorf("期望pending=3，实际: %v", res.Details["pending"])
		}
	})

	t.Run("死信堆积降级", func(t *testing.T) {
		res := NewOutboundChecker(&fakeQueueStats{dead: 1}).Check(context.Background())
		if res.Status != StatusDegraded {
			t.Errorf("期望StatusDegraded，实际: %v", res.Status)
		}
	})

	t.Run("队列不可达", func(t *testing.T) {
		res := NewOutboundChecker(&fakeQueueStats{err: errors.New("dial refused")}).Check(context.Background())
		if res.Status != StatusUnhealthy {
			t.Errorf("期望StatusUnhealthy，实际: %v", res.Status)
		}
	})
}
