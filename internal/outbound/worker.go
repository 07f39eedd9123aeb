package outbound

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
	redisstorage "github.com/taoyao-code/tracker-server/internal/storage/redis"
)

// Worker Redis下行队列消费者：设备上线后补发离线期间入队的指令
type Worker struct {
	queue      *redisstorage.OutboundQueue
	logger     *zap.Logger
	throttleMs int
	stopC      chan struct{}
	getConn    func(deviceID string) (interface{}, bool)

	// 统计
	sent      atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
	deadCount atomic.Int64
}

// NewWorker 创建下行队列Worker
func NewWorker(queue *redisstorage.OutboundQueue, throttleMs int, logger *zap.Logger) *Worker {
	if throttleMs <= 0 {
		throttleMs = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:      queue,
		throttleMs: throttleMs,
		logger:     logger,
		stopC:      make(chan struct{}),
	}
}

// SetGetConn 设置获取在线连接的函数（由会话管理器提供）
func (w *Worker) SetGetConn(fn func(deviceID string) (interface{}, bool)) {
	w.getConn = fn
}

// Start 启动Worker，阻塞直到 ctx 取消或 Stop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("outbound worker started", zap.Int("throttle_ms", w.throttleMs))

	ticker := time.NewTicker(time.Duration(w.throttleMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbound worker stopping")
			return
		case <-w.stopC:
			w.logger.Info("outbound worker stopped")
			return
		case <-ticker.C:
			w.processOne(ctx)
		}
	}
}

// Stop 停止Worker
func (w *Worker) Stop() {
	close(w.stopC)
}

// processOne 处理一条消息
func (w *Worker) processOne(ctx context.Context) {
	msg, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.logger.Error("dequeue failed", zap.Error(err))
		return
	}

	if msg == nil {
		return // 队列为空
	}

	if err := w.queue.MarkProcessing(ctx, msg); err != nil {
		w.logger.Error("mark processing failed",
			zap.String("msg_id", msg.ID),
			zap.Error(err))
		return
	}

	if w.getConn == nil {
		w.markFailed(ctx, msg, "getConn function not set")
		return
	}

	conn, ok := w.getConn(msg.DeviceID)
	if !ok {
		// 设备不在线或连接已失效（包括心跳超时），留待重试
		w.logger.Warn("device connection not available",
			zap.String("msg_id", msg.ID),
			zap.String("device_id", msg.DeviceID))
		w.markFailed(ctx, msg, fmt.Sprintf("device %s not connected", msg.DeviceID))
		return
	}

	frame := w.composeFrame(msg)

	// 兼容两类写入接口：
	// 1) net.Conn:          Write([]byte) (int, error)
	// 2) ConnContext等包装: Write([]byte) error
	if writer1, ok := conn.(interface{ Write([]byte) (int, error) }); ok {
		n, err := writer1.Write([]byte(frame))
		if err != nil {
			w.logger.Error("write to device failed",
				zap.String("msg_id", msg.ID),
				zap.String("device_id", msg.DeviceID),
				zap.Int("written_bytes", n),
				zap.Error(err))
			w.markFailed(ctx, msg, fmt.Sprintf("write failed: %v", err))
			return
		}
	} else if writer2, ok := conn.(interface{ Write([]byte) error }); ok {
		if err := writer2.Write([]byte(frame)); err != nil {
			w.logger.Error("write to device failed",
				zap.String("msg_id", msg.ID),
				zap.String("device_id", msg.DeviceID),
				zap.Error(err))
			w.markFailed(ctx, msg, fmt.Sprintf("write failed: %v", err))
			return
		}
	} else {
		w.markFailed(ctx, msg, "connection does not support Write")
		return
	}

	if err := w.queue.MarkSuccess(ctx, msg); err != nil {
		w.logger.Error("mark success failed",
			zap.String("msg_id", msg.ID),
			zap.Error(err))
		return
	}

	w.sent.Add(1)
	w.logger.Info("downlink command sent",
		zap.String("msg_id", msg.ID),
		zap.String("device_id", msg.DeviceID),
		zap.String("command", msg.Command))
}

// composeFrame 将队列消息合成完整下行帧
func (w *Worker) composeFrame(msg *redisstorage.OutboundMessage) string {
	extra := ""
	if len(msg.Content) > len(msg.Command) {
		extra = msg.Content[len(msg.Command):]
	}
	return beesure.Compose(msg.DeviceID, msg.Command, extra)
}

// markFailed 标记失败
func (w *Worker) markFailed(ctx context.Context, msg *redisstorage.OutboundMessage, errMsg string) {
	if err := w.queue.MarkFailed(ctx, msg, errMsg); err != nil {
		w.logger.Error("mark failed error",
			zap.String("msg_id", msg.ID),
			zap.Error(err))
		return
	}

	if msg.Retries >= msg.MaxRetry {
		w.deadCount.Add(1)
		w.logger.Warn("message moved to dead queue",
			zap.String("msg_id", msg.ID),
			zap.String("device_id", msg.DeviceID),
			zap.String("error", errMsg))
	} else {
		w.retried.Add(1)
		w.logger.Debug("message retrying",
			zap.String("msg_id", msg.ID),
			zap.Int("retry", msg.Retries))
	}

	w.failed.Add(1)
}

// Stats 获取统计信息
func (w *Worker) Stats(ctx context.Context) map[string]interface{} {
	queueStats, _ := w.queue.Stats(ctx)

	return map[string]interface{}{
		"sent":       w.sent.Load(),
		"failed":     w.failed.Load(),
		"retried":    w.retried.Load(),
		"dead_count": w.deadCount.Load(),
		"queue":      queueStats,
	}
}
