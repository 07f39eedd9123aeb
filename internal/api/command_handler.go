package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/tracker-server/internal/metrics"
	"github.com/taoyao-code/tracker-server/internal/outbound"
	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
	"github.com/taoyao-code/tracker-server/internal/session"
	redisstorage "github.com/taoyao-code/tracker-server/internal/storage/redis"
)

// CommandHandler 下行指令API处理器。
// 设备在线时直发，不在线时入Redis队列等设备上线后补发。
type CommandHandler struct {
	sess     session.SessionManager
	queue    *redisstorage.OutboundQueue
	appm     *metrics.AppMetrics
	logger   *zap.Logger
	maxRetry int
}

// NewCommandHandler 创建下行指令处理器。maxRetry 为入队消息的默认重试上限。
func NewCommandHandler(
	sess session.SessionManager,
	queue *redisstorage.OutboundQueue,
	appm *metrics.AppMetrics,
	maxRetry int,
	logger *zap.Logger,
) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &CommandHandler{sess: sess, queue: queue, appm: appm, maxRetry: maxRetry, logger: logger}
}

// commandRequest 下行指令请求体
type commandRequest struct {
	// 指令token，如 FIND / APN / MESSAGE
	Command string `json:"command" binding:"required"`
	// token之后的参数串（含前导逗号），如 ",cmnet,,,20634"
	Params string `json:"params"`
	// 可选：设备离线时的最大重试次数
	MaxRetry int `json:"maxRetry"`
}

// SendCommand 向设备下发指令
func (h *CommandHandler) SendCommand(c *gin.Context) {
	deviceID := c.Param("deviceId")

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}

	if !beesure.IsServerCommand(req.Command) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown command",
			"command": req.Command,
		})
		return
	}

	frame := beesure.Compose(deviceID, req.Command, req.Params)

	// 在线直发
	if conn, ok := h.sess.GetConn(deviceID); ok {
		if writer, ok := conn.(interface{ Write([]byte) error }); ok {
			if err := writer.Write([]byte(frame)); err == nil {
				if h.appm != nil {
					h.appm.OutboundSent.Inc()
				}
				h.logger.Info("command sent directly",
					zap.String("device_id", deviceID),
					zap.String("command", req.Command))
				c.JSON(http.StatusOK, gin.H{
					"delivery": "direct",
					"frame":    frame,
				})
				return
			}
			h.logger.Warn("direct write failed, falling back to queue",
				zap.String("device_id", deviceID),
				zap.String("command", req.Command))
		}
	}

	// 离线或直发失败：入队
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "device offline and outbound queue disabled",
		})
		return
	}

	maxRetry := req.MaxRetry
	if maxRetry <= 0 {
		maxRetry = h.maxRetry
	}
	now := time.Now()
	msg := &redisstorage.OutboundMessage{
		ID:        uuid.New().String(),
		DeviceID:  deviceID,
		Command:   req.Command,
		Content:   req.Command + req.Params,
		Priority:  outbound.CommandPriority(req.Command),
		MaxRetry:  maxRetry,
		CreatedAt: now,
		UpdatedAt: now,
		Timeout:   5000,
	}
	if err := h.queue.Enqueue(c.Request.Context(), msg); err != nil {
		h.logger.Error("enqueue command failed",
			zap.String("device_id", deviceID),
			zap.String("command", req.Command),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"delivery": "queued",
		"msgId":    msg.ID,
		"priority": msg.Priority,
	})
}
