package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/tracker-server/internal/session"
	"github.com/taoyao-code/tracker-server/internal/storage"
)

// ReadOnlyHandler 只读API处理器
type ReadOnlyHandler struct {
	core   storage.CoreRepo
	sess   session.SessionManager
	logger *zap.Logger
}

// NewReadOnlyHandler 创建只读API处理器
func NewReadOnlyHandler(core storage.CoreRepo, sess session.SessionManager, logger *zap.Logger) *ReadOnlyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadOnlyHandler{core: core, sess: sess, logger: logger}
}

// Ready 快速就绪检查
func (h *ReadOnlyHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryLimit 解析 limit/offset 查询参数
func queryLimit(c *gin.Context) (limit, offset int) {
	limit, offset = 100, 0
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv > 0 {
			limit = vv
		}
	}
	if v := c.Query("offset"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv >= 0 {
			offset = vv
		}
	}
	return limit, offset
}

// ListDevices 分页查询设备列表
func (h *ReadOnlyHandler) ListDevices(c *gin.Context) {
	limit, offset := queryLimit(c)

	list, err := h.core.ListDevices(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": list})
}

// GetDevice 查询设备详情（含在线状态与最新定位）
func (h *ReadOnlyHandler) GetDevice(c *gin.Context) {
	deviceID := c.Param("deviceId")
	ctx := c.Request.Context()

	device, err := h.core.GetDeviceByDeviceID(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	resp := gin.H{
		"device": device,
		"online": h.sess.IsOnline(deviceID, time.Now()),
	}
	if pos, err := h.core.GetLatestPosition(ctx, device.ID); err == nil {
		resp["last_position"] = pos
	}
	c.JSON(http.StatusOK, resp)
}

// ListDevicePositions 查询设备定位轨迹
func (h *ReadOnlyHandler) ListDevicePositions(c *gin.Context) {
	deviceID := c.Param("deviceId")
	limit, _ := queryLimit(c)
	ctx := c.Request.Context()

	device, err := h.core.GetDeviceByDeviceID(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	positions, err := h.core.ListRecentPositions(ctx, device.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"positions": positions,
	})
}

// ListDeviceRecords 查询设备上行指令记录
func (h *ReadOnlyHandler) ListDeviceRecords(c *gin.Context) {
	deviceID := c.Param("deviceId")
	limit, _ := queryLimit(c)
	ctx := c.Request.Context()

	device, err := h.core.GetDeviceByDeviceID(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	records, err := h.core.ListRecentRecords(ctx, device.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"records":   records,
	})
}

// ListDeviceSnapshots 查询设备图像快照
func (h *ReadOnlyHandler) ListDeviceSnapshots(c *gin.Context) {
	deviceID := c.Param("deviceId")
	limit, _ := queryLimit(c)
	ctx := c.Request.Context()

	device, err := h.core.GetDeviceByDeviceID(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	snaps, err := h.core.ListRecentSnapshots(ctx, device.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"snapshots": snaps,
	})
}

// GetSessionStatus 查询设备在线状态和最后活跃时间
func (h *ReadOnlyHandler) GetSessionStatus(c *gin.Context) {
	deviceID := c.Param("deviceId")
	now := time.Now()
	online := h.sess.IsOnline(deviceID, now)

	resp := gin.H{"deviceId": deviceID, "online": online}
	if ts, ok := h.sess.LastSeen(deviceID); ok {
		resp["lastSeenAt"] = ts
	} else if d, err := h.core.GetDeviceByDeviceID(c.Request.Context(), deviceID); err == nil {
		resp["lastSeenAt"] = d.LastSeenAt
	}
	c.JSON(http.StatusOK, resp)
}
