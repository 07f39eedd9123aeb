package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/tracker-server/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/tracker-server/internal/config"
	"github.com/taoyao-code/tracker-server/internal/metrics"
	"github.com/taoyao-code/tracker-server/internal/outbound"
	"github.com/taoyao-code/tracker-server/internal/session"
	"github.com/taoyao-code/tracker-server/internal/storage"
	redisstorage "github.com/taoyao-code/tracker-server/internal/storage/redis"
)

// RegisterRoutes 注册管理API路由
func RegisterRoutes(
	r *gin.Engine,
	cfg *cfgpkg.Config,
	core storage.CoreRepo,
	sess session.SessionManager,
	queue *redisstorage.OutboundQueue,
	worker *outbound.Worker,
	appm *metrics.AppMetrics,
	logger *zap.Logger,
) {
	if r == nil || core == nil || sess == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	roHandler := NewReadOnlyHandler(core, sess, logger)
	cmdHandler := NewCommandHandler(sess, queue, appm, cfg.Outbound.MaxRetries, logger)

	// 快速就绪检查(无需认证)
	r.GET("/ready", roHandler.Ready)

	authCfg := middleware.AuthConfig{
		Enabled: cfg.Auth.Enabled,
		APIKeys: cfg.Auth.APIKeys,
	}

	// API路由组(需要认证)
	api := r.Group("/api")
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 设备管理
	api.GET("/devices", roHandler.ListDevices)
	api.GET("/devices/:deviceId", roHandler.GetDevice)
	api.GET("/devices/:deviceId/positions", roHandler.ListDevicePositions)
	api.GET("/devices/:deviceId/records", roHandler.ListDeviceRecords)
	api.GET("/devices/:deviceId/snapshots", roHandler.ListDeviceSnapshots)

	// 会话管理
	api.GET("/sessions/:deviceId", roHandler.GetSessionStatus)

	// 下行指令
	api.POST("/devices/:deviceId/commands", cmdHandler.SendCommand)

	// 下行队列统计
	if worker != nil {
		api.GET("/outbound/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, worker.Stats(c.Request.Context()))
		})
	}

	// 运行时配置（脱敏YAML，调试用）
	api.GET("/config", func(c *gin.Context) {
		out, err := cfg.YAML()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/yaml", out)
	})

	logger.Info("admin routes registered")
}
