package storage

import (
	"context"

	"github.com/taoyao-code/tracker-server/internal/storage/models"
)

// CoreRepo 面向管理接口的只读/低频存储抽象。
// 约束：
// - 管理 API 禁止直接写 SQL，统一通过本接口访问
// - 接口必须保持 DB-agnostic（面向模型与基础类型）
// - 接入热路径不走本接口（逐帧写入见 storage/pg）
type CoreRepo interface {
	// ---------- 设备 ----------
	// GetDeviceByDeviceID 通过设备标识查询设备
	GetDeviceByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	// ListDevices 设备列表（管理/调试用）
	ListDevices(ctx context.Context, limit, offset int) ([]models.Device, error)

	// ---------- 指令记录 ----------
	// ListRecentRecords 读取设备最近的上行指令记录
	ListRecentRecords(ctx context.Context, deviceID int64, limit int) ([]models.CommandRecord, error)

	// ---------- 定位 ----------
	// ListRecentPositions 读取设备最近的定位记录
	ListRecentPositions(ctx context.Context, deviceID int64, limit int) ([]models.Position, error)
	// GetLatestPosition 读取设备最新一条定位
	GetLatestPosition(ctx context.Context, deviceID int64) (*models.Position, error)

	// ---------- 快照 ----------
	// ListRecentSnapshots 读取设备最近的图像快照
	ListRecentSnapshots(ctx context.Context, deviceID int64, limit int) ([]models.Snapshot, error)
}
