package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/taoyao-code/tracker-server/internal/storage"
	"github.com/taoyao-code/tracker-server/internal/storage/models"
)

// Repository 基于 GORM 的 CoreRepo 实现，服务于管理 API 的读路径。
type Repository struct {
	db *gorm.DB
}

// New 返回一个使用给定 *gorm.DB 的 CoreRepo 实例。
func New(db *gorm.DB) storage.CoreRepo {
	return &Repository{db: db}
}

// GetDeviceByDeviceID 通过设备标识查询设备。
func (r *Repository) GetDeviceByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &device, err
}

// ListDevices 分页返回设备列表，按 id 倒序。
func (r *Repository) ListDevices(ctx context.Context, limit, offset int) ([]models.Device, error) {
	var devices []models.Device
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// ListRecentRecords 返回设备最近的上行指令记录。
func (r *Repository) ListRecentRecords(ctx context.Context, deviceID int64, limit int) ([]models.CommandRecord, error) {
	var records []models.CommandRecord
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListRecentPositions 返回设备最近的定位记录。
func (r *Repository) ListRecentPositions(ctx context.Context, deviceID int64, limit int) ([]models.Position, error) {
	var positions []models.Position
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// GetLatestPosition 返回设备最新一条定位。
func (r *Repository) GetLatestPosition(ctx context.Context, deviceID int64) (*models.Position, error) {
	var pos models.Position
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &pos, err
}

// ListRecentSnapshots 返回设备最近的图像快照。
func (r *Repository) ListRecentSnapshots(ctx context.Context, deviceID int64, limit int) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&snaps).Error; err != nil {
		return nil, err
	}
	return snaps, nil
}
