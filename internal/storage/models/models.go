package models

import (
	"time"
)

// 注意：
// - 保持与 db/migrations 下的 schema 完全对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// Device 映射 devices 表
type Device struct {
	// 主键
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 设备唯一标识（上行帧第二段）
	DeviceID string `gorm:"column:device_id;type:text;not null;uniqueIndex"`
	// 厂商前缀，可空
	Manufacturer *string `gorm:"column:manufacturer;type:text"`
	// 最近一帧时间
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	// 审计字段
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Device) TableName() string { return "devices" }

// CommandRecord 映射 command_records 表（上行指令日志）
type CommandRecord struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID    int64     `gorm:"column:device_id;not null;index:idx_records_device_time,priority:1"`
	CommandType string    `gorm:"column:command_type;type:text;not null"`
	Content     string    `gorm:"column:content;type:text;not null"`
	ReceivedAt  time.Time `gorm:"column:received_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index:idx_records_device_time,priority:2,sort:desc"`
}

func (CommandRecord) TableName() string { return "command_records" }

// Position 映射 positions 表
type Position struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID int64 `gorm:"column:device_id;not null;index:idx_positions_device_time,priority:1"`
	// 定位字段缺失时存 NULL
	Latitude       *float64  `gorm:"column:latitude"`
	Longitude      *float64  `gorm:"column:longitude"`
	SignalStrength *int32    `gorm:"column:signal_strength"`
	Battery        *int32    `gorm:"column:battery"`
	RawContent     string    `gorm:"column:raw_content;type:text;not null"`
	ReceivedAt     time.Time `gorm:"column:received_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index:idx_positions_device_time,priority:2,sort:desc"`
}

func (Position) TableName() string { return "positions" }

// Snapshot 映射 snapshots 表（设备上传的图像帧）
type Snapshot struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID int64 `gorm:"column:device_id;not null;index"`
	// 设备侧时间戳，原样保存
	CapturedAt string    `gorm:"column:captured_at;type:text"`
	ImageData  string    `gorm:"column:image_data;type:text;not null"`
	ReceivedAt time.Time `gorm:"column:received_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Snapshot) TableName() string { return "snapshots" }
