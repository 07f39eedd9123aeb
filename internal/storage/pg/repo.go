package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
)

// Repository 热路径持久化：接入侧逐帧写入走 pgx
type Repository struct {
	Pool *pgxpool.Pool
}

// EnsureDevice 返回设备ID，若不存在则插入并更新最近时间
func (r *Repository) EnsureDevice(ctx context.Context, deviceID string) (int64, error) {
	const q = `INSERT INTO devices (device_id, last_seen_at)
               VALUES ($1, NOW())
               ON CONFLICT (device_id) DO UPDATE SET updated_at = NOW(), last_seen_at = NOW()
               RETURNING id`
	var id int64
	err := r.Pool.QueryRow(ctx, q, deviceID).Scan(&id)
	return id, err
}

// InsertRecord 插入一条上行指令记录
func (r *Repository) InsertRecord(ctx context.Context, deviceID int64, typ, content string, at time.Time) error {
	const q = `INSERT INTO command_records (device_id, command_type, content, received_at, created_at)
               VALUES ($1,$2,$3,$4,NOW())`
	_, err := r.Pool.Exec(ctx, q, deviceID, typ, content, at)
	return err
}

// InsertPosition 插入一条定位记录（缺失字段存 NULL）
func (r *Repository) InsertPosition(ctx context.Context, deviceID int64, pos beesure.Position, raw string, at time.Time) error {
	const q = `INSERT INTO positions (device_id, latitude, longitude, signal_strength, battery, raw_content, received_at, created_at)
               VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`
	_, err := r.Pool.Exec(ctx, q, deviceID, pos.Latitude, pos.Longitude, pos.Signal, pos.Battery, raw, at)
	return err
}

// InsertSnapshot 插入一条图像快照记录
func (r *Repository) InsertSnapshot(ctx context.Context, deviceID int64, capturedAt, imageData string, at time.Time) error {
	const q = `INSERT INTO snapshots (device_id, captured_at, image_data, received_at, created_at)
               VALUES ($1,$2,$3,$4,NOW())`
	_, err := r.Pool.Exec(ctx, q, deviceID, capturedAt, imageData, at)
	return err
}
