package beesure

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// repoAPI 持久化协作方抽象（由 storage/pg.Repository 实现）
type repoAPI interface {
	EnsureDevice(ctx context.Context, deviceID string) (int64, error)
	InsertRecord(ctx context.Context, deviceID int64, typ, content string, at time.Time) error
	InsertPosition(ctx context.Context, deviceID int64, pos Position, raw string, at time.Time) error
	InsertSnapshot(ctx context.Context, deviceID int64, capturedAt, imageData string, at time.Time) error
}

// Handlers 将分发结果落库。
// 记录之间相互独立：任何一条写入失败仅记日志并继续，不回滚其余记录，
// 也不影响已合成的回复帧。重复插入可接受，无事务耦合。
type Handlers struct {
	Repo repoAPI
	Log  *zap.Logger
	// OnStoreError 每次写入失败时回调（指标上报），可为 nil
	OnStoreError func()
}

// NewHandlers 创建持久化处理集合
func NewHandlers(repo repoAPI, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{Repo: repo, Log: log}
}

// Persist 持久化一次分发产生的全部记录
func (h *Handlers) Persist(ctx context.Context, res Result) {
	if h == nil || h.Repo == nil || len(res.Records) == 0 {
		return
	}
	devID, err := h.Repo.EnsureDevice(ctx, res.Records[0].DeviceID)
	if err != nil {
		h.Log.Error("ensure device failed",
			zap.String("device_id", res.Records[0].DeviceID), zap.Error(err))
		if h.OnStoreError != nil {
			h.OnStoreError()
		}
		return
	}
	for _, rec := range res.Records {
		switch {
		case rec.Position != nil:
			err = h.Repo.InsertPosition(ctx, devID, *rec.Position, rec.Content, rec.ReceivedAt)
		case rec.Snapshot != nil:
			err = h.Repo.InsertSnapshot(ctx, devID, rec.Snapshot.Timestamp, rec.Snapshot.ImageData, rec.ReceivedAt)
		default:
			err = h.Repo.InsertRecord(ctx, devID, rec.Type, rec.Content, rec.ReceivedAt)
		}
		if err != nil {
			h.Log.Error("store record failed",
				zap.String("device_id", rec.DeviceID),
				zap.String("type", rec.Type),
				zap.Error(err))
			if h.OnStoreError != nil {
				h.OnStoreError()
			}
		}
	}
}
