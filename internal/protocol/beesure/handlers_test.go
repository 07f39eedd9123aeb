package beesure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	ensureErr error
	insertErr error

	records   []string // type
	positions int
	snapshots int
}

func (f *fakeRepo) EnsureDevice(ctx context.Context, deviceID string) (int64, error) {
	if f.ensureErr != nil {
		return 0, f.ensureErr
	}
	return 7, nil
}

func (f *fakeRepo) InsertRecord(ctx context.Context, deviceID int64, typ, content string, at time.Time) error {
	f.records = append(f.records, typ)
	return f.insertErr
}

func (f *fakeRepo) InsertPosition(ctx context.Context, deviceID int64, pos Position, raw string, at time.Time) error {
	f.positions++
	return f.insertErr
}

func (f *fakeRepo) InsertSnapshot(ctx context.Context, deviceID int64, capturedAt, imageData string, at time.Time) error {
	f.snapshots++
	return f.insertErr
}

func TestHandlers_PersistPositionResult(t *testing.T) {
	repo := &fakeRepo{}
	h := NewHandlers(repo, nil)

	res := NewDispatcher(nil).Dispatch(&Message{
		Manufacturer: "SG", DeviceID: "88", DeclaredLength: 33,
		Content: "UD,50,100,1.0,X,2.0,Y,Z,A,B,C,7,80",
	})
	h.Persist(context.Background(), res)

	require.Equal(t, []string{"UD"}, repo.records, "baseline record")
	assert.Equal(t, 1, repo.positions, "supplemental position record")
	assert.Equal(t, 0, repo.snapshots)
}

func TestHandlers_StoreErrorDoesNotPropagate(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	h := NewHandlers(repo, nil)

	res := NewDispatcher(nil).Dispatch(&Message{
		Manufacturer: "SG", DeviceID: "88", DeclaredLength: 2, Content: "LK",
	})
	// 落库失败只记日志；Persist 不返回错误，回复早已独立合成
	h.Persist(context.Background(), res)
	assert.Equal(t, "[SG*88*0002*LK]", res.Reply)
}

func TestHandlers_EnsureDeviceFailureSkipsRecords(t *testing.T) {
	repo := &fakeRepo{ensureErr: errors.New("db down")}
	h := NewHandlers(repo, nil)

	res := NewDispatcher(nil).Dispatch(&Message{
		Manufacturer: "SG", DeviceID: "88", DeclaredLength: 2, Content: "LK",
	})
	h.Persist(context.Background(), res)
	assert.Empty(t, repo.records)
}
