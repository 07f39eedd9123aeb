package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisManager Redis版本的会话管理器，支持分布式部署
type RedisManager struct {
	client   *redis.Client
	serverID string        // 当前服务器实例ID
	timeout  time.Duration // 心跳超时时间

	// 本地连接缓存 (connID -> connection object)
	mu        sync.RWMutex
	localConn map[string]interface{}
}

// sessionData Redis存储的会话数据结构
type sessionData struct {
	DeviceID    string    `json:"device_id"`
	ConnID      string    `json:"conn_id"`
	ServerID    string    `json:"server_id"`
	LastSeen    time.Time `json:"last_seen"`
	LastTCPDown time.Time `json:"last_tcp_down,omitempty"`
}

// Redis Key设计
const (
	// session:device:{deviceID} -> sessionData JSON
	keyDevicePrefix = "session:device:"

	// session:conn:{connID} -> deviceID
	keyConnPrefix = "session:conn:"

	// session:server:{serverID}:conns -> Set[connID]
	keyServerConnsPrefix = "session:server:"
)

// NewRedisManager 创建Redis会话管理器
func NewRedisManager(client *redis.Client, serverID string, timeout time.Duration) *RedisManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if serverID == "" {
		serverID = uuid.New().String()
	}
	return &RedisManager{
		client:    client,
		serverID:  serverID,
		timeout:   timeout,
		localConn: make(map[string]interface{}),
	}
}

// OnHeartbeat 更新设备最近一帧时间
func (m *RedisManager) OnHeartbeat(deviceID string, t time.Time) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		// 不存在则创建新的会话数据
		data = &sessionData{
			DeviceID: deviceID,
			LastSeen: t,
		}
	} else {
		data.LastSeen = t
	}

	m.setSessionData(ctx, deviceID, data)
}

// Bind 绑定设备ID到连接对象
func (m *RedisManager) Bind(deviceID string, conn interface{}) {
	ctx := context.Background()

	// 生成唯一的连接ID
	connID := uuid.New().String()

	m.mu.Lock()
	m.localConn[connID] = conn
	m.mu.Unlock()

	data := &sessionData{
		DeviceID: deviceID,
		ConnID:   connID,
		ServerID: m.serverID,
		LastSeen: time.Now(),
	}

	m.setSessionData(ctx, deviceID, data)

	// 连接ID映射: connID -> deviceID
	m.client.Set(ctx, keyConnPrefix+connID, deviceID, m.timeout*2)

	// 加入服务器连接集合
	m.client.SAdd(ctx, m.serverConnsKey(), connID)
}

// UnbindByDevice 解除设备绑定
func (m *RedisManager) UnbindByDevice(deviceID string) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		return
	}

	if data.ConnID != "" {
		m.mu.Lock()
		delete(m.localConn, data.ConnID)
		m.mu.Unlock()

		m.client.Del(ctx, keyConnPrefix+data.ConnID)
		m.client.SRem(ctx, m.serverConnsKey(), data.ConnID)
	}

	m.client.Del(ctx, keyDevicePrefix+deviceID)
}

// OnTCPClosed 记录TCP断开事件并解除绑定
func (m *RedisManager) OnTCPClosed(deviceID string, t time.Time) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		return
	}

	if data.ConnID != "" {
		m.mu.Lock()
		delete(m.localConn, data.ConnID)
		m.mu.Unlock()

		m.client.Del(ctx, keyConnPrefix+data.ConnID)
		m.client.SRem(ctx, m.serverConnsKey(), data.ConnID)
		data.ConnID = ""
	}

	data.LastTCPDown = t
	m.setSessionData(ctx, deviceID, data)
}

// GetConn 获取绑定的连接对象（仅限本地连接）
func (m *RedisManager) GetConn(deviceID string) (interface{}, bool) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		return nil, false
	}

	// 连接在其他服务器实例上时本地无法直发
	if data.ServerID != m.serverID {
		return nil, false
	}

	m.mu.RLock()
	conn, ok := m.localConn[data.ConnID]
	m.mu.RUnlock()

	return conn, ok
}

// IsOnline 判断设备是否在线
func (m *RedisManager) IsOnline(deviceID string, now time.Time) bool {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		return false
	}

	return now.Sub(data.LastSeen) <= m.timeout
}

// LastSeen 返回设备最近一帧时间
func (m *RedisManager) LastSeen(deviceID string) (time.Time, bool) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, deviceID)
	if err != nil {
		return time.Time{}, false
	}
	return data.LastSeen, true
}

// OnlineCount 返回当前在线设备数量
func (m *RedisManager) OnlineCount(now time.Time) int {
	ctx := context.Background()

	var cursor uint64
	count := 0

	for {
		keys, nextCursor, err := m.client.Scan(ctx, cursor, keyDevicePrefix+"*", 100).Result()
		if err != nil {
			break
		}

		for _, key := range keys {
			deviceID := key[len(keyDevicePrefix):]
			if m.IsOnline(deviceID, now) {
				count++
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return count
}

// --- 辅助方法 ---

func (m *RedisManager) getSessionData(ctx context.Context, deviceID string) (*sessionData, error) {
	key := keyDevicePrefix + deviceID
	val, err := m.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var data sessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func (m *RedisManager) setSessionData(ctx context.Context, deviceID string, data *sessionData) error {
	key := keyDevicePrefix + deviceID

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	// 过期时间设为心跳超时的2倍
	return m.client.Set(ctx, key, jsonData, m.timeout*2).Err()
}

func (m *RedisManager) serverConnsKey() string {
	return fmt.Sprintf("%s%s:conns", keyServerConnsPrefix, m.serverID)
}

// Cleanup 清理本服务器的所有会话数据（用于优雅关闭）
func (m *RedisManager) Cleanup() error {
	ctx := context.Background()

	connIDs, err := m.client.SMembers(ctx, m.serverConnsKey()).Result()
	if err != nil {
		return err
	}

	for _, connID := range connIDs {
		deviceID, err := m.client.Get(ctx, keyConnPrefix+connID).Result()
		if err != nil {
			continue
		}
		m.UnbindByDevice(deviceID)
	}

	m.client.Del(ctx, m.serverConnsKey())

	return nil
}
