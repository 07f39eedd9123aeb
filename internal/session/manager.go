package session

import (
	"sync"
	"time"
)

// Manager 内存会话管理器：记录设备最近一帧时间与连接绑定
type Manager struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time // deviceID -> last seen
	conns    map[string]interface{}
	timeout  time.Duration
}

// New 创建内存会话管理器
func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Manager{
		lastSeen: make(map[string]time.Time),
		conns:    make(map[string]interface{}),
		timeout:  timeout,
	}
}

// OnHeartbeat 更新设备最近一帧时间
func (m *Manager) OnHeartbeat(deviceID string, t time.Time) {
	m.mu.Lock()
	m.lastSeen[deviceID] = t
	m.mu.Unlock()
}

// Bind 绑定设备ID到连接对象（opaque），重复绑定覆盖
func (m *Manager) Bind(deviceID string, conn interface{}) {
	m.mu.Lock()
	m.conns[deviceID] = conn
	m.mu.Unlock()
}

// UnbindByDevice 解除绑定
func (m *Manager) UnbindByDevice(deviceID string) {
	m.mu.Lock()
	delete(m.conns, deviceID)
	m.mu.Unlock()
}

// OnTCPClosed 记录断开事件；内存实现只解除绑定即可
func (m *Manager) OnTCPClosed(deviceID string, t time.Time) {
	m.UnbindByDevice(deviceID)
}

// GetConn 返回绑定的连接对象
func (m *Manager) GetConn(deviceID string) (interface{}, bool) {
	m.mu.RLock()
	c, ok := m.conns[deviceID]
	m.mu.RUnlock()
	return c, ok
}

// IsOnline 判断设备是否在线
func (m *Manager) IsOnline(deviceID string, now time.Time) bool {
	m.mu.RLock()
	ts, ok := m.lastSeen[deviceID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(ts) <= m.timeout
}

// LastSeen 返回设备最近一帧时间
func (m *Manager) LastSeen(deviceID string) (time.Time, bool) {
	m.mu.RLock()
	ts, ok := m.lastSeen[deviceID]
	m.mu.RUnlock()
	return ts, ok
}

// OnlineCount 返回当前在线设备数量
func (m *Manager) OnlineCount(now time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, ts := range m.lastSeen {
		if now.Sub(ts) <= m.timeout {
			count++
		}
	}
	return count
}
