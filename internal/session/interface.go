package session

import "time"

// SessionManager 会话管理器接口，支持内存和 Redis 两种实现。
// 协议引擎本身无会话状态；这里只跟踪设备活跃度与设备到连接的绑定，
// 供在线统计与下行指令直写使用。
type SessionManager interface {
	// OnHeartbeat 更新设备最近一帧时间（任何合法帧都算存活证据）
	OnHeartbeat(deviceID string, t time.Time)

	// Bind 绑定设备ID到连接对象，重复绑定覆盖旧连接
	Bind(deviceID string, conn interface{})

	// UnbindByDevice 解除绑定
	UnbindByDevice(deviceID string)

	// OnTCPClosed 记录 TCP 断开事件
	OnTCPClosed(deviceID string, t time.Time)

	// GetConn 返回绑定的连接对象
	GetConn(deviceID string) (interface{}, bool)

	// IsOnline 判断设备是否在线
	IsOnline(deviceID string, now time.Time) bool

	// LastSeen 返回设备最近一帧时间
	LastSeen(deviceID string) (time.Time, bool)

	// OnlineCount 返回当前在线设备数量
	OnlineCount(now time.Time) int
}
