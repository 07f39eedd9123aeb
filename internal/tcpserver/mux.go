package tcpserver

import (
	"go.uber.org/zap"

	padapter "github.com/taoyao-code/tracker-server/internal/protocol/adapter"
)

// Mux 协议复用器：首包初判 -> 绑定协议 -> 直通处理。
// 当前只挂 Beesure 一种协议，保留多适配器结构便于后续接入其他表款协议。
type Mux struct {
	entries []muxEntry
	server  *Server
}

type muxEntry struct {
	name    string
	adapter padapter.Adapter
}

// NewMux 创建复用器
func NewMux() *Mux { return &Mux{} }

// Add 注册一个命名协议适配器
func (m *Mux) Add(name string, a padapter.Adapter) { m.entries = append(m.entries, muxEntry{name, a}) }

// SetServer 设置server引用（用于日志）
func (m *Mux) SetServer(s *Server) { m.server = s }

// BindToConn 为连接安装 onRead：首包前缀判定协议后固定处理路径。
// 适配器返回错误意味着传输层异常（如缓冲超限），此时断开连接；
// 协议内的坏帧由适配器内部丢弃，不会走到这里。
func (m *Mux) BindToConn(cc *ConnContext) {
	var bound *muxEntry

	cc.SetOnRead(func(p []byte) {
		if bound == nil {
			pref := p
			if len(pref) > 8 {
				pref = pref[:8]
			}
			for i := range m.entries {
				if m.entries[i].adapter.Sniff(pref) {
					bound = &m.entries[i]
					cc.SetProtocol(bound.name)
					break
				}
			}
			if bound == nil {
				if m.server != nil {
					m.server.log.Warn("unknown protocol prefix, dropping chunk",
						zap.String("remote_addr", cc.RemoteAddr().String()),
						zap.Int("data_len", len(p)))
				}
				return
			}
			if m.server != nil {
				m.server.log.Debug("protocol identified",
					zap.String("remote_addr", cc.RemoteAddr().String()),
					zap.String("protocol", bound.name))
			}
		}
		if err := bound.adapter.ProcessBytes(p); err != nil {
			if m.server != nil {
				m.server.log.Warn("adapter transport error, closing connection",
					zap.String("remote_addr", cc.RemoteAddr().String()),
					zap.String("protocol", bound.name),
					zap.Error(err))
			}
			_ = cc.Close()
		}
	})
}
