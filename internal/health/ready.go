package health

import "sync/atomic"

// Readiness 启动期就绪标记：数据库迁移完成、TCP 网关开始监听后分别置位。
// 与 Aggregator 的运行期检查互补，/readyz 只看本标记。
type Readiness struct {
	dbReady  atomic.Bool
	tcpReady atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetDBReady(v bool)  { r.dbReady.Store(v) }
func (r *Readiness) SetTCPReady(v bool) { r.tcpReady.Store(v) }

// Ready 两个子系统均就绪才对外放量
func (r *Readiness) Ready() bool {
	return r.dbReady.Load() && r.tcpReady.Load()
}
