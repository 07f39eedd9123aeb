package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/tracker-server/internal/config"
)

// Server TCP 网关：监听、限流、为每个连接启动读写循环。
// 协议语义不在此层；连接建立后交由 onConn 回调（网关层）绑定适配器。
type Server struct {
	cfg        cfgpkg.TCPConfig
	log        *zap.Logger
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	nextConnID uint64

	onConn      func(*ConnContext)
	onAccept    func()
	onRecvBytes func(n int)

	limiter *ConnectionLimiter
	rate    *RateLimiter
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		stopC:   make(chan struct{}),
		limiter: NewConnectionLimiter(cfg.MaxConnections, 0),
		rate:    NewRateLimiter(cfg.AcceptRate, cfg.AcceptBurst),
	}
}

// SetConnHandler 设置新连接回调（在读循环启动前调用）
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.onConn = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// GetLogger 返回网关日志器
func (s *Server) GetLogger() *zap.Logger { return s.log }

// ActiveConnections 当前活跃连接数
func (s *Server) ActiveConnections() int { return s.limiter.Current() }

// MaxConnections 连接数上限
func (s *Server) MaxConnections() int { return s.limiter.MaxConnections() }

// GetLimiterStats 连接限流统计
func (s *Server) GetLimiterStats() LimiterStats { return s.limiter.Stats() }

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}

			if !s.rate.Allow() {
				s.log.Warn("accept rate limit exceeded, dropping connection",
					zap.String("remote_addr", conn.RemoteAddr().String()))
				_ = conn.Close()
				continue
			}
			if err := s.limiter.Acquire(context.Background()); err != nil {
				s.log.Warn("connection limit reached, dropping connection",
					zap.String("remote_addr", conn.RemoteAddr().String()),
					zap.Error(err))
				_ = conn.Close()
				continue
			}
			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			if s.onConn != nil {
				s.onConn(cc)
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				cc.run()
			}()
		}
	}()
	return nil
}

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
