package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/tracker-server/internal/config"
	"github.com/taoyao-code/tracker-server/internal/metrics"
	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
	"github.com/taoyao-code/tracker-server/internal/session"
	"github.com/taoyao-code/tracker-server/internal/tcpserver"
)

// AlarmPusher 告警外推抽象（由 alerts.Pusher 实现）
type AlarmPusher interface {
	PushAlarm(ctx context.Context, deviceID string, flags beesure.AlarmFlags) error
}

// NewConnHandler 构建 TCP 连接处理器，完成协议识别、会话绑定与指标上报。
// 通过 getHandlers 延迟获取持久化处理集合，以便在 DB 初始化后赋值。
func NewConnHandler(
	cfg cfgpkg.TCPConfig,
	sess session.SessionManager,
	appm *metrics.AppMetrics,
	getHandlers func() *beesure.Handlers,
	pusher AlarmPusher,
	logger *zap.Logger,
) func(*tcpserver.ConnContext) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := beesure.NewDispatcher(logger)

	return func(cc *tcpserver.ConnContext) {
		bsAdapter := beesure.NewAdapter()
		bsAdapter.SetLogger(logger)
		bsAdapter.SetBufferLimit(cfg.FrameBufferLimit)
		if appm != nil {
			bsAdapter.SetParseObserver(func(result string) {
				appm.ParseTotal.WithLabelValues(result).Inc()
			})
		}

		var boundDevice string
		bindIfNeeded := func(deviceID string) {
			if boundDevice != deviceID {
				boundDevice = deviceID
				sess.Bind(deviceID, cc)
			}
		}

		bsAdapter.SetHandler(func(msg *beesure.Message) error {
			now := time.Now()
			token := beesure.Token(msg.Content)

			// 任何合法帧都刷新会话，设备重连换ID时重新绑定
			bindIfNeeded(msg.DeviceID)
			sess.OnHeartbeat(msg.DeviceID, now)

			if appm != nil {
				appm.RouteTotal.WithLabelValues(token).Inc()
				if token == beesure.TokenLK {
					appm.HeartbeatTotal.Inc()
				}
				appm.OnlineGauge.Set(float64(sess.OnlineCount(now)))
			}

			res := dispatcher.Dispatch(msg)

			if res.Reply != "" {
				if err := cc.Write([]byte(res.Reply)); err != nil {
					logger.Warn("write reply failed",
						zap.String("device_id", msg.DeviceID),
						zap.String("token", token),
						zap.Error(err))
				} else if appm != nil {
					appm.ReplyTotal.Inc()
				}
			}

			if h := getHandlers(); h != nil {
				h.Persist(context.Background(), res)
			}

			// 告警外推不阻塞协议路径
			if res.Alarm != nil && (res.Alarm.SOS || res.Alarm.FallDown) && pusher != nil {
				flags := *res.Alarm
				deviceID := msg.DeviceID
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := pusher.PushAlarm(ctx, deviceID, flags); err != nil {
						logger.Error("alarm push failed",
							zap.String("device_id", deviceID), zap.Error(err))
						if appm != nil {
							appm.AlertPushTotal.WithLabelValues("error").Inc()
						}
						return
					}
					if appm != nil {
						appm.AlertPushTotal.WithLabelValues("ok").Inc()
					}
				}()
			}
			return nil
		})

		mux := tcpserver.NewMux()
		mux.Add("beesure", bsAdapter)
		mux.SetServer(cc.Server())
		mux.BindToConn(cc)

		go func() {
			<-cc.Done()
			if boundDevice != "" {
				sess.UnbindByDevice(boundDevice)
				sess.OnTCPClosed(boundDevice, time.Now())
				if appm != nil {
					appm.OnlineGauge.Set(float64(sess.OnlineCount(time.Now())))
				}
			}
		}()
	}
}
