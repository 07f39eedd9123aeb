package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted      prometheus.Counter
	TCPBytesReceived prometheus.Counter
	ParseTotal       *prometheus.CounterVec // labels: result=ok|format_error|length_mismatch
	RouteTotal       *prometheus.CounterVec // labels: token
	ReplyTotal       prometheus.Counter     // 已合成的协议回复数
	HeartbeatTotal   prometheus.Counter     // LK 心跳计数
	OnlineGauge      prometheus.Gauge       // 当前在线设备数
	StoreErrorTotal  prometheus.Counter     // 持久化失败计数
	OutboundSent     prometheus.Counter     // 下行指令发送计数
	AlertPushTotal   *prometheus.CounterVec // labels: result=ok|error
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		ParseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beesure_parse_total",
			Help: "Beesure frame parse attempts.",
		}, []string{"result"}),
		RouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beesure_route_total",
			Help: "Beesure routed frames by command token.",
		}, []string{"token"}),
		ReplyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beesure_reply_total",
			Help: "Protocol replies written back to devices.",
		}),
		HeartbeatTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_heartbeat_total",
			Help: "Total heartbeats observed.",
		}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_online_count",
			Help: "Current number of online devices.",
		}),
		StoreErrorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_error_total",
			Help: "Failed persistence writes.",
		}),
		OutboundSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbound_sent_total",
			Help: "Outbound command frames written to devices.",
		}),
		AlertPushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alert_push_total",
			Help: "Alarm webhook push attempts.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.TCPAccepted, m.TCPBytesReceived, m.ParseTotal, m.RouteTotal,
		m.ReplyTotal, m.HeartbeatTotal, m.OnlineGauge, m.StoreErrorTotal,
		m.OutboundSent, m.AlertPushTotal,
	)
	return m
}
