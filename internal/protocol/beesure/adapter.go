package beesure

import (
	"errors"

	"go.uber.org/zap"
)

// Adapter Beesure 协议适配器：流式切帧 + 解析 + 分发回调。
// 每个 TCP 连接持有独立实例（StreamDecoder 有半包缓冲）。
type Adapter struct {
	decoder *StreamDecoder
	handle  func(*Message) error
	observe func(result string)
	log     *zap.Logger
}

// NewAdapter 创建适配器
func NewAdapter() *Adapter {
	return &Adapter{decoder: NewStreamDecoder(0), log: zap.NewNop()}
}

// SetLogger 安装日志器
func (a *Adapter) SetLogger(l *zap.Logger) {
	if l != nil {
		a.log = l
	}
}

// SetBufferLimit 设置半包缓冲上限（字节），抓拍上报帧较大时需调高。
// 须在喂入数据前调用；非正值保持默认。
func (a *Adapter) SetBufferLimit(n int) {
	if n > 0 {
		a.decoder = NewStreamDecoder(n)
	}
}

// SetHandler 安装消息回调（解析成功的每帧调用一次）
func (a *Adapter) SetHandler(h func(*Message) error) { a.handle = h }

// SetParseObserver 安装解析结果观察回调（用于指标上报），
// result 取值 ok / length_mismatch / format_error
func (a *Adapter) SetParseObserver(fn func(result string)) { a.observe = fn }

// ProcessBytes 处理来自连接的原始字节流。
// 单帧解析失败只丢弃该帧并继续读后续帧，连接不受影响；
// 仅缓冲超限这类传输层错误向上返回（由复用器断开连接）。
func (a *Adapter) ProcessBytes(p []byte) error {
	frames, err := a.decoder.Feed(p)
	for _, f := range frames {
		msg, perr := Parse(f)
		if perr != nil {
			if a.observe != nil {
				if errors.Is(perr, ErrLengthMismatch) {
					a.observe("length_mismatch")
				} else {
					a.observe("format_error")
				}
			}
			a.log.Warn("drop malformed frame",
				zap.String("frame", f), zap.Error(perr))
			continue
		}
		if a.observe != nil {
			a.observe("ok")
		}
		if a.handle == nil {
			continue
		}
		if herr := a.handle(msg); herr != nil {
			a.log.Error("frame handler error",
				zap.String("device_id", msg.DeviceID), zap.Error(herr))
		}
	}
	return err
}

// Sniff 首包初判：本协议帧以 '[' 起始
func (a *Adapter) Sniff(prefix []byte) bool {
	return len(prefix) > 0 && prefix[0] == '['
}
