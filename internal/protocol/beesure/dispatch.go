package beesure

import (
	"time"

	"go.uber.org/zap"
)

// Dispatcher 命令分发器：按内容首字段 token 查表，合成回复帧与持久化记录。
// 无跨帧状态，单实例可被多连接并发使用。
type Dispatcher struct {
	log *zap.Logger
	now func() time.Time
}

// NewDispatcher 创建分发器；logger 为 nil 时使用 Nop
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log, now: time.Now}
}

// Dispatch 分发一帧已解析消息。
// 无论 token 是否命中，都先生成一条基线记录；未识别的 token 仅告警日志，
// 不产生回复也不追加记录，消息本身不会因此失败。
func (d *Dispatcher) Dispatch(msg *Message) Result {
	token := Token(msg.Content)
	now := d.now()
	res := Result{Records: []Record{{
		DeviceID:   msg.DeviceID,
		Type:       token,
		Content:    msg.Content,
		ReceivedAt: now,
	}}}

	switch {
	case token == TokenLK:
		res.Reply = Format(msg.Manufacturer, msg.DeviceID, "0002", TokenLK)

	case token == TokenAL:
		flags := DecodeAlarm(msg.Content)
		res.Alarm = &flags
		d.log.Info("alarm report",
			zap.String("device_id", msg.DeviceID),
			zap.Bool("fall_down", flags.FallDown),
			zap.Bool("sos", flags.SOS))
		res.Reply = Format(msg.Manufacturer, msg.DeviceID, "0002", TokenAL)

	case token == TokenUD, token == TokenUD2, token == TokenPP:
		if pos, ok := ExtractPosition(msg.Content); ok {
			res.Records = append(res.Records, Record{
				DeviceID:   msg.DeviceID,
				Type:       token,
				Content:    msg.Content,
				ReceivedAt: now,
				Position:   &pos,
			})
		}

	case token == TokenConfig:
		res.Reply = Format(msg.Manufacturer, msg.DeviceID, "0006", "CONFIG,1")

	case token == TokenImg:
		if snap, ok := ExtractImage(msg.Content); ok {
			res.Records = append(res.Records, Record{
				DeviceID:   msg.DeviceID,
				Type:       token,
				Content:    msg.Content,
				ReceivedAt: now,
				Snapshot:   &snap,
			})
		}

	case IsServerCommand(token):
		res.Reply = Format(msg.Manufacturer, msg.DeviceID, replyLength(token), token)

	default:
		d.log.Warn("unknown command token",
			zap.String("device_id", msg.DeviceID),
			zap.String("token", token))
	}
	return res
}
