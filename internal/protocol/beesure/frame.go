package beesure

import (
	"bytes"
	"errors"
)

// ErrFrameTooLarge 单帧超出缓冲上限（传输层据此断开连接）
var ErrFrameTooLarge = errors.New("beesure: frame exceeds buffer limit")

// StreamDecoder 按 '[' ']' 括号边界从字节流中切分完整帧。
// 负责半包/粘包重组；帧间的 CRLF 等分隔噪声在此吞掉，引擎不感知。
type StreamDecoder struct {
	buf []byte
	max int
}

// NewStreamDecoder 创建流式切帧器；max 为半包缓冲上限（字节）
func NewStreamDecoder(max int) *StreamDecoder {
	if max <= 0 {
		max = 64 * 1024
	}
	return &StreamDecoder{max: max}
}

// Feed 追加一段原始字节并返回其中全部完整帧（含括号）。
// 返回 ErrFrameTooLarge 时缓冲已清空，调用方应断开该连接。
func (d *StreamDecoder) Feed(p []byte) ([]string, error) {
	d.buf = append(d.buf, p...)
	var frames []string
	for {
		start := bytes.IndexByte(d.buf, '[')
		if start < 0 {
			// 全是帧外噪声，直接丢弃
			d.buf = d.buf[:0]
			return frames, nil
		}
		end := bytes.IndexByte(d.buf[start:], ']')
		if end < 0 {
			// 半包：保留起始括号之后的部分等待后续字节
			if start > 0 {
				d.buf = append(d.buf[:0], d.buf[start:]...)
			}
			if len(d.buf) > d.max {
				d.buf = d.buf[:0]
				return frames, ErrFrameTooLarge
			}
			return frames, nil
		}
		frames = append(frames, string(d.buf[start:start+end+1]))
		d.buf = append(d.buf[:0], d.buf[start+end+1:]...)
	}
}
