package beesure

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrFormat         = errors.New("beesure: malformed frame")
	ErrLengthMismatch = errors.New("beesure: declared length mismatch")
)

// Parse 解析一帧上行消息。
// 帧格式：'[' + 厂商 + '*' + 设备ID + '*' + 长度 + '*' + 内容 + ']'，
// 恰好 4 个 '*' 分隔字段。长度字段先按十进制解析，失败再按十六进制；
// 与内容的字符数不一致时整帧拒绝。纯函数，无副作用。
func Parse(raw string) (*Message, error) {
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return nil, ErrFormat
	}
	fields := strings.Split(raw[1:len(raw)-1], "*")
	if len(fields) != 4 {
		return nil, ErrFormat
	}
	declared, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		declared, err = strconv.ParseInt(fields[2], 16, 32)
		if err != nil {
			return nil, ErrFormat
		}
	}
	// 按字符数精确比较（协议为 ASCII 文本，多字节内容不在范围内）
	if int(declared) != len(fields[3]) {
		return nil, ErrLengthMismatch
	}
	return &Message{
		Manufacturer:   fields[0],
		DeviceID:       fields[1],
		DeclaredLength: int(declared),
		Content:        fields[3],
	}, nil
}

// Token 返回内容的第一个逗号分隔字段；无逗号时即整个内容
func Token(content string) string {
	if i := strings.IndexByte(content, ','); i >= 0 {
		return content[:i]
	}
	return content
}
