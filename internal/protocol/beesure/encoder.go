package beesure

import "fmt"

// composeManufacturer 外部触发下行指令的固定厂商前缀。
// 既有实现不回查该设备上行帧的厂商字段，保持不变。
const composeManufacturer = "3G"

// Format 渲染一帧下行数据：'[' + 厂商 + '*' + 设备ID + '*' + 长度字段 + '*' + 内容 + ']'。
// 长度字段由调用方给定（协议回执用固定表，见 replyLength）。
func Format(manufacturer, deviceID, lengthField, body string) string {
	return "[" + manufacturer + "*" + deviceID + "*" + lengthField + "*" + body + "]"
}

// Compose 构造外部触发（管理接口/下行队列）的下行指令帧。
// 与协议回执不同，长度字段按 指令+附加内容 的实际字符数计算，
// 4 位左补零十六进制（与上行长度字段的十六进制回退解析一致）。
func Compose(deviceID, command, extra string) string {
	body := command + extra
	return Format(composeManufacturer, deviceID, fmt.Sprintf("%04X", len(body)), body)
}
