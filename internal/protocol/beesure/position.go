package beesure

import (
	"strconv"
	"strings"
)

// ExtractPosition 从定位上报内容中按固定下标提取字段。
// 下标 1/2/4 在本协议侧写中不使用（日期/时间/有效位），保持原样跳过。
// 少于 5 个逗号字段时整体跳过提取（消息本身仍经基线记录入库）；
// 各字段独立 best-effort：下标缺失或解析失败仅置空该字段。
func ExtractPosition(content string) (Position, bool) {
	parts := strings.Split(content, ",")
	if len(parts) < 5 {
		return Position{}, false
	}
	return Position{
		Latitude:  floatAt(parts, 3),
		Longitude: floatAt(parts, 5),
		Signal:    intAt(parts, 11),
		Battery:   intAt(parts, 12),
	}, true
}

func floatAt(parts []string, i int) *float64 {
	if i >= len(parts) {
		return nil
	}
	v, err := strconv.ParseFloat(parts[i], 64)
	if err != nil {
		return nil
	}
	return &v
}

func intAt(parts []string, i int) *int {
	if i >= len(parts) {
		return nil
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil {
		return nil
	}
	return &v
}
