package beesure

import "strings"

// imgSubtypeSnapshot 远程抓拍子类型；其余子类型不做处理
const imgSubtypeSnapshot = "5"

// ExtractImage 从 img 上报中提取抓拍负载。
// 仅在子类型字段（parts[1]）为 "5" 且至少 3 个逗号字段时提取：
// parts[2] 为抓拍时间戳，其后所有字段按原分隔符拼回作为图像数据
// （数据本身可能含逗号）。其余情况静默跳过，仅保留基线记录。
func ExtractImage(content string) (Snapshot, bool) {
	parts := strings.Split(content, ",")
	if len(parts) < 3 || parts[1] != imgSubtypeSnapshot {
		return Snapshot{}, false
	}
	return Snapshot{
		Timestamp: parts[2],
		ImageData: strings.Join(parts[3:], ","),
	}, true
}
