package beesure

import (
	"fmt"
	"strconv"
	"strings"
)

// 告警位图中标志位所在的字符串下标（32 位二进制串，MSB 在前）
const (
	alarmBitFallDown = 11
	alarmBitSOS      = 16
)

// DecodeAlarm 解码 AL 告警位图：第 16 个逗号字段按十六进制解析，
// 渲染为 32 字符左补零二进制串后在固定下标读取标志位。
// 字段缺失或不可解析时退回 "00000000"——既有实现即为 8 字符默认串，
// 此时标志位下标越界按未置位处理，行为保持不变。
func DecodeAlarm(content string) AlarmFlags {
	parts := strings.Split(content, ",")
	bits := "00000000"
	if len(parts) > 15 {
		if v, err := strconv.ParseUint(parts[15], 16, 32); err == nil {
			bits = fmt.Sprintf("%032b", v)
		}
	}
	return AlarmFlags{
		FallDown: bitSet(bits, alarmBitFallDown),
		SOS:      bitSet(bits, alarmBitSOS),
	}
}

func bitSet(bits string, i int) bool {
	return i < len(bits) && bits[i] == '1'
}
