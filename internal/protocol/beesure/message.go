package beesure

import "time"

// Message 一帧上行消息的结构化结果（[厂商*设备ID*长度*内容]）
// Content 由解析步骤独占生成，后续各环节只读不改。
type Message struct {
	Manufacturer   string
	DeviceID       string
	DeclaredLength int
	Content        string
}

// Position 定位上报中按固定下标提取的字段。
// 任一字段解析失败时为 nil，不影响其余字段。
type Position struct {
	Latitude  *float64
	Longitude *float64
	Signal    *int
	Battery   *int
}

// Snapshot 远程抓拍（img 子类型 5）负载
type Snapshot struct {
	Timestamp string
	ImageData string
}

// AlarmFlags AL 告警位图中当前关注的两个标志位
type AlarmFlags struct {
	FallDown bool
	SOS      bool
}

// Record 一条待持久化的指令记录。
// 每帧必有一条基线记录（Position/Snapshot 均为 nil）；
// 定位/抓拍指令追加一条带提取字段的补充记录。
type Record struct {
	DeviceID   string
	Type       string
	Content    string
	ReceivedAt time.Time
	Position   *Position
	Snapshot   *Snapshot
}

// Result 一次分发的全部产物：零或一条回复帧 + 记录列表。
// 回复与持久化互不影响：落库失败不撤销回复，反之亦然。
type Result struct {
	Reply   string // 为空表示无回复
	Records []Record
	Alarm   *AlarmFlags // 仅 AL 指令置位，供日志与告警推送使用
}
