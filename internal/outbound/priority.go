package outbound

// 下行指令优先级定义
// 注意: 数值越小=优先级越高（Redis ZPOPMIN取最小score）
const (
	// PriorityEmergency 紧急指令（立即执行）
	// 场景: 紧急追踪、远程关机
	PriorityEmergency = 1

	// PriorityHigh 高优先级指令
	// 场景: 找手表、远程监听、拍照
	PriorityHigh = 2

	// PriorityNormal 普通优先级指令
	// 场景: 参数设置、号码配置
	PriorityNormal = 3

	// PriorityLow 低优先级指令
	// 场景: 工作模式、静音时段等非即时配置
	PriorityLow = 4
)

// CommandPriority 根据指令token返回优先级
func CommandPriority(token string) int {
	switch token {
	case "CR", "POWEROFF", "RESET":
		return PriorityEmergency

	case "FIND", "MONITOR", "CALL", "MESSAGE", "rcapture":
		return PriorityHigh

	case "UPLOAD", "LZ", "SOSSMS", "LOWBAT", "REMOVE", "REMOVESMS",
		"WALKTIME", "SLEEPTIME", "SILENCETIME", "SILENCETIME2", "FLOWER", "REMIND":
		return PriorityLow

	default:
		// APN/SOS/CENTER/IP 等配置类指令走普通优先级
		return PriorityNormal
	}
}
