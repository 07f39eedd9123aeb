package beesure

// 设备主动上报类指令
const (
	TokenLK     = "LK"     // 链路心跳
	TokenAL     = "AL"     // 告警上报
	TokenUD     = "UD"     // 定位上报
	TokenUD2    = "UD2"    // 盲区补传定位
	TokenPP     = "PP"     // 定位上报（部分固件）
	TokenConfig = "CONFIG" // 配置请求
	TokenImg    = "img"    // 二进制抓拍上报
)

// serverCommands 设备对服务器下行指令的回执 token 集合。
// 回执仅回显 token，长度字段查 replyLength 固定表。
var serverCommands = map[string]struct{}{
	"APN": {}, "UPLOAD": {}, "PW": {}, "CALL": {}, "CENTER": {},
	"MONITOR": {}, "SOS1": {}, "SOS2": {}, "SOS3": {}, "SOS": {},
	"IP": {}, "FACTORY": {}, "LZ": {}, "SOSSMS": {}, "LOWBAT": {},
	"VERNO": {}, "TS": {}, "RESET": {}, "CR": {}, "POWEROFF": {},
	"REMOVE": {}, "REMOVESMS": {}, "WALKTIME": {}, "SLEEPTIME": {},
	"SILENCETIME": {}, "SILENCETIME2": {}, "FIND": {}, "FLOWER": {},
	"REMIND": {}, "TK": {}, "TKQ": {}, "TKQ2": {}, "MESSAGE": {},
	"PHB": {}, "PHB2": {}, "PHBX": {}, "PHBX2": {}, "DPHBX": {},
	"PPR": {}, "profile": {}, "WHITELIST1": {}, "WHITELIST2": {},
	"hrtstart": {}, "HEALTHAUTOSET": {}, "bphrt": {}, "oxygen": {},
	"TAKEPILLS": {}, "rcapture": {}, "FALLDOWN": {}, "LSSET": {},
	"bodytemp": {}, "bodytemp2": {}, "btemp2": {}, "WIFISEARCH": {},
	"WIFISET": {}, "WIFIDEL": {}, "WIFICUR": {}, "WIFIINFOUP": {},
	"APPLOCK": {}, "DEVREFUSEPHONESWITCH": {}, "ACALL": {},
}

// replyLenOverride 回执长度字段的特例表；未命中的服务器指令一律 "0006"。
// 注意这是沿用既有实现的固定查表，与回执内容的实际长度无关。
var replyLenOverride = map[string]string{
	"APN":     "0004",
	"CALL":    "0004",
	"SOS1":    "0004",
	"SOS2":    "0004",
	"SOS3":    "0004",
	"CENTER":  "0004",
	"MONITOR": "0004",
	"IP":      "0008",
}

// IsServerCommand 判断 token 是否属于服务器下行指令回执集合
func IsServerCommand(token string) bool {
	_, ok := serverCommands[token]
	return ok
}

// replyLength 服务器指令回执的长度字段（固定查表，默认 "0002"）
func replyLength(token string) string {
	if l, ok := replyLenOverride[token]; ok {
		return l
	}
	if IsServerCommand(token) {
		return "0006"
	}
	return "0002"
}
