package tcpserver

import (
	"testing"

	bs "github.com/taoyao-code/tracker-server/internal/protocol/beesure"
)

func TestMux_SniffAndDispatch(t *testing.T) {
	ad := bs.NewAdapter()
	var got []*bs.Message
	ad.SetHandler(func(m *bs.Message) error {
		got = append(got, m)
		return nil
	})

	mux := NewMux()
	mux.Add("beesure", ad)

	cc := &ConnContext{}
	mux.BindToConn(cc)
	if cc.onRead == nil {
		t.Fatalf("onRead not set")
	}

	// 首包以 '[' 起始 -> 绑定并直通处理
	cc.onRead([]byte("[3G*1234567890*0002*LK]"))
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].DeviceID != "1234567890" || got[0].Content != "LK" {
		t.Fatalf("unexpected message: %+v", got[0])
	}

	// 已绑定后继续走同一适配器
	cc.onRead([]byte("[3G*1234567890*0009*LK,0,0,79]"))
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
}

func TestMux_UnknownPrefixDropped(t *testing.T) {
	ad := bs.NewAdapter()
	var got int
	ad.SetHandler(func(m *bs.Message) error {
		got++
		return nil
	})

	mux := NewMux()
	mux.Add("beesure", ad)

	cc := &ConnContext{}
	mux.BindToConn(cc)

	// 未知前缀：整块丢弃，不绑定协议
	cc.onRead([]byte{0xFC, 0xFE, 0x05, 0x10, 0x00})
	if got != 0 {
		t.Fatalf("unknown prefix should not dispatch, got %d", got)
	}

	// 之后到达合法帧仍可完成初判
	cc.onRead([]byte("[3G*1234567890*0002*LK]"))
	if got != 1 {
		t.Fatalf("expected 1 message after valid frame, got %d", got)
	}
}
