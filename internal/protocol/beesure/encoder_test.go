package beesure

import "testing"

func TestFormat(t *testing.T) {
	got := Format("SG", "8800000015", "0002", "LK")
	if got != "[SG*8800000015*0002*LK]" {
		t.Fatalf("unexpected frame: %q", got)
	}
}

func TestCompose_LengthComputed(t *testing.T) {
	// "APN,cmnet,,,20634" 共17个字符，长度字段为其4位十六进制 0011
	got := Compose("8800000015", "APN", ",cmnet,,,20634")
	want := "[3G*8800000015*0011*APN,cmnet,,,20634]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompose_FixedManufacturer(t *testing.T) {
	// 下行厂商前缀固定为 3G，与该设备上行帧的厂商无关
	got := Compose("1", "FIND", "")
	if got != "[3G*1*0004*FIND]" {
		t.Fatalf("unexpected frame: %q", got)
	}
}

func TestCompose_ParsesBack(t *testing.T) {
	frame := Compose("8800000015", "CR", ",1,2")
	msg, err := Parse(frame)
	if err != nil {
		t.Fatalf("composed frame must parse: %v", err)
	}
	if msg.Content != "CR,1,2" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
}
