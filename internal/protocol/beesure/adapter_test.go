package beesure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAdapter_ProcessBytes(t *testing.T) {
	a := NewAdapter()
	var got []*Message
	a.SetHandler(func(m *Message) error {
		got = append(got, m)
		return nil
	})

	// 粘包 + 坏帧混排：坏帧丢弃，连接层不报错
	if err := a.ProcessBytes([]byte("[SG*1*0002*LK]\r\n[SG*1*0009*AL]\r\n[SG*")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.ProcessBytes([]byte("1*0002*AL]")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 accepted messages, got %d", len(got))
	}
	if got[0].Content != "LK" || got[1].Content != "AL" {
		t.Fatalf("unexpected messages: %+v %+v", got[0], got[1])
	}
}

func TestAdapter_SetBufferLimit(t *testing.T) {
	// 抓拍帧可超过默认 64KB 半包缓冲；内容约 80KB
	content := "img,5,230501120000," + strings.Repeat("A", 80*1024)
	frame := fmt.Sprintf("[SG*1234567890*%d*%s]", len(content), content)
	// 末尾括号单独到达，前段始终是半包
	head, tail := frame[:len(frame)-1], frame[len(frame)-1:]

	// 默认上限：半包累积超限，传输层报错
	a := NewAdapter()
	if err := a.ProcessBytes([]byte(head)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge with default limit, got %v", err)
	}

	// 调高上限后同一帧分两段到达可完整解析
	a = NewAdapter()
	a.SetBufferLimit(256 * 1024)
	var got []*Message
	a.SetHandler(func(m *Message) error {
		got = append(got, m)
		return nil
	})
	if err := a.ProcessBytes([]byte(head)); err != nil {
		t.Fatalf("unexpected error on first chunk: %v", err)
	}
	if err := a.ProcessBytes([]byte(tail)); err != nil {
		t.Fatalf("unexpected error on second chunk: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].DeclaredLength != len(content) {
		t.Fatalf("unexpected declared length %d", got[0].DeclaredLength)
	}
}

func TestAdapter_Sniff(t *testing.T) {
	a := NewAdapter()
	if !a.Sniff([]byte("[SG*")) {
		t.Fatalf("bracket prefix must match")
	}
	if a.Sniff([]byte("GET /")) || a.Sniff(nil) {
		t.Fatalf("non-bracket prefix must not match")
	}
}
