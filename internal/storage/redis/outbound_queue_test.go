package redis

import (
	"encoding/json"
	"testing"
	"time"
)

// 注意: 集成类测试需要Redis服务器运行，纯解析逻辑在此直接测

func TestOutboundMessage_Serialization(t *testing.T) {
	msg := &OutboundMessage{
		ID:        "test-123",
		DeviceID:  "8800000015",
		Command:   "FIND",
		Content:   "FIND",
		Priority:  5,
		Retries:   0,
		MaxRetry:  3,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Timeout:   5000,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := parseMessage(msg.ID + ":" + string(data))
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if got.DeviceID != "8800000015" || got.Command != "FIND" || got.Priority != 5 {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := parseMessage("no-colon-here"); err == nil {
		t.Fatalf("expected error for member without separator")
	}
	if _, err := parseMessage("id:{broken"); err == nil {
		t.Fatalf("expected error for broken json")
	}
}

func TestEnqueueScore_PriorityOrder(t *testing.T) {
	// score = priority*1e19 + nano 时间戳，配合ZPOPMIN：
	// 数值小（优先级高）的先出，同优先级内先进先出
	score := func(priority int, at time.Time) float64 {
		return float64(priority)*1e19 + float64(at.UnixNano())
	}

	early := time.Now()
	later := early.Add(time.Hour)

	if score(1, later) >= score(4, early) {
		t.Fatalf("higher priority should pop first even when enqueued later")
	}
	if score(3, early) >= score(3, later) {
		t.Fatalf("same priority should keep FIFO order")
	}
}
