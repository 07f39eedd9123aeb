package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
)

func TestPusher_SendJSON_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Signature") != "" && r.Header.Get("X-Nonce") != "" {
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		w.WriteHeader(401)
	}))
	defer ts.Close()

	p := NewPusher(nil, ts.URL+"/hook", "secret")
	code, body, err := p.SendJSON(context.Background(), ts.URL+"/hook", map[string]any{"x": 1})
	if err != nil || code != 200 {
		t.Fatalf("unexpected: code=%d err=%v", code, err)
	}
	if string(body) == "" {
		t.Fatalf("empty body")
	}
}

func TestPusher_PushAlarm(t *testing.T) {
	var got Event
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	p := NewPusher(nil, ts.URL+"/alarm", "secret")
	err := p.PushAlarm(context.Background(), "8800000015", beesure.AlarmFlags{SOS: true})
	if err != nil {
		t.Fatalf("push alarm: %v", err)
	}
	if got.Event != "alarm" || got.DeviceID != "8800000015" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Data["sos"] != true || got.Data["fall_down"] != false {
		t.Fatalf("unexpected flags: %+v", got.Data)
	}
}

func TestPusher_RetriesOn5xx(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer ts.Close()

	p := NewPusher(nil, ts.URL, "secret")
	code, _, err := p.SendJSON(context.Background(), ts.URL, map[string]any{})
	if err != nil || code != 200 {
		t.Fatalf("expected success after retries: code=%d err=%v", code, err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
