package tcpserver

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/tracker-server/internal/config"
)

func TestConnContext_并发Write与Close(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := New(cfgpkg.TCPConfig{ReadTimeout: time.Second, WriteTimeout: 100 * time.Millisecond}, nil)
	cc := newConnContext(s, server)
	go cc.run()
	go func() { _, _ = io.Copy(io.Discard, client) }()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 关闭竞争下只允许返回错误，不允许 panic
			_ = cc.Write([]byte("[SG*1*0002*LK]"))
		}()
	}
	_ = cc.Close()
	wg.Wait()

	select {
	case <-cc.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("connection did not finish after close")
	}

	if err := cc.Write([]byte("x")); err == nil {
		t.Fatalf("write after close must fail")
	}
}

func TestConnContext_零读超时不断联(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	// readTimeout 显式为 0 表示不设读超时，首包前连接必须保持
	s := New(cfgpkg.TCPConfig{ReadTimeout: 0, WriteTimeout: time.Second}, nil)
	cc := newConnContext(s, server)

	recv := make(chan string, 1)
	cc.SetOnRead(func(p []byte) {
		recv <- string(p)
	})
	go cc.run()

	time.Sleep(50 * time.Millisecond)
	if _, err := client.Write([]byte("[SG*1*0002*LK]")); err != nil {
		t.Fatalf("client write failed: %v", err)
	}

	select {
	case got := <-recv:
		if got != "[SG*1*0002*LK]" {
			t.Fatalf("unexpected payload: %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("frame not delivered, connection likely closed by stale deadline")
	}
	_ = cc.Close()
}
