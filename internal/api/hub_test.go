package api

import (
	"encoding/json"
	"testing"
	"time"
)

// drain は送信チャネルが閉じられるまで受け取ったメッセージを返す
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var got []Message
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b, ok := <-c.Send:
			if !ok {
				return got
			}
			var m Message
			if err := json.Unmarshal(b, &m); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got = append(got, m)
		case <-timeout:
			t.Fatal("send channel was not closed")
		}
	}
}

func TestHubHelloComesFirst(t *testing.T) {
	h := NewHub()
	c := h.Register(nil, map[string]int{"ticks": 3})
	h.Broadcast("transition", "pressed")
	waitFor(t, "broadcast delivered", func() bool { return len(c.Send) == 2 })
	h.Close()

	got := drain(t, c)
	if len(got) != 2 || got[0].Type != "hello" || got[1].Event != "transition" {
		t.Errorf("messages = %+v", got)
	}
}

func TestHubRegisterAfterClose(t *testing.T) {
	h := NewHub()
	h.Close()

	// 停止と登録が競合してもパニックせず、hello の後にチャネルが閉じられる
	c := h.Register(nil, nil)
	got := drain(t, c)
	if len(got) != 1 || got[0].Type != "hello" {
		t.Errorf("messages = %+v", got)
	}
	if h.Clients() != 0 {
		t.Errorf("clients after close = %d", h.Clients())
	}
}
