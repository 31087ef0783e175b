package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message は WebSocket で送る共通のメッセージ
type Message struct {
	Type  string `json:"type"` // event / hello
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	TS    string `json:"ts"`
}

// Client は接続中の WebSocket クライアント
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub は接続中のクライアントへイベントを配信する
type Hub struct {
	mu sync.RWMutex

	clients    map[*Client]struct{}
	closed     bool
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewHub は新しい Hub を作成し、配信ループを開始する
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
		stop:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.closed = true
			for c := range h.clients {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()
			return
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			var slow []*Client
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			// 受信が追いつかないクライアントは切断する
			for _, c := range slow {
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
}

// Register はクライアントを登録し、最初のメッセージとして hello を積む。
// 停止後に登録したクライアントの送信チャネルはすぐに閉じられる
func (h *Hub) Register(conn *websocket.Conn, hello any) *Client {
	c := &Client{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	// 登録前のチャネルは他から閉じられない
	c.Send <- encode(Message{Type: "hello", Data: hello})

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.Send)
		return c
	}
	h.clients[c] = struct{}{}
	return c
}

// Unregister はクライアントを登録解除する
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Clients は接続中のクライアント数を返す
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast はイベントを全クライアントへ送る。詰まっている場合は捨てる
func (h *Hub) Broadcast(event string, data any) {
	b := encode(Message{Type: "event", Event: event, Data: data})
	select {
	case h.broadcast <- b:
	default:
	}
}

func encode(m Message) []byte {
	m.TS = time.Now().Format(time.RFC3339)
	b, _ := json.Marshal(m)
	return b
}

// Close は配信ループを止め、すべてのクライアントの送信チャネルを閉じる
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}
