package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/char5742/tft-touch-bridge/internal/logger"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 診断用途のためすべてのオリジンを許可
	},
}

// handleEvents はポインタ状態の変化を WebSocket で配信する
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L().Debug("WebSocket のアップグレードに失敗しました", "err", err)
		return
	}

	client := s.hub.Register(conn, s.service.Status())
	go writePump(client)

	// 受信は切断の検出にだけ使う
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.Unregister(client)
}

// writePump は送信チャネルが閉じられるまでメッセージを書き込む
func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
