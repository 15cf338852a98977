package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumeatelie/lume-backend/internal/events"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only listen; anything
	// beyond a control frame is suspicious.
	maxMessageSize = 1024
)

// Conn wraps the underlying websocket connection.
type Conn struct {
	*websocket.Conn
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the router; the handshake accepts any origin.
		return true
	},
}

// ServeWS upgrades the request and wires the connection into the hub and
// the cart event bus for its session.
func ServeWS(hub *Hub, bus *events.Bus, w http.ResponseWriter, r *http.Request, sessionToken string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		return
	}

	ch, cancel := bus.Subscribe(sessionToken)

	client := &Client{
		Hub:          hub,
		Conn:         &Conn{conn},
		SessionToken: sessionToken,
		Send:         make(chan []byte, 16),
		done:         make(chan struct{}),
		cancelSub:    cancel,
	}

	hub.register <- client

	go client.forwardEvents(ch)
	go client.WritePump()
	go client.ReadPump()
}

// ReadPump drains the connection until the peer goes away. Clients do not
// send application messages; reading only services pings and close frames.
func (c *Client) ReadPump() {
	defer func() {
		c.cancelSub()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, map[string]interface{}{
					"cart_session": c.SessionToken,
				})
			}
			break
		}
	}
}

// WritePump delivers queued notifications and keeps the connection alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write message", err, map[string]interface{}{
					"cart_session": c.SessionToken,
				})
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
