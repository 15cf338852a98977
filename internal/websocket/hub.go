package websocket

import (
	"encoding/json"
	"sync"

	"github.com/lumeatelie/lume-backend/internal/events"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

// Client is one open storefront connection, keyed by its cart session.
// Several tabs of the same browser share a session token, so a session can
// hold multiple clients.
type Client struct {
	Hub          *Hub
	Conn         *Conn
	SessionToken string
	Send         chan []byte
	done         chan struct{}
	cancelSub    func()
}

// Hub tracks live connections per cart session and fans cart-change
// notifications out to every tab of that session.
type Hub struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionToken] = append(h.clients[client.SessionToken], client)
			total := len(h.clients[client.SessionToken])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"cart_session": client.SessionToken,
				"total_tabs":   total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.SessionToken]; ok {
				newList := make([]*Client, 0, len(clientList))
				removed := false
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						removed = true
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.SessionToken)
				} else {
					h.clients[client.SessionToken] = newList
				}
				if removed {
					close(client.done)
					close(client.Send)
				}
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"cart_session": client.SessionToken,
			})
		}
	}
}

// forwardEvents pumps bus notifications for the client's session into its
// send queue until the subscription or the client goes away.
func (c *Client) forwardEvents(ch <-chan events.CartEvent) {
	for event := range ch {
		data, err := json.Marshal(map[string]interface{}{
			"type":       "cart_changed",
			"action":     event.Action,
			"product_id": event.ProductID,
		})
		if err != nil {
			continue
		}
		select {
		case c.Send <- data:
		case <-c.done:
			return
		default:
			// Slow tab; drop rather than stall the session.
		}
	}
}
