package events

import (
	"sync"

	"github.com/lumeatelie/lume-backend/pkg/logger"
)

// CartEvent describes a change applied to a cart session. Subscribers use it
// to refresh any other view of the same cart (other tabs, websocket clients).
type CartEvent struct {
	SessionToken string `json:"sessionToken"`
	Action       string `json:"action"` // added, updated, removed, cleared
	ProductID    uint   `json:"productId,omitempty"`
}

// Bus is an in-process publish/subscribe fan-out keyed by cart session token.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan CartEvent]struct{}
	logger      *logger.Logger
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[chan CartEvent]struct{}),
		logger:      logger.Get(),
	}
}

// Subscribe registers a new listener for the given session token. The caller
// must call the returned cancel function when done.
func (b *Bus) Subscribe(sessionToken string) (<-chan CartEvent, func()) {
	ch := make(chan CartEvent, 8)

	b.mu.Lock()
	if b.subscribers[sessionToken] == nil {
		b.subscribers[sessionToken] = make(map[chan CartEvent]struct{})
	}
	b.subscribers[sessionToken][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subscribers[sessionToken]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subscribers, sessionToken)
			}
		}
		b.mu.Unlock()
		close(ch)
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber of the session. Slow
// subscribers are skipped rather than blocking the publisher.
func (b *Bus) Publish(event CartEvent) {
	b.mu.RLock()
	subs := b.subscribers[event.SessionToken]
	delivered := 0
	for ch := range subs {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	b.mu.RUnlock()

	if delivered > 0 {
		b.logger.Debug("Published cart event", map[string]interface{}{
			"cart_session": event.SessionToken,
			"action":       event.Action,
			"subscribers":  delivered,
		})
	}
}

// SubscriberCount returns the number of active listeners for a session.
func (b *Bus) SubscriberCount(sessionToken string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionToken])
}
