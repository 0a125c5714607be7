package service

import "sync"

// Event represents a session or marker mutation.
type Event struct {
	Resource string // "sessions", "markers", "route", "snapshots", "view"
	Action   string // e.g. "created", "moved", "deleted"
	Session  string // session ID, empty for snapshot events
	ID       string // marker index or route ID
}

// EventBus is a simple fan-out pub/sub for change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]string
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]string)}
}

// Publish sends an event to all matching subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, session := range b.subs {
		if session != "" && e.Session != "" && session != e.Session {
			continue
		}
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// SubscribeSession receives the events of one session plus events not tied
// to any session.
func (b *EventBus) SubscribeSession(sessionID string) chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = sessionID
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
