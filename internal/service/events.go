package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventSessionDeleted EventType = "session_deleted"
	EventNodeCreated    EventType = "node_created"
	EventNodeUpdated    EventType = "node_updated"
	EventLinkToggled    EventType = "link_toggled"
	EventLayoutUpdated  EventType = "layout_updated"
	EventViewportChange EventType = "viewport_changed"
	EventPaletteReload  EventType = "palette_reloaded"
)

// Event represents a state change of one session, or of the whole service
// when SessionID is empty
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventBus fans events out to subscribers without blocking the publisher
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers. Slow subscribers miss events.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
