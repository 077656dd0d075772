package websocket

import (
	"encoding/json"
	"time"
)

// EventType distinguishes subscription deliveries.
type EventType string

const (
	// EventTypeSnapshot is the current document sent on subscribe.
	EventTypeSnapshot EventType = "month.snapshot"
	// EventTypeUpdated is a document change made by any client.
	EventTypeUpdated EventType = "month.updated"
	// EventTypeAbsent signals that the document does not exist yet.
	EventTypeAbsent EventType = "month.absent"
)

// Event is a subscription message sent to clients. Payload carries the
// serialized MonthData and is empty for absent events.
type Event struct {
	Type      EventType       `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates an event for a month key.
func NewEvent(eventType EventType, key string, payload json.RawMessage) Event {
	return Event{
		Type:      eventType,
		Key:       key,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// MonthSnapshot creates a month.snapshot event.
func MonthSnapshot(key string, payload json.RawMessage) Event {
	return NewEvent(EventTypeSnapshot, key, payload)
}

// MonthUpdated creates a month.updated event.
func MonthUpdated(key string, payload json.RawMessage) Event {
	return NewEvent(EventTypeUpdated, key, payload)
}

// MonthAbsent creates a month.absent event.
func MonthAbsent(key string) Event {
	return NewEvent(EventTypeAbsent, key, nil)
}

// ToJSON serializes the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Topic names the broadcast group for one family's month document.
func Topic(familyID, key string) string {
	return familyID + "/" + key
}
