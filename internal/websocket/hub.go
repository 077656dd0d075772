package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Topic() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by month-document topic
// ("{familyID}/{monthKey}"). It is safe for concurrent use.
type Hub struct {
	topics map[string]map[string]ClientInterface
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its topic
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registerLocked(client)
}

// RegisterWithSnapshot atomically resolves the subscriber's initial
// event and adds the client, all under the hub lock. Broadcast holds
// the same lock while delivering, so any write either completes its
// upsert before the snapshot is read or is delivered to the client
// after its initial event — the subscriber can never be parked on a
// stale snapshot. A snapshot error leaves the client unregistered.
func (h *Hub) RegisterWithSnapshot(client ClientInterface, snapshot func() ([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	payload, err := snapshot()
	if err != nil {
		return err
	}

	h.registerLocked(client)
	if err := client.Send(payload); err != nil {
		log.Debug().
			Err(err).
			Str("client_id", client.ID()).
			Msg("Failed to queue initial event")
	}
	return nil
}

// registerLocked adds the client to its topic map. Caller holds mu.
func (h *Hub) registerLocked(client ClientInterface) {
	topic := client.Topic()
	clientID := client.ID()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]ClientInterface)
	}

	h.topics[topic][clientID] = client

	log.Debug().
		Str("topic", topic).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic := client.Topic()
	clientID := client.ID()

	if clients, ok := h.topics[topic]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty topic maps
			if len(clients) == 0 {
				delete(h.topics, topic)
			}

			log.Debug().
				Str("topic", topic).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients subscribed to a topic
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", string(event.Type)).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.topics[topic]
	if !ok || len(clients) == 0 {
		return
	}

	// Send never blocks (the client buffer drops slow consumers), so
	// delivering under the lock keeps two rapid writes in order and
	// keeps broadcasts ordered against RegisterWithSnapshot.
	for _, client := range clients {
		if err := client.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("topic", topic).
				Str("client_id", client.ID()).
				Msg("Failed to send to client")
		}
	}

	log.Debug().
		Str("topic", topic).
		Str("event_type", string(event.Type)).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients subscribed to a topic
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.topics[topic]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all topics
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.topics {
		total += len(clients)
	}
	return total
}
