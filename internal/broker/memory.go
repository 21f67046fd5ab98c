package broker

import (
	"fmt"
	"sync"
)

// MemoryBroker implements Broker in-process. Delivery is synchronous, which
// keeps tests deterministic. Retained messages are kept per topic and
// replayed to matching new subscribers, mirroring MQTT retain semantics.
type MemoryBroker struct {
	mu        sync.RWMutex
	connected bool
	subs      map[string]MessageHandler // topic filter -> handler
	retained  map[string]string         // topic -> last retained payload
}

// NewMemoryBroker creates a connected in-memory broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		connected: true,
		subs:      make(map[string]MessageHandler),
		retained:  make(map[string]string),
	}
}

// Subscribe registers a handler for a topic filter and replays any retained
// messages matching it.
func (b *MemoryBroker) Subscribe(topic string, handler MessageHandler) error {
	b.mu.Lock()
	if _, exists := b.subs[topic]; exists {
		b.mu.Unlock()
		return fmt.Errorf("already subscribed to topic: %s", topic)
	}
	b.subs[topic] = handler

	var replay []struct{ topic, payload string }
	for t, p := range b.retained {
		if MatchTopic(topic, t) {
			replay = append(replay, struct{ topic, payload string }{t, p})
		}
	}
	b.mu.Unlock()

	for _, r := range replay {
		handler(r.topic, []byte(r.payload))
	}
	return nil
}

// Publish delivers the payload synchronously to all matching subscribers
func (b *MemoryBroker) Publish(topic, payload string, retain bool) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return fmt.Errorf("broker not connected")
	}
	if retain {
		b.retained[topic] = payload
	}
	var handlers []MessageHandler
	for filter, h := range b.subs {
		if MatchTopic(filter, topic) {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(topic, []byte(payload))
	}
	return nil
}

// IsConnected reports the simulated connection state
func (b *MemoryBroker) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// SetConnected toggles the simulated connection state (for tests)
func (b *MemoryBroker) SetConnected(connected bool) {
	b.mu.Lock()
	b.connected = connected
	b.mu.Unlock()
}

// Retained returns the last retained payload for a topic (for tests)
func (b *MemoryBroker) Retained(topic string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.retained[topic]
	return p, ok
}

// Close marks the broker disconnected and drops all subscriptions
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	b.connected = false
	b.subs = make(map[string]MessageHandler)
	b.mu.Unlock()
}
