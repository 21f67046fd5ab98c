// Package broker abstracts the publish/subscribe bus the sensor network
// speaks over. The production implementation is MQTT; an in-memory
// implementation backs tests.
package broker

// MessageHandler is a function that processes one inbound broker message
type MessageHandler func(topic string, payload []byte)

// Broker defines the interface for broker connectivity
type Broker interface {
	// Subscribe subscribes to a topic filter with the given handler.
	// Filters may use MQTT wildcards (+, #).
	Subscribe(topic string, handler MessageHandler) error

	// Publish publishes a payload to a topic. When retain is set the
	// broker re-delivers the last value to new subscribers.
	Publish(topic, payload string, retain bool) error

	// IsConnected reports whether the broker connection is established
	IsConnected() bool

	// Close closes the connection and releases resources
	Close()
}

// MatchTopic reports whether an MQTT topic filter matches a concrete topic.
// '+' matches exactly one level, '#' matches the remainder.
func MatchTopic(filter, topic string) bool {
	fi, ti := 0, 0
	fparts := splitTopic(filter)
	tparts := splitTopic(topic)

	for fi < len(fparts) {
		if fparts[fi] == "#" {
			return true
		}
		if ti >= len(tparts) {
			return false
		}
		if fparts[fi] != "+" && fparts[fi] != tparts[ti] {
			return false
		}
		fi++
		ti++
	}
	return ti == len(tparts)
}

func splitTopic(topic string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			parts = append(parts, topic[start:i])
			start = i + 1
		}
	}
	return append(parts, topic[start:])
}
