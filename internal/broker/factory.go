package broker

import (
	"fmt"

	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
)

// New creates a Broker based on the MQTT configuration
func New(cfg config.MQTTConfig, logger *logging.Logger) (Broker, error) {
	switch cfg.Type {
	case "", "mqtt":
		return NewMQTTBroker(cfg, logger)
	case "memory":
		return NewMemoryBroker(), nil
	default:
		return nil, fmt.Errorf("unsupported broker type: %s", cfg.Type)
	}
}
