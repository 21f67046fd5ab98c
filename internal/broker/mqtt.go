package broker

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
)

// MQTTBroker implements Broker on an MQTT connection
type MQTTBroker struct {
	client         mqtt.Client
	logger         *logging.Logger
	publishTimeout time.Duration

	mu   sync.RWMutex
	subs map[string]MessageHandler // topic filter -> handler, for resubscribe
}

// NewMQTTBroker connects to the MQTT broker and returns a Broker
func NewMQTTBroker(cfg config.MQTTConfig, logger *logging.Logger) (*MQTTBroker, error) {
	b := &MQTTBroker{
		logger:         logger.With("component", "broker.mqtt"),
		publishTimeout: cfg.PublishTimeout,
		subs:           make(map[string]MessageHandler),
	}

	clientID := fmt.Sprintf("%s_%s", cfg.ClientID, uuid.New().String()[:8])

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.logger.Warn("Broker connection lost", "error", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			b.logger.Info("Broker connected", "client_id", clientID)
			b.resubscribe()
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to broker %s: %w", cfg.URL, token.Error())
	}

	return b, nil
}

// Subscribe subscribes to a topic filter. The subscription is remembered
// and re-established after a reconnect.
func (b *MQTTBroker) Subscribe(topic string, handler MessageHandler) error {
	b.mu.Lock()
	b.subs[topic] = handler
	b.mu.Unlock()

	token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	b.logger.Info("Subscribed to topic", "topic", topic)
	return nil
}

// Publish publishes a payload, fire-and-forget. The acknowledgement is
// awaited in the background with a bounded timeout and only logged; the
// caller is not blocked on it.
func (b *MQTTBroker) Publish(topic, payload string, retain bool) error {
	if !b.IsConnected() {
		return fmt.Errorf("broker not connected")
	}

	token := b.client.Publish(topic, 1, retain, payload)
	go func() {
		if !token.WaitTimeout(b.publishTimeout) {
			b.logger.Warn("Publish acknowledgement timed out", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			b.logger.Warn("Publish failed", "topic", topic, "error", err)
		}
	}()

	return nil
}

// IsConnected reports whether the MQTT connection is currently open
func (b *MQTTBroker) IsConnected() bool {
	return b.client.IsConnectionOpen()
}

// Close disconnects from the broker
func (b *MQTTBroker) Close() {
	b.client.Disconnect(250)
	b.logger.Info("Broker disconnected")
}

func (b *MQTTBroker) resubscribe() {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for topic, handler := range b.subs {
		h := handler
		token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			h(msg.Topic(), msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			b.logger.Error("Failed to resubscribe", "topic", topic, "error", token.Error())
		}
	}
}
