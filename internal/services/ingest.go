package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/broker"
	"github.com/sensorbridge/sensorbridge/internal/cache"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// Broadcaster pushes events to all connected live viewers
type Broadcaster interface {
	Broadcast(event interface{})
}

const handlerTimeout = 10 * time.Second

// Ingestor normalizes inbound broker traffic into the store, the latest
// cache, and the live viewer stream.
type Ingestor struct {
	cfg    config.MQTTConfig
	broker broker.Broker
	store  store.Store
	cache  *cache.SampleCache
	hub    Broadcaster
	logger *logging.Logger
}

// NewIngestor creates an Ingestor
func NewIngestor(cfg config.MQTTConfig, b broker.Broker, st store.Store, c *cache.SampleCache, hub Broadcaster, logger *logging.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		broker: b,
		store:  st,
		cache:  c,
		hub:    hub,
		logger: logger.With("component", "ingestor"),
	}
}

// Start subscribes to the sensor reading and device state topics
func (i *Ingestor) Start() error {
	if err := i.broker.Subscribe(i.cfg.SensorTopic, i.handleSensorMessage); err != nil {
		return err
	}
	return i.broker.Subscribe(i.cfg.StateTopic, i.handleStateMessage)
}

// handleSensorMessage processes one sensor reading. The metric is the third
// topic level (iot/sensor/temp). Unknown metrics are dropped without noise
// so unrelated topics under the wildcard stay harmless; unparsable payloads
// are logged and dropped.
func (i *Ingestor) handleSensorMessage(topic string, payload []byte) {
	segments := strings.Split(topic, "/")
	if len(segments) < 3 {
		return
	}

	metric, ok := metricFromTopic(segments[2])
	if !ok {
		return
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		i.logger.Warn("Dropping unparsable sensor payload",
			"topic", topic, "payload", string(payload))
		return
	}

	now := time.Now()
	sample := &models.Sample{
		DeviceID:  i.cfg.SensorDeviceID,
		Timestamp: now,
		Status:    classify(metric, value),
	}
	switch metric {
	case models.MetricTemperature:
		sample.Temperature = &value
	case models.MetricHumidity:
		sample.Humidity = &value
	case models.MetricLight:
		sample.Light = &value
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := i.store.AppendSample(ctx, sample); err != nil {
		i.logger.Error("Failed to persist sample", "metric", metric, "error", err)
	}
	if err := i.store.UpsertDevicePresence(ctx, sample.DeviceID, now); err != nil {
		i.logger.Error("Failed to update device presence", "device", sample.DeviceID, "error", err)
	}
	if err := i.cache.SetSample(ctx, sample); err != nil {
		i.logger.Warn("Failed to cache latest sample", "device", sample.DeviceID, "error", err)
	}

	// viewers get the reading even when persistence hiccups
	if event, ok := models.NewSensorDataEvent(sample); ok {
		i.hub.Broadcast(event)
	}
}

// handleStateMessage processes a device state echo (iot/control/<device>/state)
func (i *Ingestor) handleStateMessage(topic string, payload []byte) {
	segments := strings.Split(topic, "/")
	if len(segments) < 4 || segments[3] != "state" {
		return
	}
	device := segments[2]
	state := string(payload)
	now := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := i.store.UpsertDevicePresence(ctx, device, now); err != nil {
		i.logger.Error("Failed to update device presence", "device", device, "error", err)
	}

	record := &models.ControlHistory{
		DeviceID:   device,
		DeviceName: i.deviceName(ctx, device),
		Action:     strings.ToUpper(state),
		Source:     models.SourceMQTT,
		Timestamp:  now,
		Success:    true,
		Message:    "State reported by device",
	}
	if err := i.store.AppendHistory(ctx, record); err != nil {
		i.logger.Error("Failed to persist state record", "device", device, "error", err)
	}

	i.hub.Broadcast(models.NewDeviceStateEvent(device, state))
}

func (i *Ingestor) deviceName(ctx context.Context, deviceID string) string {
	d, err := i.store.Device(ctx, deviceID)
	if err != nil {
		return deviceID
	}
	return d.Name
}

// metricFromTopic maps the topic level naming of the sensor network to the
// stored metric columns.
func metricFromTopic(segment string) (string, bool) {
	switch segment {
	case "temp":
		return models.MetricTemperature, true
	case "humidity":
		return models.MetricHumidity, true
	case "light":
		return models.MetricLight, true
	}
	return "", false
}

// classify applies the per-metric alert thresholds. Light has no thresholds
// and always reads normal.
func classify(metric string, value float64) models.Status {
	switch metric {
	case models.MetricTemperature:
		switch {
		case value < 0 || value > 50:
			return models.StatusDanger
		case value < 10 || value > 40:
			return models.StatusWarning
		}
	case models.MetricHumidity:
		switch {
		case value < 10 || value > 90:
			return models.StatusDanger
		case value < 20 || value > 80:
			return models.StatusWarning
		}
	}
	return models.StatusNormal
}
