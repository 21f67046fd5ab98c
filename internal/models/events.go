package models

import "time"

// Viewer event types pushed over the fanout hub
const (
	EventConnected   = "connected"
	EventSensorData  = "sensor_data"
	EventDeviceState = "device_state"
	EventPong        = "pong"
)

// ConnectedEvent is the welcome event sent when a viewer connection opens
type ConnectedEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewConnectedEvent builds the welcome event
func NewConnectedEvent() ConnectedEvent {
	return ConnectedEvent{
		Type:      EventConnected,
		Message:   "Connected to SensorBridge event stream",
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// SensorDataEvent carries one normalized reading to live viewers
type SensorDataEvent struct {
	Type      string  `json:"type"`
	Sensor    string  `json:"sensor"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Status    Status  `json:"status"`
	Timestamp string  `json:"timestamp"`
}

// NewSensorDataEvent builds a sensor_data event from a normalized sample
func NewSensorDataEvent(s *Sample) (SensorDataEvent, bool) {
	metric, value, ok := s.Metric()
	if !ok {
		return SensorDataEvent{}, false
	}
	return SensorDataEvent{
		Type:      EventSensorData,
		Sensor:    metric,
		Value:     value,
		Unit:      MetricUnit(metric),
		Status:    s.Status,
		Timestamp: s.Timestamp.Format(time.RFC3339),
	}, true
}

// DeviceStateEvent carries an observed device-state change to live viewers
type DeviceStateEvent struct {
	Type      string `json:"type"`
	Device    string `json:"device"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
}

// NewDeviceStateEvent builds a device_state event
func NewDeviceStateEvent(device, state string) DeviceStateEvent {
	return DeviceStateEvent{
		Type:      EventDeviceState,
		Device:    device,
		State:     state,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// PongEvent is the direct reply to a viewer keepalive ping
type PongEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// NewPongEvent builds a pong reply
func NewPongEvent() PongEvent {
	return PongEvent{
		Type:      EventPong,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
