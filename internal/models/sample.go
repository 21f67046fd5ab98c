package models

import "time"

// Status classifies a sample against the per-metric thresholds
type Status string

const (
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Rank returns the severity rank of the status (danger > warning > normal).
// Unknown statuses rank as normal.
func (s Status) Rank() int {
	switch s {
	case StatusDanger:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// MaxStatus returns the more severe of two statuses
func MaxStatus(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Sample is one normalized, persisted sensor reading. At most one metric
// column is populated per inbound message; absent metrics stay nil.
// Samples are append-only and immutable once stored.
type Sample struct {
	DeviceID    string    `json:"deviceId" bson:"deviceId"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Temperature *float64  `json:"temperature,omitempty" bson:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty" bson:"humidity,omitempty"`
	Light       *float64  `json:"light,omitempty" bson:"light,omitempty"`
	Status      Status    `json:"status" bson:"status"`
}

// Metric returns the populated metric name and value of the sample
func (s *Sample) Metric() (string, float64, bool) {
	switch {
	case s.Temperature != nil:
		return MetricTemperature, *s.Temperature, true
	case s.Humidity != nil:
		return MetricHumidity, *s.Humidity, true
	case s.Light != nil:
		return MetricLight, *s.Light, true
	}
	return "", 0, false
}

// Metric column names
const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricLight       = "light"
)

// MetricUnit returns the display unit for a metric column
func MetricUnit(metric string) string {
	switch metric {
	case MetricTemperature:
		return "°C"
	case MetricHumidity:
		return "%"
	case MetricLight:
		return "lux"
	}
	return ""
}

// SensorStats summarizes the stored sensor data
type SensorStats struct {
	TotalSamples int64 `json:"totalSamples"`
	DeviceCount  int   `json:"deviceCount"`
	OnlineCount  int   `json:"onlineCount"`
}

// ConsolidatedRow is the query-time merge of all Samples sharing a rounded
// timestamp: one value per metric column (absent stays nil, never zero) and
// the maximum-severity status among contributors. Not persisted.
type ConsolidatedRow struct {
	DeviceID    string    `json:"deviceId"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	Light       *float64  `json:"light"`
	Status      Status    `json:"status"`
}

// Column returns the named metric column of the row
func (r *ConsolidatedRow) Column(metric string) *float64 {
	switch metric {
	case MetricTemperature:
		return r.Temperature
	case MetricHumidity:
		return r.Humidity
	case MetricLight:
		return r.Light
	}
	return nil
}
