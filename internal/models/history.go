package models

import "time"

// Control actions accepted by the command dispatcher
const (
	ActionOn     = "ON"
	ActionOff    = "OFF"
	ActionToggle = "TOGGLE"
)

// ValidAction reports whether the (already upper-cased) action is accepted
func ValidAction(action string) bool {
	switch action {
	case ActionOn, ActionOff, ActionToggle:
		return true
	}
	return false
}

// Command sources recorded in control history
const (
	SourceWeb    = "web"
	SourceMQTT   = "mqtt"
	SourceAPI    = "api"
	SourceSystem = "system"
)

// ControlHistory is one append-only record per command attempt or per
// observed device-state change.
type ControlHistory struct {
	DeviceID   string    `json:"deviceId" bson:"deviceId"`
	DeviceName string    `json:"device_name" bson:"device_name"`
	Action     string    `json:"action" bson:"action"`
	Source     string    `json:"source" bson:"source"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Success    bool      `json:"success" bson:"success"`
	Message    string    `json:"message,omitempty" bson:"message,omitempty"`
}

// HistoryStats summarizes control history outcomes, excluding mqtt-source
// records like the history view itself.
type HistoryStats struct {
	TotalRecords int64 `json:"totalRecords"`
	SuccessCount int64 `json:"successCount"`
	FailureCount int64 `json:"failureCount"`
}
