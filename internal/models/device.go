package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Device categories
const (
	DeviceTypeSensor     = "sensor"
	DeviceTypeActuator   = "actuator"
	DeviceTypeController = "controller"
)

// Device represents a device known to the bridge. Devices are created
// implicitly on the first message referencing an unseen id and are never
// deleted by the bridge.
type Device struct {
	DeviceID  string            `json:"deviceId" bson:"deviceId"`
	Name      string            `json:"name" bson:"name"`
	Location  string            `json:"location" bson:"location"`
	Type      string            `json:"type" bson:"type"`
	Online    bool              `json:"online" bson:"online"`
	LastSeen  time.Time         `json:"lastSeen" bson:"lastSeen"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// DeviceDefaults returns a new device record with creation-time defaults
// applied. Presence fields are left for the store's upsert to fill.
func DeviceDefaults(deviceID string) *Device {
	return &Device{
		DeviceID: deviceID,
		Name:     "ESP8266 Device",
		Location: "Unknown",
		Type:     DeviceTypeSensor,
	}
}

// DeviceUpdate carries the mutable display fields of a device. Nil fields
// are left untouched.
type DeviceUpdate struct {
	Name     *string           `json:"name,omitempty"`
	Location *string           `json:"location,omitempty"`
	Type     *string           `json:"type,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks the device category if one is being set
func (u *DeviceUpdate) Validate() error {
	if u.Type == nil {
		return nil
	}
	switch *u.Type {
	case DeviceTypeSensor, DeviceTypeActuator, DeviceTypeController:
		return nil
	}
	return &fiber.Error{
		Code:    fiber.StatusBadRequest,
		Message: "type must be one of: sensor, actuator, controller",
	}
}
