package services

import (
	"context"
	"strings"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/broker"
	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// CommandService dispatches device commands to the broker and records each
// attempt in the control history.
type CommandService struct {
	cfg    config.MQTTConfig
	broker broker.Broker
	store  store.Store
	logger *logging.Logger
}

// NewCommandService creates a CommandService
func NewCommandService(cfg config.MQTTConfig, b broker.Broker, st store.Store, logger *logging.Logger) *CommandService {
	return &CommandService{
		cfg:    cfg,
		broker: b,
		store:  st,
		logger: logger.With("component", "command"),
	}
}

// Dispatch validates a command, publishes it retained to the device's
// control topic, and appends a history record. The action is upper-cased
// but deliberately not trimmed: surrounding whitespace makes it invalid,
// which keeps the on-wire command vocabulary exact.
func (c *CommandService) Dispatch(ctx context.Context, req *models.CommandRequest) (*models.ControlHistory, error) {
	if req.Device == "" {
		return nil, NewServiceError(CodeInvalidQuery, "device is required")
	}

	action := strings.ToUpper(req.Action)
	if !models.ValidAction(action) {
		return nil, NewServiceErrorWithDetails(CodeInvalidAction,
			"action must be one of: ON, OFF, TOGGLE",
			map[string]interface{}{"action": req.Action})
	}

	if !c.broker.IsConnected() {
		return nil, NewServiceError(CodeBrokerUnavailable, "broker connection is down")
	}

	topic := c.cfg.ControlTopicPrefix + req.Device
	if err := c.broker.Publish(topic, action, true); err != nil {
		c.logger.Error("Failed to publish command", "topic", topic, "error", err)
		return nil, NewServiceError(CodeBrokerUnavailable, "failed to publish command")
	}

	record := &models.ControlHistory{
		DeviceID:   req.Device,
		DeviceName: c.deviceName(ctx, req.Device),
		Action:     action,
		Source:     models.SourceWeb,
		Timestamp:  time.Now(),
		Success:    true,
		Message:    "Command dispatched",
	}
	if err := c.store.AppendHistory(ctx, record); err != nil {
		c.logger.Error("Command published but history write failed",
			"device", req.Device, "action", action, "error", err)
		return nil, storeFailed(err)
	}

	c.logger.Info("Command dispatched", "device", req.Device, "action", action)
	return record, nil
}

func (c *CommandService) deviceName(ctx context.Context, deviceID string) string {
	d, err := c.store.Device(ctx, deviceID)
	if err != nil {
		return deviceID
	}
	return d.Name
}
