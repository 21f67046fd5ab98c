package services

import (
	"context"
	"errors"
	"sort"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

// DeviceService exposes the device directory
type DeviceService struct {
	store  store.Store
	logger *logging.Logger
}

// NewDeviceService creates a DeviceService
func NewDeviceService(st store.Store, logger *logging.Logger) *DeviceService {
	return &DeviceService{
		store:  st,
		logger: logger.With("component", "device"),
	}
}

// List returns all known devices ordered by id
func (d *DeviceService) List(ctx context.Context) ([]*models.Device, error) {
	devices, err := d.store.Devices(ctx)
	if err != nil {
		return nil, storeFailed(err)
	}
	sort.Slice(devices, func(a, b int) bool {
		return devices[a].DeviceID < devices[b].DeviceID
	})
	return devices, nil
}

// Get returns one device
func (d *DeviceService) Get(ctx context.Context, deviceID string) (*models.Device, error) {
	device, err := d.store.Device(ctx, deviceID)
	if errors.Is(err, store.ErrDeviceNotFound) {
		return nil, NewServiceError(CodeDeviceNotFound, "device not found: "+deviceID)
	}
	if err != nil {
		return nil, storeFailed(err)
	}
	return device, nil
}

// Update applies display field changes to a device
func (d *DeviceService) Update(ctx context.Context, deviceID string, update *models.DeviceUpdate) (*models.Device, error) {
	device, err := d.store.UpdateDevice(ctx, deviceID, update)
	if errors.Is(err, store.ErrDeviceNotFound) {
		return nil, NewServiceError(CodeDeviceNotFound, "device not found: "+deviceID)
	}
	if err != nil {
		return nil, storeFailed(err)
	}
	return device, nil
}
