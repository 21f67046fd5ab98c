// Package store persists devices, sensor samples, and control history.
// Two drivers are provided: an in-memory store and a MongoDB store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/models"
)

// ErrDeviceNotFound is returned when a lookup references an unknown device
var ErrDeviceNotFound = errors.New("device not found")

// SampleFilter restricts a sample scan. Zero time values leave that bound
// open; an empty DeviceID matches all devices.
type SampleFilter struct {
	DeviceID string
	Start    time.Time
	End      time.Time
}

// HistoryFilter restricts a control history scan
type HistoryFilter struct {
	DeviceID       string
	Action         string
	ExcludeSources []string
}

// Store defines the persistence interface of the bridge. Sample and history
// records are append-only; only device presence and display fields mutate.
type Store interface {
	// AppendSample persists one sensor reading
	AppendSample(ctx context.Context, sample *models.Sample) error

	// Samples returns all samples matching the filter, unordered
	Samples(ctx context.Context, filter SampleFilter) ([]*models.Sample, error)

	// SampleCount returns the total number of stored samples
	SampleCount(ctx context.Context) (int64, error)

	// LatestPerDevice returns the most recent sample of every device
	LatestPerDevice(ctx context.Context) ([]*models.Sample, error)

	// DeleteSamplesBefore removes samples older than the cutoff and returns
	// how many were removed. A zero cutoff removes all samples.
	DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// UpsertDevicePresence marks a device online and advances its lastSeen
	// timestamp, creating the device with defaults on first contact.
	// lastSeen never moves backwards.
	UpsertDevicePresence(ctx context.Context, deviceID string, seenAt time.Time) error

	// Devices lists all known devices
	Devices(ctx context.Context) ([]*models.Device, error)

	// Device returns one device or ErrDeviceNotFound
	Device(ctx context.Context, deviceID string) (*models.Device, error)

	// UpdateDevice applies the non-nil display fields and returns the
	// updated device, or ErrDeviceNotFound.
	UpdateDevice(ctx context.Context, deviceID string, update *models.DeviceUpdate) (*models.Device, error)

	// AppendHistory persists one control history record
	AppendHistory(ctx context.Context, record *models.ControlHistory) error

	// History returns all history records matching the filter, unordered
	History(ctx context.Context, filter HistoryFilter) ([]*models.ControlHistory, error)

	// HistoryStats summarizes outcomes of records matching the filter
	HistoryStats(ctx context.Context, filter HistoryFilter) (*models.HistoryStats, error)

	// DeleteHistoryBefore removes history older than the cutoff and returns
	// how many records were removed. A zero cutoff removes all history.
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases store resources
	Close(ctx context.Context) error
}

func matchSample(s *models.Sample, f SampleFilter) bool {
	if f.DeviceID != "" && s.DeviceID != f.DeviceID {
		return false
	}
	if !f.Start.IsZero() && s.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && s.Timestamp.After(f.End) {
		return false
	}
	return true
}

func matchHistory(r *models.ControlHistory, f HistoryFilter) bool {
	if f.DeviceID != "" && r.DeviceID != f.DeviceID {
		return false
	}
	if f.Action != "" && r.Action != f.Action {
		return false
	}
	for _, src := range f.ExcludeSources {
		if r.Source == src {
			return false
		}
	}
	return true
}
