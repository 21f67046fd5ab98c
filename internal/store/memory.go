package store

import (
	"context"
	"sync"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/models"
)

// MemoryStore implements Store with in-process slices and maps. It backs
// tests and broker-less development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	samples []*models.Sample
	devices map[string]*models.Device
	history []*models.ControlHistory
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[string]*models.Device),
	}
}

// AppendSample persists one sensor reading
func (m *MemoryStore) AppendSample(_ context.Context, sample *models.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sample
	m.samples = append(m.samples, &cp)
	return nil
}

// Samples returns all samples matching the filter
func (m *MemoryStore) Samples(_ context.Context, filter SampleFilter) ([]*models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Sample
	for _, s := range m.samples {
		if matchSample(s, filter) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SampleCount returns the total number of stored samples
func (m *MemoryStore) SampleCount(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.samples)), nil
}

// LatestPerDevice returns the most recent sample of every device
func (m *MemoryStore) LatestPerDevice(_ context.Context) ([]*models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]*models.Sample)
	for _, s := range m.samples {
		if cur, ok := latest[s.DeviceID]; !ok || s.Timestamp.After(cur.Timestamp) {
			latest[s.DeviceID] = s
		}
	}

	out := make([]*models.Sample, 0, len(latest))
	for _, s := range latest {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteSamplesBefore removes samples older than the cutoff
func (m *MemoryStore) DeleteSamplesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cutoff.IsZero() {
		n := int64(len(m.samples))
		m.samples = nil
		return n, nil
	}

	kept := m.samples[:0]
	var deleted int64
	for _, s := range m.samples {
		if s.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.samples = kept
	return deleted, nil
}

// UpsertDevicePresence marks a device online and advances lastSeen
func (m *MemoryStore) UpsertDevicePresence(_ context.Context, deviceID string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.devices[deviceID]
	if !ok {
		d = models.DeviceDefaults(deviceID)
		d.CreatedAt = seenAt
		m.devices[deviceID] = d
	}
	d.Online = true
	if seenAt.After(d.LastSeen) {
		d.LastSeen = seenAt
	}
	d.UpdatedAt = seenAt
	return nil
}

// Devices lists all known devices
func (m *MemoryStore) Devices(_ context.Context) ([]*models.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Device, 0, len(m.devices))
	for _, d := range m.devices {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

// Device returns one device or ErrDeviceNotFound
func (m *MemoryStore) Device(_ context.Context, deviceID string) (*models.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	cp := *d
	return &cp, nil
}

// UpdateDevice applies the non-nil display fields
func (m *MemoryStore) UpdateDevice(_ context.Context, deviceID string, update *models.DeviceUpdate) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	if update.Name != nil {
		d.Name = *update.Name
	}
	if update.Location != nil {
		d.Location = *update.Location
	}
	if update.Type != nil {
		d.Type = *update.Type
	}
	if update.Metadata != nil {
		d.Metadata = update.Metadata
	}
	d.UpdatedAt = time.Now()

	cp := *d
	return &cp, nil
}

// AppendHistory persists one control history record
func (m *MemoryStore) AppendHistory(_ context.Context, record *models.ControlHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	m.history = append(m.history, &cp)
	return nil
}

// History returns all history records matching the filter
func (m *MemoryStore) History(_ context.Context, filter HistoryFilter) ([]*models.ControlHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.ControlHistory
	for _, r := range m.history {
		if matchHistory(r, filter) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// HistoryStats summarizes outcomes of records matching the filter
func (m *MemoryStore) HistoryStats(_ context.Context, filter HistoryFilter) (*models.HistoryStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.HistoryStats{}
	for _, r := range m.history {
		if !matchHistory(r, filter) {
			continue
		}
		stats.TotalRecords++
		if r.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
	}
	return stats, nil
}

// DeleteHistoryBefore removes history older than the cutoff
func (m *MemoryStore) DeleteHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cutoff.IsZero() {
		n := int64(len(m.history))
		m.history = nil
		return n, nil
	}

	kept := m.history[:0]
	var deleted int64
	for _, r := range m.history {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.history = kept
	return deleted, nil
}

// Close releases store resources
func (m *MemoryStore) Close(_ context.Context) error {
	return nil
}
