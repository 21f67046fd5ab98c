package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
)

func addHistory(t *testing.T, st *store.MemoryStore, record models.ControlHistory) {
	t.Helper()
	require.NoError(t, st.AppendHistory(context.Background(), &record))
}

func historyQuery(t *testing.T, st *store.MemoryStore, req *models.HistoryQueryRequest) *models.HistoryQueryResult {
	t.Helper()
	require.NoError(t, req.Validate())
	res, err := NewHistoryQueryService(st, logging.NewDevelopment()).Query(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestHistoryQuery_ExcludesDeviceEchoes(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Now()

	addHistory(t, st, models.ControlHistory{DeviceID: "led", DeviceName: "LED Strip", Action: "ON", Source: models.SourceWeb, Timestamp: now, Success: true})
	addHistory(t, st, models.ControlHistory{DeviceID: "led", DeviceName: "LED Strip", Action: "ON", Source: models.SourceMQTT, Timestamp: now, Success: true})

	res := historyQuery(t, st, &models.HistoryQueryRequest{})
	require.Len(t, res.Records, 1)
	assert.Equal(t, models.SourceWeb, res.Records[0].Source)
	assert.Equal(t, int64(1), res.Pagination.Total)
}

func TestHistoryQuery_DeviceAndActionFilters(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Now()

	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "ON", Source: models.SourceWeb, Timestamp: now})
	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "OFF", Source: models.SourceWeb, Timestamp: now})
	addHistory(t, st, models.ControlHistory{DeviceID: "fan", Action: "ON", Source: models.SourceWeb, Timestamp: now})

	res := historyQuery(t, st, &models.HistoryQueryRequest{DeviceID: "led"})
	assert.Len(t, res.Records, 2)

	// action filter is case-normalized, "all" means no filter
	res = historyQuery(t, st, &models.HistoryQueryRequest{Action: "on"})
	assert.Len(t, res.Records, 2)

	res = historyQuery(t, st, &models.HistoryQueryRequest{DeviceID: "all", Action: "all"})
	assert.Len(t, res.Records, 3)
}

func TestHistoryQuery_SubstringSearch(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Now()

	addHistory(t, st, models.ControlHistory{DeviceID: "led", DeviceName: "Living Room LED", Action: "ON", Source: models.SourceWeb, Timestamp: now})
	addHistory(t, st, models.ControlHistory{DeviceID: "fan", DeviceName: "Ceiling Fan", Action: "OFF", Source: models.SourceWeb, Timestamp: now})

	res := historyQuery(t, st, &models.HistoryQueryRequest{Search: "living"})
	require.Len(t, res.Records, 1)
	assert.Equal(t, "led", res.Records[0].DeviceID)

	res = historyQuery(t, st, &models.HistoryQueryRequest{Search: "off"})
	require.Len(t, res.Records, 1)
	assert.Equal(t, "fan", res.Records[0].DeviceID)
}

func TestHistoryQuery_TemporalSearch(t *testing.T) {
	st := store.NewMemoryStore()

	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "ON", Source: models.SourceWeb,
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)})
	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "OFF", Source: models.SourceWeb,
		Timestamp: time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)})

	res := historyQuery(t, st, &models.HistoryQueryRequest{Search: "2025/6/1"})
	require.Len(t, res.Records, 1)
	assert.Equal(t, "ON", res.Records[0].Action)
}

func TestHistoryQuery_SortAndPaginate(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

	names := []string{"Charlie", "Alpha", "Bravo"}
	for i, name := range names {
		addHistory(t, st, models.ControlHistory{
			DeviceID: "d", DeviceName: name, Action: "ON", Source: models.SourceWeb,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	// default order is newest first
	res := historyQuery(t, st, &models.HistoryQueryRequest{})
	require.Len(t, res.Records, 3)
	assert.Equal(t, "Bravo", res.Records[0].DeviceName)

	res = historyQuery(t, st, &models.HistoryQueryRequest{SortBy: "device_name", SortOrder: models.SortAsc})
	assert.Equal(t, "Alpha", res.Records[0].DeviceName)
	assert.Equal(t, "Charlie", res.Records[2].DeviceName)

	paged := historyQuery(t, st, &models.HistoryQueryRequest{Page: 2, Limit: 2})
	assert.Len(t, paged.Records, 1)
	assert.Equal(t, int64(3), paged.Pagination.Total)
	assert.Equal(t, int64(2), paged.Pagination.Pages)
}

func TestHistoryQuery_Stats(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Now()

	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "ON", Source: models.SourceWeb, Timestamp: now, Success: true})
	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "OFF", Source: models.SourceWeb, Timestamp: now, Success: false})
	addHistory(t, st, models.ControlHistory{DeviceID: "led", Action: "ON", Source: models.SourceMQTT, Timestamp: now, Success: true})

	stats, err := NewHistoryQueryService(st, logging.NewDevelopment()).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRecords)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailureCount)
}
