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

func addSample(t *testing.T, st *store.MemoryStore, deviceID string, ts time.Time, metric string, value float64, status models.Status) {
	t.Helper()
	s := &models.Sample{DeviceID: deviceID, Timestamp: ts, Status: status}
	switch metric {
	case models.MetricTemperature:
		s.Temperature = &value
	case models.MetricHumidity:
		s.Humidity = &value
	case models.MetricLight:
		s.Light = &value
	}
	require.NoError(t, st.AppendSample(context.Background(), s))
}

func newSensorQuery(st *store.MemoryStore) *SensorQueryService {
	return NewSensorQueryService(st, nil, logging.NewDevelopment())
}

func query(t *testing.T, svc *SensorQueryService, req *models.SampleQueryRequest) *models.SampleQueryResult {
	t.Helper()
	require.NoError(t, req.Validate())
	res, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestSensorQuery_ConsolidatesSameSecond(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	// three metrics within the same second collapse into one row
	addSample(t, st, "esp8266_001", base.Add(100*time.Millisecond), models.MetricTemperature, 25, models.StatusNormal)
	addSample(t, st, "esp8266_001", base.Add(400*time.Millisecond), models.MetricHumidity, 60, models.StatusNormal)
	addSample(t, st, "esp8266_001", base.Add(900*time.Millisecond), models.MetricLight, 300, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{})
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, base, row.Timestamp)
	require.NotNil(t, row.Temperature)
	require.NotNil(t, row.Humidity)
	require.NotNil(t, row.Light)
	assert.Equal(t, 25.0, *row.Temperature)
	assert.Equal(t, 60.0, *row.Humidity)
	assert.Equal(t, 300.0, *row.Light)
	assert.Equal(t, int64(1), res.Pagination.Total)
}

func TestSensorQuery_AbsentColumnsStayNil(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "esp8266_001", base, models.MetricTemperature, 25, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{})
	require.Len(t, res.Rows, 1)
	assert.NotNil(t, res.Rows[0].Temperature)
	assert.Nil(t, res.Rows[0].Humidity)
	assert.Nil(t, res.Rows[0].Light)
}

func TestSensorQuery_StatusTakesMaxSeverity(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "esp8266_001", base, models.MetricTemperature, 25, models.StatusNormal)
	addSample(t, st, "esp8266_001", base.Add(500*time.Millisecond), models.MetricHumidity, 95, models.StatusDanger)
	addSample(t, st, "esp8266_001", base.Add(800*time.Millisecond), models.MetricLight, 300, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{})
	require.Len(t, res.Rows, 1)
	assert.Equal(t, models.StatusDanger, res.Rows[0].Status)
}

func TestSensorQuery_SeparateDevicesAndSecondsStaySeparate(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 20, models.StatusNormal)
	addSample(t, st, "b", base, models.MetricTemperature, 21, models.StatusNormal)
	addSample(t, st, "a", base.Add(time.Second), models.MetricTemperature, 22, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{})
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, int64(3), res.Pagination.Total)
}

func TestSensorQuery_SensorTypePresenceFilter(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 20, models.StatusNormal)
	addSample(t, st, "a", base.Add(time.Second), models.MetricHumidity, 60, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{SensorType: models.MetricHumidity})
	require.Len(t, res.Rows, 1)
	assert.NotNil(t, res.Rows[0].Humidity)
}

func TestSensorQuery_PaginationCountsConsolidatedRows(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	// 30 raw samples collapsing to 10 rows
	for sec := 0; sec < 10; sec++ {
		ts := base.Add(time.Duration(sec) * time.Second)
		addSample(t, st, "a", ts, models.MetricTemperature, 20, models.StatusNormal)
		addSample(t, st, "a", ts.Add(200*time.Millisecond), models.MetricHumidity, 50, models.StatusNormal)
		addSample(t, st, "a", ts.Add(400*time.Millisecond), models.MetricLight, 100, models.StatusNormal)
	}

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{Page: 1, Limit: 4})
	assert.Len(t, res.Rows, 4)
	assert.Equal(t, int64(10), res.Pagination.Total)
	assert.Equal(t, int64(3), res.Pagination.Pages)

	last := query(t, newSensorQuery(st), &models.SampleQueryRequest{Page: 3, Limit: 4})
	assert.Len(t, last.Rows, 2)

	beyond := query(t, newSensorQuery(st), &models.SampleQueryRequest{Page: 9, Limit: 4})
	assert.Empty(t, beyond.Rows)
	assert.Equal(t, int64(10), beyond.Pagination.Total)
}

func TestSensorQuery_DefaultSortNewestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 20, models.StatusNormal)
	addSample(t, st, "a", base.Add(2*time.Second), models.MetricTemperature, 22, models.StatusNormal)
	addSample(t, st, "a", base.Add(time.Second), models.MetricTemperature, 21, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{})
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 22.0, *res.Rows[0].Temperature)
	assert.Equal(t, 21.0, *res.Rows[1].Temperature)
	assert.Equal(t, 20.0, *res.Rows[2].Temperature)

	asc := query(t, newSensorQuery(st), &models.SampleQueryRequest{SortOrder: models.SortAsc})
	assert.Equal(t, 20.0, *asc.Rows[0].Temperature)
}

func TestSensorQuery_SortByMetricPutsMissingLast(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 30, models.StatusNormal)
	addSample(t, st, "a", base.Add(time.Second), models.MetricHumidity, 60, models.StatusNormal)
	addSample(t, st, "a", base.Add(2*time.Second), models.MetricTemperature, 10, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{SortBy: models.MetricTemperature, SortOrder: models.SortAsc})
	require.Len(t, res.Rows, 3)
	assert.Equal(t, 10.0, *res.Rows[0].Temperature)
	assert.Equal(t, 30.0, *res.Rows[1].Temperature)
	assert.Nil(t, res.Rows[2].Temperature)
}

func TestSensorQuery_SearchNumericExact(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 25.5, models.StatusNormal)
	addSample(t, st, "a", base.Add(time.Second), models.MetricHumidity, 25.5, models.StatusNormal)
	addSample(t, st, "a", base.Add(2*time.Second), models.MetricTemperature, 26, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{Search: "25.5"})
	assert.Len(t, res.Rows, 2)
}

func TestSensorQuery_SearchStatusKeyword(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSample(t, st, "a", base, models.MetricTemperature, 45, models.StatusWarning)
	addSample(t, st, "a", base.Add(time.Second), models.MetricTemperature, 25, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{Search: "warning"})
	require.Len(t, res.Rows, 1)
	assert.Equal(t, models.StatusWarning, res.Rows[0].Status)
}

func TestSensorQuery_SearchTemporal(t *testing.T) {
	st := store.NewMemoryStore()

	addSample(t, st, "a", time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local), models.MetricTemperature, 20, models.StatusNormal)
	addSample(t, st, "a", time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local), models.MetricTemperature, 21, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{Search: "2025/6/1"})
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 20.0, *res.Rows[0].Temperature)
}

func TestSensorQuery_SearchWithoutInterpretationMatchesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	addSample(t, st, "a", time.Now(), models.MetricTemperature, 20, models.StatusNormal)

	res := query(t, newSensorQuery(st), &models.SampleQueryRequest{Search: "banana"})
	assert.Empty(t, res.Rows)
	assert.Equal(t, int64(0), res.Pagination.Total)
}

func TestSensorQuery_DeviceSeries(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	for sec := 0; sec < 5; sec++ {
		addSample(t, st, "a", base.Add(time.Duration(sec)*time.Second), models.MetricTemperature, float64(sec), models.StatusNormal)
	}
	addSample(t, st, "b", base, models.MetricTemperature, 99, models.StatusNormal)

	rows, err := newSensorQuery(st).DeviceSeries(context.Background(), "a", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4.0, *rows[0].Temperature)
	assert.Equal(t, 2.0, *rows[2].Temperature)
}

func TestSensorQuery_Stats(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	now := time.Now()

	addSample(t, st, "a", now, models.MetricTemperature, 20, models.StatusNormal)
	addSample(t, st, "b", now, models.MetricTemperature, 21, models.StatusNormal)
	require.NoError(t, st.UpsertDevicePresence(ctx, "a", now))
	require.NoError(t, st.UpsertDevicePresence(ctx, "b", now))

	stats, err := newSensorQuery(st).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSamples)
	assert.Equal(t, 2, stats.DeviceCount)
	assert.Equal(t, 2, stats.OnlineCount)
}
