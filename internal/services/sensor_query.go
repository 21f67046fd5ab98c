package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/cache"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
	"github.com/sensorbridge/sensorbridge/internal/timeparse"
)

// SensorQueryService answers consolidated sensor data queries. Consolidation
// happens at read time: raw samples sharing a device and a second-truncated
// timestamp merge into one row.
type SensorQueryService struct {
	store  store.Store
	cache  *cache.SampleCache
	logger *logging.Logger
}

// NewSensorQueryService creates a SensorQueryService
func NewSensorQueryService(st store.Store, c *cache.SampleCache, logger *logging.Logger) *SensorQueryService {
	return &SensorQueryService{
		store:  st,
		cache:  c,
		logger: logger.With("component", "sensor_query"),
	}
}

// Query runs a consolidated sample query: filter, consolidate, sort,
// paginate. The pagination total counts consolidated rows, not raw samples.
func (s *SensorQueryService) Query(ctx context.Context, req *models.SampleQueryRequest) (*models.SampleQueryResult, error) {
	samples, err := s.store.Samples(ctx, store.SampleFilter{
		DeviceID: req.DeviceID,
		Start:    req.StartParsed,
		End:      req.EndParsed,
	})
	if err != nil {
		return nil, storeFailed(err)
	}

	if req.Search != "" {
		samples = filterSamples(samples, req.Search)
	}

	rows := consolidate(samples)

	if req.SensorType != "" && req.SensorType != "all" {
		kept := rows[:0]
		for _, r := range rows {
			if r.Column(req.SensorType) != nil {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	sortRows(rows, req.SortBy, req.SortOrder)

	total := int64(len(rows))
	rows = paginate(rows, req.Page, req.Limit)

	return &models.SampleQueryResult{
		Rows:       rows,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// Latest returns the most recent sample of every device, served from the
// cache when available and from the store otherwise.
func (s *SensorQueryService) Latest(ctx context.Context) ([]*models.Sample, error) {
	cached, err := s.cache.All(ctx)
	if err != nil {
		s.logger.Warn("Latest-sample cache unavailable, falling back to store", "error", err)
	} else if len(cached) > 0 {
		return cached, nil
	}

	latest, err := s.store.LatestPerDevice(ctx)
	if err != nil {
		return nil, storeFailed(err)
	}
	return latest, nil
}

// DeviceSeries returns the most recent consolidated rows of one device,
// newest first.
func (s *SensorQueryService) DeviceSeries(ctx context.Context, deviceID string, limit int) ([]models.ConsolidatedRow, error) {
	if limit < 1 {
		limit = 100
	}
	samples, err := s.store.Samples(ctx, store.SampleFilter{DeviceID: deviceID})
	if err != nil {
		return nil, storeFailed(err)
	}

	rows := consolidate(samples)
	sortRows(rows, "timestamp", models.SortDesc)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Stats summarizes the stored sensor data and known devices
func (s *SensorQueryService) Stats(ctx context.Context) (*models.SensorStats, error) {
	total, err := s.store.SampleCount(ctx)
	if err != nil {
		return nil, storeFailed(err)
	}
	devices, err := s.store.Devices(ctx)
	if err != nil {
		return nil, storeFailed(err)
	}

	online := 0
	for _, d := range devices {
		if d.Online {
			online++
		}
	}
	return &models.SensorStats{
		TotalSamples: total,
		DeviceCount:  len(devices),
		OnlineCount:  online,
	}, nil
}

// filterSamples applies the free-text search term. A sample matches when any
// interpretation of the term does: a temporal filter on the timestamp, an
// exact numeric match on any metric, or a status keyword. A term with no
// valid interpretation matches nothing.
func filterSamples(samples []*models.Sample, term string) []*models.Sample {
	tf := timeparse.Parse(term, time.Now())
	num, numErr := strconv.ParseFloat(term, 64)

	var status models.Status
	switch models.Status(term) {
	case models.StatusNormal, models.StatusWarning, models.StatusDanger:
		status = models.Status(term)
	}

	var out []*models.Sample
	for _, s := range samples {
		if tf != nil && tf.Matches(s.Timestamp) {
			out = append(out, s)
			continue
		}
		if numErr == nil {
			if _, v, ok := s.Metric(); ok && v == num {
				out = append(out, s)
				continue
			}
		}
		if status != "" && s.Status == status {
			out = append(out, s)
		}
	}
	return out
}

type rowKey struct {
	device string
	sec    int64
}

// consolidate merges samples sharing a device and a second-truncated
// timestamp into one row per group. Metric columns take the maximum
// contributed value; absent columns stay nil. The row status is the most
// severe contributed status.
func consolidate(samples []*models.Sample) []models.ConsolidatedRow {
	groups := make(map[rowKey]*models.ConsolidatedRow)
	var order []rowKey

	for _, s := range samples {
		key := rowKey{device: s.DeviceID, sec: s.Timestamp.Unix()}
		row, ok := groups[key]
		if !ok {
			row = &models.ConsolidatedRow{
				DeviceID:  s.DeviceID,
				Timestamp: time.Unix(key.sec, 0),
				Status:    models.StatusNormal,
			}
			groups[key] = row
			order = append(order, key)
		}

		mergeColumn(&row.Temperature, s.Temperature)
		mergeColumn(&row.Humidity, s.Humidity)
		mergeColumn(&row.Light, s.Light)
		row.Status = models.MaxStatus(row.Status, s.Status)
	}

	out := make([]models.ConsolidatedRow, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

func mergeColumn(dst **float64, src *float64) {
	if src == nil {
		return
	}
	if *dst == nil || *src > **dst {
		v := *src
		*dst = &v
	}
}

// sortRows orders rows by the requested column. Ties and the default order
// resolve newest first; rows missing the sort metric always sort last.
func sortRows(rows []models.ConsolidatedRow, sortBy, sortOrder string) {
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Timestamp.After(rows[b].Timestamp)
	})
	if sortBy == "" || sortBy == "timestamp" {
		if sortOrder == models.SortAsc {
			reverseRows(rows)
		}
		return
	}

	asc := sortOrder == models.SortAsc
	if sortBy == "status" {
		sort.SliceStable(rows, func(a, b int) bool {
			ra, rb := rows[a].Status.Rank(), rows[b].Status.Rank()
			if asc {
				return ra < rb
			}
			return ra > rb
		})
		return
	}

	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := rows[a].Column(sortBy), rows[b].Column(sortBy)
		switch {
		case va == nil:
			return false
		case vb == nil:
			return true
		case asc:
			return *va < *vb
		default:
			return *va > *vb
		}
	})
}

func reverseRows(rows []models.ConsolidatedRow) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func paginate(rows []models.ConsolidatedRow, page, limit int) []models.ConsolidatedRow {
	start := (page - 1) * limit
	if start >= len(rows) {
		return []models.ConsolidatedRow{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
