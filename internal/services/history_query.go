package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/store"
	"github.com/sensorbridge/sensorbridge/internal/timeparse"
)

// HistoryQueryService answers control history queries. Device-reported state
// echoes (mqtt source) are excluded from the history view; it shows commands,
// not telemetry.
type HistoryQueryService struct {
	store  store.Store
	logger *logging.Logger
}

// NewHistoryQueryService creates a HistoryQueryService
func NewHistoryQueryService(st store.Store, logger *logging.Logger) *HistoryQueryService {
	return &HistoryQueryService{
		store:  st,
		logger: logger.With("component", "history_query"),
	}
}

// Query runs a control history query: filter, search, sort, paginate
func (h *HistoryQueryService) Query(ctx context.Context, req *models.HistoryQueryRequest) (*models.HistoryQueryResult, error) {
	filter := store.HistoryFilter{
		ExcludeSources: []string{models.SourceMQTT},
	}
	if req.DeviceID != "" && req.DeviceID != "all" {
		filter.DeviceID = req.DeviceID
	}
	if req.Action != "" && req.Action != "all" {
		filter.Action = strings.ToUpper(req.Action)
	}

	records, err := h.store.History(ctx, filter)
	if err != nil {
		return nil, storeFailed(err)
	}

	if req.Search != "" {
		records = filterHistory(records, req.Search)
	}

	sortHistory(records, req.SortBy, req.SortOrder)

	total := int64(len(records))
	start := (req.Page - 1) * req.Limit
	if start >= len(records) {
		records = nil
	} else {
		end := start + req.Limit
		if end > len(records) {
			end = len(records)
		}
		records = records[start:end]
	}

	out := make([]models.ControlHistory, len(records))
	for i, r := range records {
		out[i] = *r
	}

	return &models.HistoryQueryResult{
		Records:    out,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// Stats summarizes command outcomes, excluding device-reported echoes
func (h *HistoryQueryService) Stats(ctx context.Context) (*models.HistoryStats, error) {
	stats, err := h.store.HistoryStats(ctx, store.HistoryFilter{
		ExcludeSources: []string{models.SourceMQTT},
	})
	if err != nil {
		return nil, storeFailed(err)
	}
	return stats, nil
}

// filterHistory applies the free-text search term. A temporal term filters
// on the record timestamp; any other term is a case-insensitive substring
// match over the device name, action, and message.
func filterHistory(records []*models.ControlHistory, term string) []*models.ControlHistory {
	if tf := timeparse.Parse(term, time.Now()); tf != nil {
		var out []*models.ControlHistory
		for _, r := range records {
			if tf.Matches(r.Timestamp) {
				out = append(out, r)
			}
		}
		return out
	}

	needle := strings.ToLower(term)
	var out []*models.ControlHistory
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.DeviceName), needle) ||
			strings.Contains(strings.ToLower(r.Action), needle) ||
			strings.Contains(strings.ToLower(r.Message), needle) {
			out = append(out, r)
		}
	}
	return out
}

// sortHistory orders records by the requested column, ties newest first
func sortHistory(records []*models.ControlHistory, sortBy, sortOrder string) {
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Timestamp.After(records[b].Timestamp)
	})

	asc := sortOrder == models.SortAsc
	switch sortBy {
	case "", "timestamp":
		if asc {
			for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
				records[i], records[j] = records[j], records[i]
			}
		}
	case "device_name":
		sort.SliceStable(records, func(a, b int) bool {
			if asc {
				return records[a].DeviceName < records[b].DeviceName
			}
			return records[a].DeviceName > records[b].DeviceName
		})
	case "action":
		sort.SliceStable(records, func(a, b int) bool {
			if asc {
				return records[a].Action < records[b].Action
			}
			return records[a].Action > records[b].Action
		})
	}
}
