package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pagination bounds. Non-positive page/limit inputs are clamped so a skip
// can never go negative; oversized limits are capped.
const (
	DefaultSampleLimit  = 10
	DefaultHistoryLimit = 25
	MaxPageLimit        = 1000
)

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SampleQueryRequest represents the parsed consolidated-sample query input
type SampleQueryRequest struct {
	Page       int
	Limit      int
	DeviceID   string
	SensorType string // temperature, humidity, light or all/empty
	StartDate  string
	EndDate    string
	Search     string
	SortBy     string // timestamp (default), temperature, humidity, light, status
	SortOrder  string // asc, desc (default)

	StartParsed time.Time // zero when StartDate is absent
	EndParsed   time.Time // zero when EndDate is absent
}

// Validate validates the query input, clamps pagination and parses the
// explicit date range into StartParsed/EndParsed.
func (q *SampleQueryRequest) Validate() error {
	clampPage(&q.Page, &q.Limit, DefaultSampleLimit)

	if q.SortBy == "" {
		q.SortBy = "timestamp"
	}
	switch q.SortBy {
	case "timestamp", MetricTemperature, MetricHumidity, MetricLight, "status":
	default:
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "sortBy must be one of: timestamp, temperature, humidity, light, status",
		}
	}

	if err := normalizeSortOrder(&q.SortOrder); err != nil {
		return err
	}

	switch q.SensorType {
	case "", "all", MetricTemperature, MetricHumidity, MetricLight:
	default:
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "sensorType must be one of: all, temperature, humidity, light",
		}
	}

	if q.StartDate != "" {
		start, err := parseDateParam(q.StartDate, false)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "startDate must be YYYY-MM-DD or RFC3339",
			}
		}
		q.StartParsed = start
	}

	if q.EndDate != "" {
		end, err := parseDateParam(q.EndDate, true)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "endDate must be YYYY-MM-DD or RFC3339",
			}
		}
		q.EndParsed = end
	}

	if !q.StartParsed.IsZero() && !q.EndParsed.IsZero() && q.EndParsed.Before(q.StartParsed) {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "endDate must not be before startDate",
		}
	}

	return nil
}

// HistoryQueryRequest represents the parsed control-history query input
type HistoryQueryRequest struct {
	Page      int
	Limit     int
	DeviceID  string // empty or "all" = no filter
	Action    string // empty or "all" = no filter; case-normalized
	Search    string
	SortBy    string // timestamp (default), device_name, action
	SortOrder string // asc, desc (default)
}

// Validate validates the history query input and clamps pagination
func (q *HistoryQueryRequest) Validate() error {
	clampPage(&q.Page, &q.Limit, DefaultHistoryLimit)

	if q.SortBy == "" {
		q.SortBy = "timestamp"
	}
	switch q.SortBy {
	case "timestamp", "device_name", "action":
	default:
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "sortBy must be one of: timestamp, device_name, action",
		}
	}

	return normalizeSortOrder(&q.SortOrder)
}

// CommandRequest represents an issue-command request body
type CommandRequest struct {
	Device string `json:"device"`
	Action string `json:"action"`
}

func clampPage(page, limit *int, defaultLimit int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 {
		*limit = defaultLimit
	}
	if *limit > MaxPageLimit {
		*limit = MaxPageLimit
	}
}

func normalizeSortOrder(order *string) error {
	switch *order {
	case "":
		*order = SortDesc
	case SortAsc, SortDesc:
	default:
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "sortOrder must be 'asc' or 'desc'",
		}
	}
	return nil
}

// parseDateParam accepts a bare date or a full RFC3339 timestamp. A bare
// end date is extended to the last instant of that day, matching how users
// expect an inclusive date range to behave.
func parseDateParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}
