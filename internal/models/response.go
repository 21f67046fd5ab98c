package models

// Pagination carries page metadata for list responses
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes page metadata from a post-filter total
func NewPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// SampleQueryResult is the paginated consolidated-sample query result
type SampleQueryResult struct {
	Rows       []ConsolidatedRow `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// HistoryQueryResult is the paginated control-history query result
type HistoryQueryResult struct {
	Records    []ControlHistory `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// DataResponse is the envelope for successful API responses
type DataResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	UptimeSec int64  `json:"uptime_sec"`
}
