package domain

// ============================================================
// Health & API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status     string `json:"status"` // healthy, degraded
	ActiveRuns int    `json:"activeRuns"`
	CachedRuns int    `json:"cachedRuns"`
	CheckedAt  string `json:"checkedAt"`
}

// ListResponse wraps paginated list results.
type ListResponse[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// RunRequest is the body of POST /v1/runs.
type RunRequest struct {
	ReferenceDate string `json:"reference_date,omitempty"` // YYYY-MM-DD
	RawTables
}
