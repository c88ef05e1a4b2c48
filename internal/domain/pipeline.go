package domain

import "time"

// RawTables bundles the three source tables for one batch.
type RawTables struct {
	Profile    []RawCustomer `json:"profile"`
	Portfolio  []RawOffer    `json:"portfolio"`
	Transcript []RawEvent    `json:"transcript"`
}

// PipelineResult holds every table produced by one run.
type PipelineResult struct {
	Outcomes         []OfferOutcome `json:"outcomes"`
	Transactions     []Transaction  `json:"transactions"`
	Customers        []Customer     `json:"customers"`
	Portfolio        []Offer        `json:"portfolio"`
	RemovedCustomers []int          `json:"removed_customers"`
	CustomerIDs      []IDPair       `json:"customer_ids"`
	OfferIDs         []IDPair       `json:"offer_ids"`
	Summary          RunSummary     `json:"summary"`
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID             string    `json:"run_id"`
	ReferenceDate     string    `json:"reference_date"`
	Customers         int       `json:"customers"`
	RemovedCustomers  int       `json:"removed_customers"`
	Offers            int       `json:"offers"`
	OfferEvents       int       `json:"offer_events"`
	TransactionEvents int       `json:"transaction_events"`
	Received          int       `json:"received"`
	Viewed            int       `json:"viewed"`
	Completed         int       `json:"completed"`
	DurationMs        int64     `json:"duration_ms"`
	CompletedAt       time.Time `json:"completed_at"`
}

// PipelineStats is the cumulative counter snapshot served by
// GET /v1/metrics/pipeline.
type PipelineStats struct {
	Runs             int64   `json:"runs"`
	FailedRuns       int64   `json:"failedRuns"`
	Received         int64   `json:"received"`
	Viewed           int64   `json:"viewed"`
	Completed        int64   `json:"completed"`
	RemovedCustomers int64   `json:"removedCustomers"`
	ViewRate         float64 `json:"viewRate"`
	CompletionRate   float64 `json:"completionRate"`
	RunCacheHitRate  float64 `json:"runCacheHitRate"`
}
