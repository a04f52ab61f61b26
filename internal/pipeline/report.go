package pipeline

import "time"

/*
The report is a record of one pipeline run. It is a primitive for
verifying, inventorying and auditing ingestion runs.
*/

// Report summarizes a single extract, transform, load cycle.
type Report struct {
	RunID               string        `json:"run_id"`
	StartTime           time.Time     `json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	Duration            time.Duration `json:"duration"`
	CatalogVersion      string        `json:"catalog_version,omitempty"`
	NumSourceRecords    int           `json:"num_source_records"`
	NumRecordsProcessed int           `json:"num_records_processed"`
	NumRecordsLoaded    int           `json:"num_records_loaded"`
	FailedStage         string        `json:"failed_stage,omitempty"`
	Error               string        `json:"error,omitempty"`
	Success             bool          `json:"success"`
}
