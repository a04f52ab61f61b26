package pipeline

import "time"

type Stats struct {
	TotalRuns     int64     `json:"total_runs"`
	SucceededRuns int64     `json:"succeeded_runs"`
	FailedRuns    int64     `json:"failed_runs"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`

	LastReport *Report `json:"last_report,omitempty"`
}
