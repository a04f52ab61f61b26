package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kevfeed_pipeline_runs_total",
			Help: "Pipeline runs by result",
		},
		[]string{"result"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kevfeed_pipeline_duration_seconds",
			Help:    "Wall clock duration of pipeline runs",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	recordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kevfeed_records_processed_total",
			Help: "Records surviving transformation",
		},
	)

	recordsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kevfeed_records_dropped_total",
			Help: "Records dropped during transformation",
		},
	)
)

func observeRun(report *Report) {
	result := "success"
	if !report.Success {
		result = "failure"
	}
	runsTotal.WithLabelValues(result).Inc()
	runDuration.Observe(report.Duration.Seconds())
	recordsProcessed.Add(float64(report.NumRecordsProcessed))
	if dropped := report.NumSourceRecords - report.NumRecordsProcessed; dropped > 0 {
		recordsDropped.Add(float64(dropped))
	}
}
