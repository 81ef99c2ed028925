// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RatingTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_rating_triggers_total",
			Help: "Recalculation requests by outcome (accepted, dropped_busy, dropped_throttled, below_threshold)",
		},
		[]string{"outcome"},
	)

	RatingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_rating_runs_total",
			Help: "Accepted rating runs by result",
		},
		[]string{"result"},
	)

	RatingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quote_rating_duration_seconds",
			Help:    "Duration of accepted rating runs in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_submissions_total",
			Help: "Quote submissions by outcome (created, funding_required, failed)",
		},
		[]string{"outcome"},
	)

	FundingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_funding_requests_total",
			Help: "Wallet funding requests by outcome",
		},
		[]string{"outcome"},
	)

	ReferenceDataFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_reference_data_fallbacks_total",
			Help: "Reference data lookups served from the static fallback",
		},
		[]string{"resource"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route", "status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quote_sessions_active",
			Help: "Quote sessions held in memory",
		},
	)
)
