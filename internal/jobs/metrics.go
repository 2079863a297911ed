package jobs

import "github.com/prometheus/client_golang/prometheus"

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolrating_job_runs_total",
			Help: "Total background job runs",
		},
		[]string{"job"},
	)

	jobErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolrating_job_errors_total",
			Help: "Total background job errors",
		},
		[]string{"job"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schoolrating_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// reconcileFixed — сколько кэшированных рейтингов исправил последний прогон сверки.
	// Ненулевое значение значит, что какой-то путь записи обошёл пересчёт.
	reconcileFixed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schoolrating_reconcile_fixed",
			Help: "Stale cached ratings repaired by the last reconcile run",
		},
		[]string{"entity"},
	)

	reconcileLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "schoolrating_reconcile_last_success_timestamp_seconds",
			Help: "Unix time of the last successful reconcile run",
		},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobDuration, reconcileFixed, reconcileLastSuccess)
}
