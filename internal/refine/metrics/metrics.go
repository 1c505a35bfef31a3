package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AgentCallsTotal tracks agent invocations per agent and outcome
	AgentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_agent_calls_total",
			Help: "Total number of agent invocations",
		},
		[]string{"agent", "outcome"},
	)

	// RetryAttemptsTotal tracks failed attempts that entered backoff
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_retry_attempts_total",
			Help: "Total number of failed agent attempts that were retried",
		},
		[]string{"agent"},
	)

	// RetriesExhaustedTotal tracks agent calls that consumed every attempt
	RetriesExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_retries_exhausted_total",
			Help: "Total number of agent calls that failed all retry attempts",
		},
		[]string{"agent"},
	)

	// NonRetryableErrorsTotal tracks immediate aborts on permanent errors
	NonRetryableErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_non_retryable_errors_total",
			Help: "Total number of agent calls aborted on a non-retryable error",
		},
		[]string{"agent"},
	)

	// RefinementAttemptsTotal tracks refinement passes per brief outcome
	RefinementAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_refinement_attempts_total",
			Help: "Total number of refinement attempts",
		},
		[]string{"outcome"},
	)

	// RefinementDuration tracks end-to-end refinement run latency
	RefinementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refinery_refinement_duration_seconds",
			Help:    "End-to-end refinement run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	// FinalScore tracks the score distribution at quality-gate time
	FinalScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refinery_final_score",
			Help:    "Final brief score when the quality gate runs",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	// RefundsTotal tracks refunds issued by the quality gate
	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refinery_refunds_total",
			Help: "Total number of credit refunds issued for failed briefs",
		},
	)

	// TelemetryInsertFailures tracks swallowed execution-log insert errors
	TelemetryInsertFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refinery_telemetry_insert_failures_total",
			Help: "Total number of execution log inserts that failed",
		},
	)

	// DBConnectionPoolUsage tracks database pool utilisation percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refinery_db_connection_pool_usage",
			Help: "Database connection pool usage percentage",
		},
	)
)
