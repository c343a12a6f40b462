package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested    *prometheus.CounterVec
	deduped     *prometheus.CounterVec
	scored      *prometheus.CounterVec
	jobFailures *prometheus.CounterVec
	lastScore   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predtrack_predictions_ingested_total",
				Help: "Total number of predictions stored by the ingestion job",
			},
			[]string{"horizon"},
		),
		deduped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predtrack_predictions_deduped_total",
				Help: "Total number of forecasts skipped as duplicates",
			},
			[]string{"horizon"},
		),
		scored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predtrack_predictions_scored_total",
				Help: "Total number of predictions scored against realized values",
			},
			[]string{"horizon"},
		),
		jobFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predtrack_job_failures_total",
				Help: "Total number of per-item job failures",
			},
			[]string{"job", "reason"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "predtrack_last_accuracy",
				Help: "Most recent accuracy score per horizon",
			},
			[]string{"horizon"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "predtrack_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordIngested records a stored prediction for a horizon.
func (r *Recorder) RecordIngested(horizon string) {
	r.ingested.WithLabelValues(horizon).Inc()
}

// RecordDeduped records a forecast skipped as a duplicate.
func (r *Recorder) RecordDeduped(horizon string) {
	r.deduped.WithLabelValues(horizon).Inc()
}

// RecordScored records a scored prediction and its accuracy.
func (r *Recorder) RecordScored(horizon string, score float64) {
	r.scored.WithLabelValues(horizon).Inc()
	r.lastScore.WithLabelValues(horizon).Set(score)
}

// RecordFailure records a per-item failure inside a job.
func (r *Recorder) RecordFailure(job, reason string) {
	r.jobFailures.WithLabelValues(job, reason).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
