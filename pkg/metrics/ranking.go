package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RankingMetrics records best-price computation runs.
type RankingMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	options  *prometheus.HistogramVec
}

// NewRankingMetrics registers the ranking metrics on the provided registerer.
func NewRankingMetrics(reg prometheus.Registerer) *RankingMetrics {
	if reg == nil {
		return &RankingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bestprice_run_duration_seconds",
		Help:    "Duration of best-price ranking runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"category"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bestprice_run_success",
		Help: "Successful best-price ranking runs.",
	}, []string{"category"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bestprice_run_failure",
		Help: "Failed best-price ranking runs.",
	}, []string{"category"})
	options := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bestprice_options_per_run",
		Help:    "Ranked options produced per run.",
		Buckets: []float64{0, 1, 3, 5, 10, 15},
	}, []string{"category"})
	reg.MustRegister(duration, success, failure, options)
	return &RankingMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		options:  options,
	}
}

// ObserveDuration records the duration for the given category run.
func (r *RankingMetrics) ObserveDuration(category string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(category)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the given category.
func (r *RankingMetrics) IncSuccess(category string) {
	if r == nil || r.success == nil {
		return
	}
	r.success.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncFailure increments the failure counter for the given category.
func (r *RankingMetrics) IncFailure(category string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(category)).Inc()
}

// ObserveOptionCount records how many options a run produced.
func (r *RankingMetrics) ObserveOptionCount(category string, count int) {
	if r == nil || r.options == nil {
		return
	}
	r.options.WithLabelValues(normalizeLabel(category)).Observe(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
