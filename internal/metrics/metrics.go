package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	propagationBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conjunct_propagation_batch_duration_seconds",
			Help:    "Duration of batch propagation calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conjunct_propagations_total",
			Help: "Total number of single object-time propagations.",
		},
		[]string{"result"},
	)

	screeningDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conjunct_screening_duration_seconds",
			Help:    "Duration of screening runs in seconds.",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"mode"},
	)

	conjunctionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conjunct_conjunction_events_total",
			Help: "Total number of conjunction events emitted.",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(propagationBatchDuration)
	prometheus.MustRegister(propagationsTotal)
	prometheus.MustRegister(screeningDuration)
	prometheus.MustRegister(conjunctionEvents)
}

// RecordPropagation records one batch propagation call.
func RecordPropagation(duration time.Duration, successCount, errorCount int) {
	propagationBatchDuration.Observe(duration.Seconds())
	propagationsTotal.WithLabelValues("success").Add(float64(successCount))
	propagationsTotal.WithLabelValues("error").Add(float64(errorCount))
}

// RecordScreening records one completed screening run.
// mode is "screen" for the per-primary pipeline or "catalog" for
// the all-pairs catalog screener.
func RecordScreening(mode string, duration time.Duration, eventCount int) {
	screeningDuration.WithLabelValues(mode).Observe(duration.Seconds())
	conjunctionEvents.WithLabelValues(mode).Add(float64(eventCount))
}
