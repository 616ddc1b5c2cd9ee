package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	requestsTotal           *prometheus.CounterVec
	requestLatencySeconds   *prometheus.HistogramVec
	predictionsTotal        *prometheus.CounterVec
	trainingRunsTotal       *prometheus.CounterVec
	trainingDurationSeconds prometheus.Histogram
	servingModeGauge        *prometheus.GaugeVec
	alertsWrittenTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropsafe_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dropsafe_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		predictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropsafe_predictions_total",
			Help: "Total number of risk predictions produced, by serving mode and label.",
		}, []string{"mode", "label"})

		trainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropsafe_training_runs_total",
			Help: "Total number of training runs, by outcome.",
		}, []string{"outcome"})

		trainingDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dropsafe_training_duration_seconds",
			Help:    "Wall-clock duration of training runs.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		servingModeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dropsafe_serving_mode",
			Help: "1 for the active serving mode, 0 otherwise.",
		}, []string{"mode"})

		alertsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dropsafe_alerts_written_total",
			Help: "Total number of alerts written to the alert store, by risk level.",
		}, []string{"level"})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			predictionsTotal,
			trainingRunsTotal,
			trainingDurationSeconds,
			servingModeGauge,
			alertsWrittenTotal,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// Predictions exposes the prediction counter.
func Predictions() *prometheus.CounterVec {
	RegisterMetrics()
	return predictionsTotal
}

// TrainingRuns exposes the training run counter.
func TrainingRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return trainingRunsTotal
}

// TrainingDuration exposes the training duration histogram.
func TrainingDuration() prometheus.Histogram {
	RegisterMetrics()
	return trainingDurationSeconds
}

// SetServingMode flips the serving mode gauge so dashboards can tell
// whether predictions come from the trained pipeline or the rule fallback.
func SetServingMode(mode string) {
	RegisterMetrics()
	for _, m := range []string{"ml", "rule"} {
		value := 0.0
		if m == mode {
			value = 1.0
		}
		servingModeGauge.WithLabelValues(m).Set(value)
	}
}

// AlertsWritten exposes the alert write counter.
func AlertsWritten() *prometheus.CounterVec {
	RegisterMetrics()
	return alertsWrittenTotal
}
