package session

import (
	"time"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsCollector implements MetricsCollector using Prometheus metrics
type PrometheusMetricsCollector struct {
	stateTransitions *prometheus.CounterVec
	running          prometheus.Gauge
	runDuration      *prometheus.HistogramVec
	runErrors        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewPrometheusMetricsCollector creates a collector with its own registry.
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	if namespace == "" {
		namespace = "launchgeist"
	}

	pmc := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
	}

	pmc.stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_state_transitions_total",
			Help:      "Total number of session state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	pmc.running = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_running",
			Help:      "Number of sessions currently in the STARTED state",
		},
	)

	pmc.runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_run_duration_seconds",
			Help:      "Duration of session runs from start to application exit",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 4 * 3600, 12 * 3600},
		},
		[]string{"status"},
	)

	pmc.runErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_run_errors_total",
			Help:      "Total number of failed session runs by error code",
		},
		[]string{"code"},
	)

	pmc.registry.MustRegister(
		pmc.stateTransitions,
		pmc.running,
		pmc.runDuration,
		pmc.runErrors,
	)

	return pmc
}

// StateTransition records a state transition and tracks running sessions.
func (pmc *PrometheusMetricsCollector) StateTransition(from, to State) {
	pmc.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()

	if to == StateStarted {
		pmc.running.Inc()
	}
	if from == StateStarted {
		pmc.running.Dec()
	}
}

// RunCompleted records the duration of a run and its error code, if any.
func (pmc *PrometheusMetricsCollector) RunCompleted(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"

		code := string(launcherr.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		pmc.runErrors.WithLabelValues(code).Inc()
	}
	pmc.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Registry returns the Prometheus registry for HTTP handler setup
func (pmc *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return pmc.registry
}

// Compile-time interface compliance check
var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)
