package session

import "time"

// MetricsCollector receives session lifecycle events.
type MetricsCollector interface {
	// StateTransition records a state transition of a session
	StateTransition(from, to State)

	// RunCompleted records a finished run and its outcome
	RunCompleted(duration time.Duration, err error)
}

// noopMetricsCollector is a no-op implementation of MetricsCollector
type noopMetricsCollector struct{}

func (n *noopMetricsCollector) StateTransition(from, to State)                 {}
func (n *noopMetricsCollector) RunCompleted(duration time.Duration, err error) {}

// NewNoopMetricsCollector creates a no-op metrics collector
func NewNoopMetricsCollector() MetricsCollector {
	return &noopMetricsCollector{}
}
