package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/userdir"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsCollector_Transitions(t *testing.T) {
	pmc := NewPrometheusMetricsCollector("test")

	pmc.StateTransition(StatePending, StateStarted)
	assert.Equal(t, float64(1), testutil.ToFloat64(pmc.running))
	pmc.StateTransition(StateStarted, StateDone)
	pmc.StateTransition(StateDone, StateStarted)
	pmc.StateTransition(StateStarted, StateDone)
	assert.Equal(t, float64(0), testutil.ToFloat64(pmc.running))

	expected := `
		# HELP test_session_state_transitions_total Total number of session state transitions
		# TYPE test_session_state_transitions_total counter
		test_session_state_transitions_total{from_state="DONE",to_state="STARTED"} 1
		test_session_state_transitions_total{from_state="PENDING",to_state="STARTED"} 1
		test_session_state_transitions_total{from_state="STARTED",to_state="DONE"} 2
	`
	err := testutil.GatherAndCompare(pmc.Registry(), strings.NewReader(expected), "test_session_state_transitions_total")
	assert.NoError(t, err)
}

func TestPrometheusMetricsCollector_RunCompleted(t *testing.T) {
	pmc := NewPrometheusMetricsCollector("test")

	pmc.RunCompleted(2*time.Second, nil)
	pmc.RunCompleted(time.Second, launcherr.ErrConfigWriteFailed("/x", errors.New("ro")))
	pmc.RunCompleted(time.Second, errors.New("plain"))

	assert.Equal(t, float64(1), testutil.ToFloat64(pmc.runErrors.WithLabelValues("CONFIG_WRITE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pmc.runErrors.WithLabelValues("UNKNOWN")))

	count, err := testutil.GatherAndCount(pmc.Registry(), "test_session_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSession_ReportsMetrics(t *testing.T) {
	pmc := NewPrometheusMetricsCollector("test")
	s := New(testConfig(), &fakePlanner{dir: userdir.WorkingDirectory{Path: "/tmp/u"}}, WithMetrics(pmc))

	require.True(t, s.Execute())
	waitDone(t, s)

	assert.Equal(t, float64(0), testutil.ToFloat64(pmc.running))
	assert.Equal(t, float64(1), testutil.ToFloat64(pmc.stateTransitions.WithLabelValues("PENDING", "STARTED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pmc.stateTransitions.WithLabelValues("STARTED", "DONE")))
}

func TestNoopMetricsCollector(t *testing.T) {
	m := NewNoopMetricsCollector()
	m.StateTransition(StatePending, StateStarted)
	m.RunCompleted(time.Second, nil)
}
