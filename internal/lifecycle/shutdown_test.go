package lifecycle

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownGate_IdleExitsAtOnce(t *testing.T) {
	g := &ShutdownGate{Busy: func() int { return 0 }}
	assert.True(t, g.Signal(syscall.SIGTERM))

	assert.True(t, (&ShutdownGate{}).Signal(syscall.SIGINT))
}

func TestShutdownGate_BusyNeedsSecondSignal(t *testing.T) {
	running := 2
	g := &ShutdownGate{Busy: func() int { return running }}

	assert.False(t, g.Signal(syscall.SIGINT))
	assert.True(t, g.Signal(syscall.SIGINT))
}

func TestShutdownGate_WarningIsNotResetWhenIdle(t *testing.T) {
	running := 1
	g := &ShutdownGate{Busy: func() int { return running }}
	assert.False(t, g.Signal(syscall.SIGTERM))
	running = 0
	assert.True(t, g.Signal(syscall.SIGTERM))
}

func TestShutdownGate_Force(t *testing.T) {
	g := &ShutdownGate{Busy: func() int { return 1 }, Force: true}
	assert.True(t, g.Signal(syscall.SIGTERM))
}
