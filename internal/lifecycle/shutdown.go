package lifecycle

import (
	"os"
	"sync"

	"github.com/mfulz/launchgeist/internal/logging"
)

// ShutdownGate decides whether a termination signal may end the process.
// While Busy reports running work, the first signal only warns and a second
// one proceeds. Force skips the warning.
type ShutdownGate struct {
	Busy  func() int
	Force bool

	mu     sync.Mutex
	warned bool
}

// Signal reports whether the process should shut down after sig.
func (g *ShutdownGate) Signal(sig os.Signal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	busy := 0
	if g.Busy != nil {
		busy = g.Busy()
	}
	if busy == 0 || g.Force || g.warned {
		if busy > 0 {
			logging.Log.Warnf("[lifecycle] %v: shutting down with %d session(s) still running", sig, busy)
		}
		return true
	}
	g.warned = true
	logging.Log.Warnf("[lifecycle] %v: %d session(s) still running, signal again to exit", sig, busy)
	return false
}
