// Package lifecycle collects cleanup work that must run when the process
// exits, such as removing ephemeral userdirs.
package lifecycle

import (
	"sync"

	"github.com/mfulz/launchgeist/internal/logging"
)

type hook struct {
	name string
	fn   func() error
	once sync.Once
}

// Hooks is an ordered set of exit hooks. Each hook runs at most once.
type Hooks struct {
	mu    sync.Mutex
	hooks []*hook
}

// New returns an empty hook set.
func New() *Hooks {
	return &Hooks{}
}

// Register adds fn under name. Hooks run in registration order.
func (h *Hooks) Register(name string, fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, &hook{name: name, fn: fn})
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Run executes every hook that has not run yet. Failures and panics are
// logged and do not stop the remaining hooks.
func (h *Hooks) Run() {
	h.mu.Lock()
	pending := make([]*hook, len(h.hooks))
	copy(pending, h.hooks)
	h.mu.Unlock()

	for _, hk := range pending {
		hk.once.Do(func() { runHook(hk) })
	}
}

func runHook(hk *hook) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.Warnf("[lifecycle] hook %s panicked: %v", hk.name, r)
		}
	}()
	if err := hk.fn(); err != nil {
		logging.Log.Debugf("[lifecycle] hook %s failed: %v", hk.name, err)
		return
	}
	logging.Log.Debugf("[lifecycle] hook %s done", hk.name)
}

// Default is the process-wide hook set used by the binaries.
var Default = New()
